package validators

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	pkgerrors "github.com/angelmondragon/pharmacy-backend/pkg/errors"
	"github.com/angelmondragon/pharmacy-backend/pkg/pagination"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// DateLayout is the wire format for calendar days.
const DateLayout = "2006-01-02"

func ParseQueryInt(r *http.Request, key string, defaultVal, min, max int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return defaultVal, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fieldError(key, "must be numeric")
	}
	if value < min || value > max {
		return 0, fieldError(key, "must be between "+strconv.Itoa(min)+" and "+strconv.Itoa(max))
	}
	return value, nil
}

func ParseQueryBool(r *http.Request, key string) (bool, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return false, nil
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fieldError(key, "must be true or false")
	}
	return value, nil
}

// ParsePagination reads limit and cursor.
func ParsePagination(r *http.Request) (pagination.Params, error) {
	limit, err := ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
	if err != nil {
		return pagination.Params{}, err
	}
	return pagination.Params{
		Limit:  limit,
		Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
	}, nil
}

// ParseQueryDate reads an optional YYYY-MM-DD value. A missing key yields nil.
func ParseQueryDate(r *http.Request, key string) (*time.Time, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return nil, nil
	}
	parsed, err := time.Parse(DateLayout, raw)
	if err != nil {
		return nil, fieldError(key, "must be a date in YYYY-MM-DD format")
	}
	return &parsed, nil
}

// ParseRequiredDate is ParseQueryDate for mandatory parameters.
func ParseRequiredDate(r *http.Request, key string) (time.Time, error) {
	value, err := ParseQueryDate(r, key)
	if err != nil {
		return time.Time{}, err
	}
	if value == nil {
		return time.Time{}, fieldError(key, "is required")
	}
	return *value, nil
}

// ParseURLUUID reads a chi route parameter as a UUID.
func ParseURLUUID(r *http.Request, param string) (uuid.UUID, error) {
	raw := strings.TrimSpace(chi.URLParam(r, param))
	id, err := uuid.Parse(raw)
	if err != nil || id == uuid.Nil {
		return uuid.Nil, fieldError(param, "must be a valid UUID")
	}
	return id, nil
}

func fieldError(field, message string) error {
	errs := pkgerrors.FieldErrors{}
	errs.Add(field, message)
	return errs.Err("invalid query parameter")
}
