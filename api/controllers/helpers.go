package controllers

import (
	"context"
	"strings"
	"time"

	"github.com/angelmondragon/pharmacy-backend/api/middleware"
	"github.com/angelmondragon/pharmacy-backend/api/validators"
	pkgerrors "github.com/angelmondragon/pharmacy-backend/pkg/errors"
	"github.com/google/uuid"
)

func requireUser(ctx context.Context) (uuid.UUID, error) {
	userID := middleware.UserIDFromContext(ctx)
	if userID == uuid.Nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing")
	}
	return userID, nil
}

func unavailable(name string) error {
	return pkgerrors.New(pkgerrors.CodeInternal, name+" service unavailable")
}

// parseDate reads a YYYY-MM-DD body value. Empty input returns nil.
func parseDate(errs pkgerrors.FieldErrors, field string, value *string) *time.Time {
	if value == nil || strings.TrimSpace(*value) == "" {
		return nil
	}
	parsed, err := time.Parse(validators.DateLayout, strings.TrimSpace(*value))
	if err != nil {
		errs.Add(field, "Enter a valid date in YYYY-MM-DD format.")
		return nil
	}
	return &parsed
}
