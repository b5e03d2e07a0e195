package pagination

import (
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	pkgerrors "github.com/angelmondragon/pharmacy-backend/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	// DefaultLimit is the page size used when a request omits one.
	DefaultLimit = 20
	// MaxLimit caps how many rows a single page may return.
	MaxLimit = 100
)

// Params holds cursor pagination inputs from controllers or services.
type Params struct {
	Limit  int
	Cursor string
}

// Cursor is the keyset position: newest first, ties broken by id.
type Cursor struct {
	CreatedAt time.Time
	ID        uuid.UUID
}

// Page is one window of results plus the cursor to fetch the next one.
type Page[T any] struct {
	Items      []T
	NextCursor string
}

func NormalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

// EncodeCursor serializes the cursor as an opaque base64 token.
func EncodeCursor(cursor Cursor) string {
	payload := cursor.CreatedAt.UTC().Format(time.RFC3339Nano) + "|" + cursor.ID.String()
	return base64.RawURLEncoding.EncodeToString([]byte(payload))
}

// ParseCursor decodes a token produced by EncodeCursor. Empty input yields nil.
func ParseCursor(value string) (*Cursor, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}

	decoded, err := base64.RawURLEncoding.DecodeString(value)
	if err != nil {
		return nil, fmt.Errorf("decode cursor: %w", err)
	}
	createdAt, rawID, ok := strings.Cut(string(decoded), "|")
	if !ok {
		return nil, fmt.Errorf("invalid cursor format")
	}
	t, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return nil, fmt.Errorf("invalid cursor timestamp: %w", err)
	}
	id, err := uuid.Parse(rawID)
	if err != nil {
		return nil, fmt.Errorf("invalid cursor id: %w", err)
	}
	return &Cursor{CreatedAt: t, ID: id}, nil
}

// Keyset applies the cursor predicate, newest-first ordering, and a limit one
// past the page size so Cut can detect a following page. table may be empty
// or a query alias.
func Keyset(q *gorm.DB, table string, params Params) (*gorm.DB, error) {
	cursor, err := ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}

	prefix := ""
	if table != "" {
		prefix = table + "."
	}
	if cursor != nil {
		q = q.Where(
			fmt.Sprintf("((%[1]screated_at < ?) OR (%[1]screated_at = ? AND %[1]sid < ?))", prefix),
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
		)
	}
	return q.
		Order(prefix + "created_at DESC").
		Order(prefix + "id DESC").
		Limit(NormalizeLimit(params.Limit) + 1), nil
}

// Cut trims the buffered row and computes the next cursor from the last kept row.
func Cut[T any](rows []T, limit int, key func(T) Cursor) Page[T] {
	size := NormalizeLimit(limit)
	if len(rows) <= size {
		return Page[T]{Items: rows}
	}
	kept := rows[:size]
	return Page[T]{
		Items:      kept,
		NextCursor: EncodeCursor(key(kept[len(kept)-1])),
	}
}
