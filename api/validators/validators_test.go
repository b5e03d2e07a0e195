package validators

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	pkgerrors "github.com/angelmondragon/pharmacy-backend/pkg/errors"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type lineRequest struct {
	BatchID  string `json:"batch_id" validate:"required,uuid"`
	Quantity int    `json:"quantity" validate:"gte=1"`
}

type cartRequest struct {
	Items  []lineRequest `json:"items" validate:"required,min=1,dive"`
	Method string        `json:"payment_method" validate:"required,oneof=cash online"`
}

func details(t *testing.T, err error) map[string][]string {
	t.Helper()
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeValidation, typed.Code())
	out, ok := typed.Details().(map[string][]string)
	require.True(t, ok, "details type %T", typed.Details())
	return out
}

func TestDecodeJSONBodyCollectsEveryViolation(t *testing.T) {
	body := `{"items":[{"batch_id":"nope","quantity":0}],"payment_method":"card"}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))

	var dest cartRequest
	err := DecodeJSONBody(httptest.NewRecorder(), req, &dest)

	fields := details(t, err)
	assert.Contains(t, fields, "items[0].batch_id")
	assert.Contains(t, fields, "items[0].quantity")
	assert.Equal(t, []string{"must be one of: cash online"}, fields["payment_method"])
}

func TestDecodeJSONBodyRejectsUnknownFields(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"payment_method":"cash","extra":1}`))
	var dest cartRequest
	fields := details(t, DecodeJSONBody(httptest.NewRecorder(), req, &dest))
	assert.Equal(t, []string{"is not allowed"}, fields["extra"])
}

func TestDecodeJSONBodyEmptyAndMalformed(t *testing.T) {
	var dest cartRequest
	err := DecodeJSONBody(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/", strings.NewReader("")), &dest)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	err = DecodeJSONBody(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/", strings.NewReader("{")), &dest)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	err = DecodeJSONBody(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"items":"x"}`)), &dest)
	assert.Contains(t, details(t, err), "items")
}

func TestParsePaginationAndInts(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?limit=5&cursor=abc", nil)
	params, err := ParsePagination(req)
	require.NoError(t, err)
	assert.Equal(t, 5, params.Limit)
	assert.Equal(t, "abc", params.Cursor)

	_, err = ParsePagination(httptest.NewRequest(http.MethodGet, "/?limit=1000", nil))
	assert.Contains(t, details(t, err), "limit")

	_, err = ParseQueryInt(httptest.NewRequest(http.MethodGet, "/?limit=x", nil), "limit", 1, 1, 10)
	assert.Equal(t, []string{"must be numeric"}, details(t, err)["limit"])
}

func TestParseQueryDate(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?start_date=2024-03-01&end_date=03/05/2024", nil)

	start, err := ParseRequiredDate(req, "start_date")
	require.NoError(t, err)
	assert.Equal(t, "2024-03-01", start.Format(DateLayout))

	_, err = ParseQueryDate(req, "end_date")
	assert.Contains(t, details(t, err), "end_date")

	missing, err := ParseQueryDate(req, "as_of")
	require.NoError(t, err)
	assert.Nil(t, missing)

	_, err = ParseRequiredDate(req, "as_of")
	assert.Equal(t, []string{"is required"}, details(t, err)["as_of"])
}

func TestParseURLUUID(t *testing.T) {
	router := chi.NewRouter()
	var errGot error
	router.Get("/orders/{orderId}", func(w http.ResponseWriter, r *http.Request) {
		_, errGot = ParseURLUUID(r, "orderId")
	})

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/orders/3b241101-e2bb-4255-8caf-4136c566a962", nil))
	assert.NoError(t, errGot)

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/orders/42", nil))
	assert.Contains(t, details(t, errGot), "orderId")
}

func TestSanitizeString(t *testing.T) {
	assert.Equal(t, "abc", SanitizeString("  abcdef ", 3))
	assert.Equal(t, "ñañ", SanitizeString("ñañá", 3))
	assert.Nil(t, OptionalString(strPtr("   "), 10))
	assert.Equal(t, "note", *OptionalString(strPtr(" note "), 10))
}

func strPtr(s string) *string { return &s }
