package validation

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

type item struct {
	ID       string `json:"id"       validate:"required"`
	Quantity int    `json:"quantity" validate:"min=1"`
}

type payload struct {
	Owner string `json:"owner_id" validate:"required"`
	Items []item `json:"items"    validate:"required,min=1,dive"`
}

func run(t *testing.T, body string) (*httptest.ResponseRecorder, error) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	var p payload
	return w, BindAndValidate(c, &p, New())
}

func TestBindAndValidate_OK(t *testing.T) {
	w, err := run(t, `{"owner_id":"c1","items":[{"id":"p1","quantity":2}]}`)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, w.Code)
	require.Zero(t, w.Body.Len())
}

func TestBindAndValidate_MalformedBody(t *testing.T) {
	w, err := run(t, `{"owner_id":`)
	require.Error(t, err)
	require.Equal(t, http.StatusBadRequest, w.Code)

	var got map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Equal(t, "invalid_request_body", got["error"])
}

func TestBindAndValidate_ReportsJSONFieldNames(t *testing.T) {
	w, err := run(t, `{"items":[{"id":"","quantity":0}]}`)
	require.Error(t, err)
	require.Equal(t, http.StatusBadRequest, w.Code)

	var got struct {
		Error  string            `json:"error"`
		Fields map[string]string `json:"fields"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Equal(t, "validation_failed", got.Error)
	require.Contains(t, got.Fields, "payload.owner_id")
	require.Contains(t, got.Fields, "payload.items[0].id")
	require.Contains(t, got.Fields, "payload.items[0].quantity")
}

func TestFieldErrors_NonValidationError(t *testing.T) {
	got := FieldErrors(http.ErrBodyNotAllowed)
	require.Equal(t, map[string]string{"error": http.ErrBodyNotAllowed.Error()}, got)
}
