package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"ctchen222/fatty-hosting/internal/api/apperror"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func newContext() (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	return c, w
}

func TestJSON_Flat(t *testing.T) {
	c, w := newContext()
	JSON(c, http.StatusCreated, "done", gin.H{"token": "abc"})

	assert.Equal(t, http.StatusCreated, w.Code)
	body := decode(t, w)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "done", body["message"])
	assert.Equal(t, "abc", body["token"])
}

func TestError_Validation(t *testing.T) {
	c, w := newContext()
	Error(c, apperror.Validation("Validation failed", apperror.FieldError{Field: "email", Message: "email is required"}), false)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	body := decode(t, w)
	assert.Equal(t, false, body["success"])
	errs, ok := body["errors"].([]any)
	require.True(t, ok)
	assert.Len(t, errs, 1)
}

func TestError_HidesDetailOutsideDevelopment(t *testing.T) {
	cause := errors.New("sqlite: disk I/O error")

	c, w := newContext()
	Error(c, apperror.Unknown("Failed to fetch requests", cause), false)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	body := decode(t, w)
	assert.Equal(t, "Failed to fetch requests", body["message"])
	assert.NotContains(t, body, "error")

	c, w = newContext()
	Error(c, apperror.Unknown("Failed to fetch requests", cause), true)
	body = decode(t, w)
	assert.Equal(t, cause.Error(), body["error"])
}

func TestError_PlainErrorIsInternal(t *testing.T) {
	c, w := newContext()
	Error(c, errors.New("boom"), false)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Something went wrong!", decode(t, w)["message"])
}
