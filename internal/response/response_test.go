package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func record(t *testing.T, fn func(c echo.Context) error) (*httptest.ResponseRecorder, Envelope) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	require.NoError(t, fn(c))

	var env Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return rec, env
}

func TestOKEmbedsCodeInBody(t *testing.T) {
	rec, env := record(t, func(c echo.Context) error {
		return OK(c, "todo bien", map[string]int{"n": 3})
	})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, env.Success)
	assert.Equal(t, "todo bien", env.Message)
	assert.Equal(t, http.StatusOK, env.Code)
	assert.NotNil(t, env.Data)
}

func TestErrorHelpersMatchStatus(t *testing.T) {
	cases := []struct {
		fn   func(c echo.Context, msg string) error
		code int
	}{
		{BadRequest, http.StatusBadRequest},
		{Unauthorized, http.StatusUnauthorized},
		{Forbidden, http.StatusForbidden},
		{NotFound, http.StatusNotFound},
		{Conflict, http.StatusConflict},
		{TooManyRequests, http.StatusTooManyRequests},
		{ServerError, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		rec, env := record(t, func(c echo.Context) error {
			return tc.fn(c, "falló")
		})
		assert.Equal(t, tc.code, rec.Code)
		assert.Equal(t, tc.code, env.Code)
		assert.False(t, env.Success)
		assert.Nil(t, env.Data)
	}
}

func TestNewBuildsDetachedEnvelope(t *testing.T) {
	env := New(false, "Archivo inválido: x.xlsx", nil, http.StatusBadRequest)
	assert.False(t, env.Success)
	assert.Equal(t, http.StatusBadRequest, env.Code)
}
