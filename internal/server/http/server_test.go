package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	echo "github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Additional-Code/procurement/internal/config"
)

func newTestEcho(t *testing.T) *echo.Echo {
	t.Helper()
	cfg := config.Config{
		HTTP: config.HTTP{CORSOrigins: []string{"http://localhost:3000"}},
	}
	return NewEcho(cfg, nil, zap.NewNop())
}

func serve(e *echo.Echo, req *http.Request) (*httptest.ResponseRecorder, map[string]any) {
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	var body map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &body)
	return rec, body
}

func TestNewEcho_UnknownRouteUsesEnvelope(t *testing.T) {
	e := newTestEcho(t)

	rec, body := serve(e, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.EqualValues(t, 404, body["status"])
	assert.Equal(t, "Not Found", body["error"])
	assert.NotEmpty(t, body["timestamp"])
}

func TestNewEcho_MethodNotAllowed(t *testing.T) {
	e := newTestEcho(t)

	rec, body := serve(e, httptest.NewRequest(http.MethodPatch, "/health", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.EqualValues(t, 405, body["status"])
}

func TestNewEcho_PanicBecomesInternalError(t *testing.T) {
	e := newTestEcho(t)
	e.GET("/boom", func(echo.Context) error { panic(errors.New("secret detail")) })

	rec, body := serve(e, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Internal Server Error", body["error"])
	assert.Equal(t, "internal server error", body["message"])
	assert.NotContains(t, rec.Body.String(), "secret detail")
}

func TestNewEcho_CORS(t *testing.T) {
	e := newTestEcho(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(echo.HeaderOrigin, "http://localhost:3000")
	rec, body := serve(e, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "http://localhost:3000", rec.Header().Get(echo.HeaderAccessControlAllowOrigin))
	assert.NotEmpty(t, rec.Header().Get(echo.HeaderXRequestID))
	assert.Equal(t, map[string]any{"status": "UP"}, body["data"])
}
