package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"nearby/config"
	deliverycontext "nearby/internal/delivery/context"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(debug bool) (*echo.Echo, *bytes.Buffer) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	cfg := &config.Config{}
	cfg.Env.Debug = debug

	e := echo.New()
	e.Use(NewRequestIDMiddleware(logger).Process)
	e.Use(NewLoggerMiddleware(logger, cfg).Handle)

	e.GET("/api/sessions/:sessionID", func(c echo.Context) error {
		return c.String(http.StatusOK, deliverycontext.GetRequestIDFromContext(c.Request().Context()))
	})
	e.GET("/api/map/tiles/:z/:x/:y", func(c echo.Context) error {
		return c.NoContent(http.StatusNoContent)
	})
	e.GET("/fail", func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusTeapot, "short and stout")
	})

	return e, &buf
}

func get(e *echo.Echo, target, requestID string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	if requestID != "" {
		req.Header.Set(deliverycontext.HeaderXRequestID, requestID)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	return rec
}

func TestRequestIDMiddleware(t *testing.T) {
	e, _ := newTestServer(false)

	rec := get(e, "/api/sessions/abc", "client-id-1")
	assert.Equal(t, "client-id-1", rec.Body.String())
	assert.Equal(t, "client-id-1", rec.Header().Get(deliverycontext.HeaderXRequestID))

	rec = get(e, "/api/sessions/abc", "")
	assert.Len(t, rec.Body.String(), 36)

	rec = get(e, "/api/sessions/abc", strings.Repeat("x", maxRequestIDLength+1))
	assert.Len(t, rec.Body.String(), 36)

	rec = get(e, "/api/sessions/abc", "has space")
	assert.Len(t, rec.Body.String(), 36)
}

func TestLoggerMiddleware_Debug(t *testing.T) {
	e, buf := newTestServer(true)

	get(e, "/api/sessions/abc", "req-1")
	assert.Contains(t, buf.String(), "HTTP Request")
	assert.Contains(t, buf.String(), "session_id=abc")
	assert.Contains(t, buf.String(), "request_id=req-1")

	buf.Reset()
	get(e, "/api/map/tiles/0/0/0", "")
	assert.Empty(t, buf.String())
}

func TestLoggerMiddleware_QuietOutsideDebug(t *testing.T) {
	e, buf := newTestServer(false)

	get(e, "/api/sessions/abc", "")
	assert.Empty(t, buf.String())

	rec := get(e, "/fail", "")
	require.Equal(t, http.StatusTeapot, rec.Code)
	assert.Contains(t, buf.String(), "level=WARN")
	assert.Contains(t, buf.String(), "status=418")
}
