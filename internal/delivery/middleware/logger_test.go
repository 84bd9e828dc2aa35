package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"authd/config"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runLoggedRequest(t *testing.T, debug bool) *bytes.Buffer {
	t.Helper()

	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	cfg := &config.Config{}
	cfg.Env.Debug = debug

	e := echo.New()
	e.Use(NewLoggerMiddleware(logger, cfg).Handle)
	e.GET("/ping", func(c echo.Context) error {
		return c.String(http.StatusOK, "pong")
	})

	req := httptest.NewRequest(http.MethodGet, "/ping?verbose=1", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	return &buf
}

func TestLoggerMiddleware_DebugOn(t *testing.T) {
	buf := runLoggedRequest(t, true)

	out := buf.String()
	assert.Contains(t, out, "HTTP Request")
	assert.Contains(t, out, "/ping")
	assert.Contains(t, out, "verbose=1")
}

func TestLoggerMiddleware_DebugOff(t *testing.T) {
	buf := runLoggedRequest(t, false)

	assert.Empty(t, buf.String())
}
