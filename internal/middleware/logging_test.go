package middleware

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	InitLogger(&buf, "production", slog.LevelDebug)
	t.Cleanup(func() { InitLogger(os.Stdout, "", slog.LevelInfo) })
	return &buf
}

func logLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var rec map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &rec))
		out = append(out, rec)
	}
	return out
}

func TestStructuredLogger_CarriesRequestContext(t *testing.T) {
	buf := captureLogs(t)

	app := fiber.New()
	app.Use(requestid.New())
	app.Use(ContextMiddleware())
	app.Use(StructuredLogger())
	app.Post("/users/:id/read", func(c *fiber.Ctx) error {
		WithUserID(c, c.Params("id"))
		slog.InfoContext(c.UserContext(), "handler ran")
		return c.SendStatus(fiber.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodPost, "/users/u7/read", nil)
	req.Header.Set(fiber.HeaderXRequestID, "req-123")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	lines := logLines(t, buf)
	require.Len(t, lines, 2)

	assert.Equal(t, "handler ran", lines[0]["msg"])
	assert.Equal(t, "req-123", lines[0]["request_id"])
	assert.Equal(t, "req-123", lines[0]["correlation_id"])
	assert.Equal(t, "u7", lines[0]["user_id"])

	assert.Equal(t, "request processed", lines[1]["msg"])
	assert.Equal(t, float64(http.StatusNoContent), lines[1]["status"])
	assert.Equal(t, "u7", lines[1]["user_id"])
}

func TestStructuredLogger_LogsFailures(t *testing.T) {
	buf := captureLogs(t)

	app := fiber.New()
	app.Use(ContextMiddleware())
	app.Use(StructuredLogger())
	app.Get("/boom", func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusTeapot, "short and stout")
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/boom", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusTeapot, resp.StatusCode)

	lines := logLines(t, buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "request failed", lines[0]["msg"])
	assert.Equal(t, "short and stout", lines[0]["error"])
	assert.NotEmpty(t, lines[0]["correlation_id"])
}

func TestMetricsMiddleware_SharedCollector(t *testing.T) {
	a := InitMetrics("islandmarket-test")
	b := InitMetrics("islandmarket-test")
	assert.Same(t, a, b)

	app := fiber.New()
	app.Use(MetricsMiddleware(a))
	a.RegisterAt(app, "/metrics")
	app.Get("/ping", func(c *fiber.Ctx) error { return c.SendString("pong") })

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/ping", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
