package api

import (
	"log/slog"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestIDHeader(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/api/v1/health")
	assert.NotEmpty(t, resp.Header().Get("X-Request-ID"))

	resp = ts.api.Get("/api/v1/health", "X-Request-ID: trace-123")
	assert.Equal(t, "trace-123", resp.Header().Get("X-Request-ID"))
}

func TestUnknownRouteUsesEnvelope(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/api/v1/nowhere")
	require.Equal(t, http.StatusNotFound, resp.Code)

	env := decode[any](t, resp.Body.Bytes())
	assert.False(t, env.Success)
	assert.Equal(t, 1, env.V)
	require.NotNil(t, env.Error)
	assert.Equal(t, "NOT_FOUND", env.Error.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	ts := setupTestServer(t)

	ts.api.Get("/api/v1/health")

	resp := ts.api.Get("/metrics")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), "bookstore_http_requests_total")
	assert.Contains(t, resp.Body.String(), "go_goroutines")
}

func TestSlogLevelForStatus(t *testing.T) {
	assert.Equal(t, slog.LevelInfo, slogLevelForStatus(http.StatusOK))
	assert.Equal(t, slog.LevelInfo, slogLevelForStatus(http.StatusFound))
	assert.Equal(t, slog.LevelWarn, slogLevelForStatus(http.StatusNotFound))
	assert.Equal(t, slog.LevelError, slogLevelForStatus(http.StatusBadGateway))
}
