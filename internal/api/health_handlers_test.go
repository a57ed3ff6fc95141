package api

import (
	"log/slog"
	"net/http"
	"testing"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealth_AllComponents(t *testing.T) {
	ts := setupTestServer(t)
	ts.registerAndLogin(t, "alice")

	resp := ts.api.Get("/health")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	health := decode[HealthResponse](t, resp).Data
	assert.Equal(t, statusHealthy, health.Status)
	for _, name := range []string{"database", "feeds", "search", "sse"} {
		c, ok := health.Components[name]
		require.True(t, ok, name)
		assert.Equal(t, statusHealthy, c.Status, name)
	}
	assert.Equal(t, "0 posts indexed", health.Components["search"].Message)
	assert.Equal(t, "no connected clients", health.Components["sse"].Message)
}

func TestHealth_DegradedWithoutDependencies(t *testing.T) {
	s := NewServer(nil, nil, &Services{}, nil, Options{}, slog.New(slog.DiscardHandler))
	t.Cleanup(func() { _ = s.Close() })
	api := humatest.Wrap(t, s.api)

	resp := api.Get("/health")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	health := decode[HealthResponse](t, resp).Data
	assert.Equal(t, statusDegraded, health.Status)
	assert.Equal(t, "database not configured", health.Components["database"].Message)
}

func TestFormatSSEStatus(t *testing.T) {
	assert.Equal(t, "no connected clients", formatSSEStatus(0))
	assert.Equal(t, "1 connected client", formatSSEStatus(1))
	assert.Equal(t, "3 connected clients", formatSSEStatus(3))
}
