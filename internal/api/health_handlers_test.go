package api

import (
	"net/http"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthCheck_Success(t *testing.T) {
	ts := setupTestServer(t, Options{})

	resp := ts.api.Get("/health")

	assert.Equal(t, http.StatusOK, resp.Code)

	var healthResp HealthResponse
	err := json.Unmarshal(resp.Body.Bytes(), &healthResp)
	require.NoError(t, err)

	assert.Equal(t, "healthy", healthResp.Status)
	assert.Equal(t, "healthy", healthResp.Components["database"].Status)
}

func TestHealthCheck_StoreClosed(t *testing.T) {
	ts := setupTestServer(t, Options{})
	require.NoError(t, ts.store.Close())

	resp := ts.api.Get("/health")

	assert.Equal(t, http.StatusServiceUnavailable, resp.Code)
	assert.Contains(t, resp.Body.String(), "database ping failed")
}
