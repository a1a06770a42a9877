package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gamevault/gamevault-server/internal/catalog"
	"github.com/gamevault/gamevault-server/internal/logger"
)

func TestHealthCheck(t *testing.T) {
	ts := setupTestServer(t)

	t.Run("before first refresh", func(t *testing.T) {
		w := ts.do(t, http.MethodGet, "/health", nil, "")
		require.Equal(t, http.StatusOK, w.Code)

		resp := decode[HealthResponse](t, w)
		assert.Equal(t, "degraded", resp.Status)
		assert.Equal(t, "healthy", resp.Components["database"].Status)
		assert.Equal(t, "healthy", resp.Components["events"].Status)

		cat := resp.Components["catalog"]
		assert.Equal(t, "degraded", cat.Status)
		require.NotNil(t, cat.Populated)
		assert.False(t, *cat.Populated)
		assert.Nil(t, cat.LastUpdated)

		assert.Equal(t, "degraded", resp.Components["search"].Status)
	})

	t.Run("after refresh", func(t *testing.T) {
		ts.catalog.Warm(t.Context())

		w := ts.do(t, http.MethodGet, "/health", nil, "")
		require.Equal(t, http.StatusOK, w.Code)

		resp := decode[HealthResponse](t, w)
		assert.Equal(t, "healthy", resp.Status)

		cat := resp.Components["catalog"]
		assert.Equal(t, "healthy", cat.Status)
		require.NotNil(t, cat.LastUpdated)
		assert.Equal(t, ts.catalog.Cache().LastUpdated().Unix(), cat.LastUpdated.Unix())
		assert.Equal(t, "healthy", resp.Components["search"].Status)
		assert.Empty(t, cat.Upstream, "offline test upstream has no breaker")
	})
}

// trippedUpstream fails like offlineUpstream and reports an open breaker.
type trippedUpstream struct {
	offlineUpstream
}

func (trippedUpstream) BreakerState() string { return "open" }

func TestHealthCheck_OpenBreakerDegradesCatalog(t *testing.T) {
	cat := catalog.New(trippedUpstream{}, catalog.Options{ListSize: 2}, logger.Discard())
	s := &Server{catalog: cat}

	h := s.checkCatalog()
	assert.Equal(t, "degraded", h.Status)
	assert.Equal(t, "open", h.Upstream)
	assert.Equal(t, "catalog not yet refreshed", h.Message)

	cat.Warm(t.Context())

	h = s.checkCatalog()
	assert.Equal(t, "degraded", h.Status)
	assert.Equal(t, "steam circuit breaker open", h.Message)
	require.NotNil(t, h.LastUpdated)
}

func TestHealthCheck_StoreClosed(t *testing.T) {
	ts := setupTestServer(t)
	require.NoError(t, ts.store.Close())

	w := ts.do(t, http.MethodGet, "/health", nil, "")
	require.Equal(t, http.StatusOK, w.Code)

	resp := decode[HealthResponse](t, w)
	assert.Equal(t, "unhealthy", resp.Status)
	assert.Equal(t, "unhealthy", resp.Components["database"].Status)
}

func TestFormatClientCount(t *testing.T) {
	assert.Equal(t, "no connected clients", formatClientCount(0))
	assert.Equal(t, "1 connected client", formatClientCount(1))
	assert.Equal(t, "12 connected clients", formatClientCount(12))
}
