package main

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YaoxuanLiu37/transitpapers/internal/appconf"
)

func testConfig() appconf.Config {
	return appconf.Config{
		Port:      4000,
		Env:       appconf.Test,
		DBPath:    ":memory:",
		RateLimit: 100,
		CacheTTL:  time.Minute,
	}
}

func TestBuildApplicationWithMemoryDB(t *testing.T) {
	application, err := BuildApplication(testConfig())
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = application.PaperStore.Close()
		application.Metrics.Shutdown()
	})

	assert.NotNil(t, application.Logger)
	assert.NotNil(t, application.PaperStore)
	assert.NotNil(t, application.Clock)
	assert.NotNil(t, application.Metrics)
	assert.Equal(t, testConfig(), application.Config)
}

func TestBuildApplicationRejectsFileBackedTestDB(t *testing.T) {
	cfg := testConfig()
	cfg.DBPath = "papers.db"
	_, err := BuildApplication(cfg)
	require.Error(t, err)
}

func TestCreateServerEndToEnd(t *testing.T) {
	application, err := BuildApplication(testConfig())
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = application.PaperStore.Close()
		application.Metrics.Shutdown()
	})

	srv, rateLimiter, responseCache := CreateServer(application)
	t.Cleanup(rateLimiter.Stop)
	t.Cleanup(responseCache.Close)

	assert.Equal(t, ":4000", srv.Addr)
	assert.Equal(t, time.Minute, srv.IdleTimeout)

	ts := httptest.NewServer(srv.Handler)
	t.Cleanup(ts.Close)

	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var health map[string]string
	require.NoError(t, json.Unmarshal(body, &health))
	assert.Equal(t, "ok", health["status"])
}

func TestCreateServerServesMetrics(t *testing.T) {
	application, err := BuildApplication(testConfig())
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = application.PaperStore.Close()
		application.Metrics.Shutdown()
	})

	srv, rateLimiter, responseCache := CreateServer(application)
	t.Cleanup(rateLimiter.Stop)
	t.Cleanup(responseCache.Close)

	ts := httptest.NewServer(srv.Handler)
	t.Cleanup(ts.Close)

	// Generate one request, then scrape
	_, err = http.Get(ts.URL + "/health")
	require.NoError(t, err)

	resp, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "papers_http_requests_total")
}