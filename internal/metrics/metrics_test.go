package metrics

import (
	"database/sql"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3" // CGo-based SQLite driver
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRegistersAllMetrics(t *testing.T) {
	m := New()

	require.NotNil(t, m.Registry)
	assert.NotNil(t, m.HTTPRequestsTotal)
	assert.NotNil(t, m.HTTPRequestDuration)
	assert.NotNil(t, m.StoreQueryDuration)
	assert.NotNil(t, m.CacheHitsTotal)
	assert.NotNil(t, m.DBConnectionsOpen)
	assert.NotNil(t, m.DBWaitSecondsTotal)
}

func TestHTTPRequestsTotalIncrement(t *testing.T) {
	m := New()

	m.HTTPRequestsTotal.WithLabelValues("GET", "/papers/recent", "200").Inc()
	m.HTTPRequestsTotal.WithLabelValues("GET", "/papers/recent", "200").Inc()
	m.HTTPRequestsTotal.WithLabelValues("GET", "/papers/{id}", "404").Inc()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "/papers/recent", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "/papers/{id}", "404")))
}

func TestCacheHitsTotal(t *testing.T) {
	m := New()

	m.CacheHitsTotal.WithLabelValues("hit").Inc()
	m.CacheHitsTotal.WithLabelValues("miss").Inc()
	m.CacheHitsTotal.WithLabelValues("miss").Inc()

	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheHitsTotal.WithLabelValues("hit")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.CacheHitsTotal.WithLabelValues("miss")))
}

func TestStartDBStatsCollector(t *testing.T) {
	m := New()

	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	m.StartDBStatsCollector(db, 10*time.Millisecond)

	// Trigger some activity so stats are non-trivial
	_, err = db.Exec("CREATE TABLE t (id INTEGER)")
	require.NoError(t, err)

	// Give the collector at least one tick
	time.Sleep(50 * time.Millisecond)
	m.Shutdown()

	assert.GreaterOrEqual(t, testutil.ToFloat64(m.DBConnectionsOpen), 0.0)
}

func TestStartDBStatsCollectorIdempotent(t *testing.T) {
	m := New()

	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	m.StartDBStatsCollector(db, time.Hour)
	m.StartDBStatsCollector(db, time.Hour) // Second call should be a no-op
	m.Shutdown()
}

func TestStartDBStatsCollectorNilDB(t *testing.T) {
	m := New()
	m.StartDBStatsCollector(nil, time.Second)
	m.Shutdown() // Should not panic or hang
}

func TestShutdownSafeToCallMultipleTimes(t *testing.T) {
	m := New()
	m.Shutdown()
	m.Shutdown()
}
