package restapi

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/YaoxuanLiu37/transitpapers/internal/metrics"
)

func TestMetricsHandlerRecordsRequests(t *testing.T) {
	m := metrics.New()
	defer m.Shutdown()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /papers/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := MetricsHandler(m)(mux)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/papers/2101.00001", nil))

	count := testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "GET /papers/{id}", "200"))
	assert.Equal(t, 1.0, count)
}

func TestMetricsHandlerUnmatchedRoute(t *testing.T) {
	m := metrics.New()
	defer m.Shutdown()

	handler := MetricsHandler(m)(http.NotFoundHandler())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))

	count := testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "unmatched", "404"))
	assert.Equal(t, 1.0, count)
}

func TestMetricsHandlerNilMetricsPassThrough(t *testing.T) {
	handler := MetricsHandler(nil)(okHandler())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
