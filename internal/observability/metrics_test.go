package observability

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestMiddlewareRecordsRequests(t *testing.T) {
	metrics := NewMetrics()

	r := chi.NewRouter()
	r.Use(metrics.Middleware)
	r.Get("/api/drawers/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	req := httptest.NewRequest("GET", "/api/drawers/abc", nil)
	r.ServeHTTP(httptest.NewRecorder(), req)

	count := testutil.ToFloat64(metrics.requestsTotal.WithLabelValues("/api/drawers/{id}", "404"))
	require.Equal(t, 1.0, count)
}

func TestStackingWarningCounter(t *testing.T) {
	metrics := NewMetrics()
	metrics.CountStackingWarning()
	metrics.CountStackingWarning()
	require.Equal(t, 2.0, testutil.ToFloat64(metrics.stackingWarnings))
}

func TestMetricsEndpointExposesCounters(t *testing.T) {
	metrics := NewMetrics()
	metrics.CountStackingWarning()

	rec := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, strings.Contains(rec.Body.String(), "galleytrack_batch_stacking_warnings_total 1"))
}
