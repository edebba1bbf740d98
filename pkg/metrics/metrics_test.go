package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuoteAndOrderCounters(t *testing.T) {
	before := testutil.ToFloat64(quotesTotalMetric.WithLabelValues("Zone 2 (Regional)", OutcomeSuccess))
	IncreaseQuotesTotalMetric("Zone 2 (Regional)", OutcomeSuccess)
	IncreaseQuotesTotalMetric("Zone 2 (Regional)", OutcomeSuccess)
	assert.Equal(t, before+2, testutil.ToFloat64(quotesTotalMetric.WithLabelValues("Zone 2 (Regional)", OutcomeSuccess)))

	before = testutil.ToFloat64(ordersTotalMetric.WithLabelValues(OutcomeNotFound))
	IncreaseOrdersTotalMetric(OutcomeNotFound)
	assert.Equal(t, before+1, testutil.ToFloat64(ordersTotalMetric.WithLabelValues(OutcomeNotFound)))
}

func TestDatasetMetrics(t *testing.T) {
	UpdateDatasetMetrics(22, map[string]int{"country": 2, "coordinates": 1})
	assert.Equal(t, 22.0, testutil.ToFloat64(datasetRecordsMetric))
	assert.Equal(t, 2.0, testutil.ToFloat64(datasetSkippedMetric.WithLabelValues("country")))
}

func TestMiddlewareRecordsRoutePattern(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMiddleware("test")
	require.NoError(t, m.Register(reg))
	// registering again reuses the collectors
	require.NoError(t, NewMiddleware("test").Register(reg))

	router := chi.NewRouter()
	router.Use(m.Handler)
	router.Get("/postal-codes/{code}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	for _, code := range []string{"11501", "10001"} {
		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/postal-codes/"+code, nil))
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(m.requests.WithLabelValues("200", "GET", "/postal-codes/{code}")))
	count, err := testutil.GatherAndCount(reg, RequestsCollectorName)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestPrometheusHandler(t *testing.T) {
	IncreaseQuotesTotalMetric("Zone 1 (Local)", OutcomeSuccess)

	rec := httptest.NewRecorder()
	PrometheusHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "shipzone_quotes_total"))
}
