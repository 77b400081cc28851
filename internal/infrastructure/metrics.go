package infrastructure

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors for the HTTP surface and the
// ingestion pipeline.
type Metrics struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	uploadsTotal    *prometheus.CounterVec
	datasetRows     prometheus.Histogram
}

var (
	metricsOnce sync.Once
	metrics     *Metrics
)

// NewMetrics registers and returns the application collectors. Collectors
// register once on the default registry; subsequent calls return the same
// instance.
func NewMetrics() *Metrics {
	metricsOnce.Do(func() {
		metrics = newMetrics()
	})
	return metrics
}

func newMetrics() *Metrics {
	return &Metrics{
		requestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "btcoracle_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"path", "method", "status"},
		),
		requestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "btcoracle_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"path", "method"},
		),
		uploadsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "btcoracle_uploads_total",
				Help: "Dataset uploads by outcome",
			},
			[]string{"outcome"},
		),
		datasetRows: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "btcoracle_dataset_rows",
				Help:    "Canonical rows per accepted dataset",
				Buckets: []float64{10, 50, 100, 500, 1_000, 5_000, 10_000, 50_000},
			},
		),
	}
}

// RecordUpload records the outcome of one upload ("accepted", "parse_error",
// "schema_error", "empty_dataset").
func (m *Metrics) RecordUpload(outcome string) {
	m.uploadsTotal.WithLabelValues(outcome).Inc()
}

// RecordDatasetRows records the canonical series length of an accepted
// dataset.
func (m *Metrics) RecordDatasetRows(rows int) {
	m.datasetRows.Observe(float64(rows))
}

// Handler implements HTTP request counting and timing middleware.
func (m *Metrics) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		m.requestsTotal.WithLabelValues(r.URL.Path, r.Method, strconv.Itoa(ww.Status())).Inc()
		m.requestDuration.WithLabelValues(r.URL.Path, r.Method).Observe(time.Since(start).Seconds())
	})
}

// MetricsHTTPHandler exposes the default registry for the /metrics route.
func MetricsHTTPHandler() http.Handler {
	return promhttp.Handler()
}
