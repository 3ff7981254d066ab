// Package metrics provides Prometheus instrumentation for the sync pipeline
// and the HTTP surface.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics bundles the service's collectors on one registry.
type Metrics struct {
	registry *prometheus.Registry

	syncRuns      *prometheus.CounterVec
	pagesFetched  prometheus.Counter
	recordsLoaded prometheus.Counter

	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

// New creates a Metrics instance with its own registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	auto := promauto.With(reg)

	return &Metrics{
		registry: reg,
		syncRuns: auto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "treesync",
			Name:      "sync_runs_total",
			Help:      "Completed sync runs by terminal status",
		}, []string{"status"}),
		pagesFetched: auto.NewCounter(prometheus.CounterOpts{
			Namespace: "treesync",
			Name:      "sync_pages_fetched_total",
			Help:      "Pages retrieved from the source collection",
		}),
		recordsLoaded: auto.NewCounter(prometheus.CounterOpts{
			Namespace: "treesync",
			Name:      "sync_records_loaded_total",
			Help:      "Records submitted to the store by committed runs",
		}),
		httpRequests: auto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "treesync",
			Name:      "http_requests_total",
			Help:      "HTTP requests by endpoint, method, and status",
		}, []string{"endpoint", "method", "status"}),
		httpRequestDuration: auto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "treesync",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by endpoint and method",
			Buckets:   prometheus.DefBuckets,
		}, []string{"endpoint", "method"}),
	}
}

// RecordSyncRun counts one completed run and its page/record totals.
func (m *Metrics) RecordSyncRun(status string, pages, loaded int) {
	m.syncRuns.WithLabelValues(status).Inc()
	m.pagesFetched.Add(float64(pages))
	m.recordsLoaded.Add(float64(loaded))
}

// Handler serves the scrape endpoint for this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Middleware wraps a handler to record request count and latency.
func (m *Metrics) Middleware(endpoint string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapped, r)
		m.httpRequests.WithLabelValues(endpoint, r.Method, strconv.Itoa(wrapped.statusCode)).Inc()
		m.httpRequestDuration.WithLabelValues(endpoint, r.Method).Observe(time.Since(start).Seconds())
	}
}

// responseWriter captures the status code written by a handler.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
