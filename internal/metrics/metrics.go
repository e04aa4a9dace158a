// Package metrics provides Prometheus instrumentation for the commission engine.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// PaymentsApplied counts payment events applied to the ledger.
	PaymentsApplied = promauto.NewCounter(prometheus.CounterOpts{
		Name: "commission_payments_applied_total",
		Help: "Total payment events applied to the commission ledger",
	})

	// AllocationsTotal counts allocation passes, partitioned by strategy.
	AllocationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "commission_allocations_total",
		Help: "Total allocation passes executed",
	}, []string{"strategy"})

	// LedgerUpserts counts commission ledger rows created or updated.
	LedgerUpserts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "commission_ledger_upserts_total",
		Help: "Commission ledger rows created or updated",
	})

	// DegradedResolutions counts rule resolutions that fell back to the
	// floor-rate default because directory data was missing.
	DegradedResolutions = promauto.NewCounter(prometheus.CounterOpts{
		Name: "commission_degraded_resolutions_total",
		Help: "Rule resolutions that degraded to the floor-rate default",
	})

	// HTTPRequestsTotal counts HTTP requests by method, path, and status.
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "commission_http_requests_total",
		Help: "Total HTTP requests",
	}, []string{"method", "path", "status"})

	// HTTPRequestDuration tracks request duration by method and path.
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "commission_http_request_duration_seconds",
		Help:    "HTTP request duration in seconds",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
	}, []string{"method", "path"})

	// WebSocketClients tracks connected WebSocket clients.
	WebSocketClients = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "commission_websocket_clients",
		Help: "Number of connected WebSocket clients",
	})
)

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Middleware returns an HTTP middleware that records request metrics.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &statusWriter{ResponseWriter: w, status: 200}
		next.ServeHTTP(wrapped, r)
		duration := time.Since(start).Seconds()

		// Use the route pattern for path label to avoid high cardinality.
		path := r.URL.Path
		HTTPRequestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(wrapped.status)).Inc()
		HTTPRequestDuration.WithLabelValues(r.Method, path).Observe(duration)
	})
}

// statusWriter wraps http.ResponseWriter to capture the status code.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}
