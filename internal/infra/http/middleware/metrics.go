package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	activeConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_active_connections",
			Help: "Number of active HTTP connections",
		},
	)

	leadTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lead_transitions_total",
			Help: "Status transition attempts by collection, target status and result",
		},
		[]string{"collection", "status", "result"},
	)

	snapshotUpdates = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lead_snapshot_updates_total",
			Help: "Snapshots applied per collection",
		},
		[]string{"collection"},
	)

	snapshotSize = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "lead_snapshot_size",
			Help: "Number of leads in the latest snapshot",
		},
		[]string{"collection"},
	)

	snapshotErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lead_snapshot_errors_total",
			Help: "Live subscription failures per collection",
		},
		[]string{"collection"},
	)
)

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		activeConnections.Inc()
		defer activeConnections.Dec()

		rw := &responseWriter{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		next.ServeHTTP(rw, r)

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(rw.statusCode)
		path := routePattern(r)

		httpRequestsTotal.WithLabelValues(r.Method, path, status).Inc()
		httpRequestDuration.WithLabelValues(r.Method, path).Observe(duration)
	})
}

// routePattern keeps lead ids out of the label set.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return r.URL.Path
}

// Recorder feeds lead metrics from the use case and snapshot layers.
type Recorder struct{}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (Recorder) RecordTransition(collection, status, result string) {
	leadTransitions.WithLabelValues(collection, status, result).Inc()
}

func (Recorder) RecordSnapshot(collection string, size int) {
	snapshotUpdates.WithLabelValues(collection).Inc()
	snapshotSize.WithLabelValues(collection).Set(float64(size))
}

func (Recorder) RecordSnapshotError(collection string) {
	snapshotErrors.WithLabelValues(collection).Inc()
}
