package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// RequestMetrics tracks inbound HTTP request outcomes.
type RequestMetrics struct {
	// RequestsTotal counts requests by method, path, and status.
	RequestsTotal *prometheus.CounterVec

	// Duration observes request latency by path.
	Duration *prometheus.HistogramVec
}

func newRequestMetrics(namespace string, registry *prometheus.Registry) *RequestMetrics {
	m := &RequestMetrics{
		RequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests by method, path, and status.",
		}, []string{"method", "path", "status"}),
		Duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by path.",
			// Generation requests run for seconds to minutes; plain
			// directory requests finish in microseconds.
			Buckets: []float64{0.001, 0.01, 0.1, 0.5, 1, 5, 15, 30, 60, 120},
		}, []string{"path"}),
	}

	registry.MustRegister(m.RequestsTotal, m.Duration)
	return m
}

// RequestCompleted records one finished HTTP request.
func (m *RequestMetrics) RequestCompleted(method, path string, status int, elapsed time.Duration) {
	m.RequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.Duration.WithLabelValues(path).Observe(elapsed.Seconds())
}
