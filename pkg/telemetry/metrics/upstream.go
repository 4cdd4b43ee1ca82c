package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Upstream call outcomes.
const (
	UpstreamSuccess        = "success"
	UpstreamTransportError = "transport_error"
	UpstreamStatusError    = "upstream_error"
)

// UpstreamMetrics tracks calls to the Ollama service.
type UpstreamMetrics struct {
	// CallsTotal counts generation calls by outcome.
	CallsTotal *prometheus.CounterVec

	// Duration observes generation latency.
	Duration prometheus.Histogram
}

func newUpstreamMetrics(namespace string, registry *prometheus.Registry) *UpstreamMetrics {
	m := &UpstreamMetrics{
		CallsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ollama",
			Name:      "calls_total",
			Help:      "Generation calls by outcome.",
		}, []string{"outcome"}),
		Duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "ollama",
			Name:      "call_duration_seconds",
			Help:      "Generation call latency.",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120},
		}),
	}

	registry.MustRegister(m.CallsTotal, m.Duration)
	return m
}

// CallCompleted records one generation call.
func (m *UpstreamMetrics) CallCompleted(outcome string, elapsed time.Duration) {
	m.CallsTotal.WithLabelValues(outcome).Inc()
	m.Duration.Observe(elapsed.Seconds())
}
