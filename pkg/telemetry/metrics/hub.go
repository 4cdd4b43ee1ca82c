package metrics

import "github.com/prometheus/client_golang/prometheus"

// Delivery outcomes for broadcast delivery attempts.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// HubMetrics tracks observer connections and broadcast deliveries.
type HubMetrics struct {
	// ObserversConnected is the number of currently connected observers.
	ObserversConnected prometheus.Gauge

	// BroadcastsTotal counts broadcast calls.
	BroadcastsTotal prometheus.Counter

	// DeliveriesTotal counts per-observer delivery attempts by outcome.
	DeliveriesTotal *prometheus.CounterVec
}

func newHubMetrics(namespace string, registry *prometheus.Registry) *HubMetrics {
	m := &HubMetrics{
		ObserversConnected: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "hub",
			Name:      "observers_connected",
			Help:      "Number of currently connected observers.",
		}),
		BroadcastsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "hub",
			Name:      "broadcasts_total",
			Help:      "Total number of broadcast calls.",
		}),
		DeliveriesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "hub",
			Name:      "deliveries_total",
			Help:      "Per-observer delivery attempts by outcome.",
		}, []string{"outcome"}),
	}

	registry.MustRegister(m.ObserversConnected, m.BroadcastsTotal, m.DeliveriesTotal)
	return m
}

// ObserverConnected records a new observer registration.
func (m *HubMetrics) ObserverConnected() {
	m.ObserversConnected.Inc()
}

// ObserverDisconnected records an observer removal.
func (m *HubMetrics) ObserverDisconnected() {
	m.ObserversConnected.Dec()
}

// BroadcastStarted records one broadcast call.
func (m *HubMetrics) BroadcastStarted() {
	m.BroadcastsTotal.Inc()
}

// DeliveryCompleted records one per-observer delivery attempt.
func (m *HubMetrics) DeliveryCompleted(success bool) {
	outcome := OutcomeSuccess
	if !success {
		outcome = OutcomeFailure
	}
	m.DeliveriesTotal.WithLabelValues(outcome).Inc()
}
