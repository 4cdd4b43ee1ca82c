package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"mercator-hq/spyglass/pkg/config"
)

// Collector owns all Prometheus metrics for Spyglass. It registers them
// on a private registry so tests can create collectors without global
// registration conflicts.
type Collector struct {
	registry *prometheus.Registry

	// Hub tracks observer connections and broadcast deliveries.
	Hub *HubMetrics

	// Request tracks inbound HTTP request outcomes.
	Request *RequestMetrics

	// Upstream tracks calls to the Ollama service.
	Upstream *UpstreamMetrics
}

// NewCollector creates a metrics collector with the given configuration
// and registry. If registry is nil, a new private registry is created
// and seeded with the standard Go runtime and process collectors.
func NewCollector(cfg config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	namespace := cfg.Namespace
	if namespace == "" {
		namespace = "spyglass"
	}

	return &Collector{
		registry: registry,
		Hub:      newHubMetrics(namespace, registry),
		Request:  newRequestMetrics(namespace, registry),
		Upstream: newUpstreamMetrics(namespace, registry),
	}
}

// Registry returns the underlying Prometheus registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler returns the /metrics HTTP handler.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
