package handlers

import (
	"encoding/json"
	"net/http"

	"mercator-hq/spyglass/pkg/hub"
	"mercator-hq/spyglass/pkg/ollama"
)

// Health serves the liveness and readiness probes. Probe requests are
// infrastructure traffic and do not enter the event stream.
type Health struct {
	client *ollama.Client
	hub    *hub.Hub
}

// NewHealth creates the health probe handler.
func NewHealth(client *ollama.Client, h *hub.Hub) *Health {
	return &Health{client: client, hub: h}
}

// Live handles GET /health.
func (h *Health) Live(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status":    "ok",
		"observers": h.hub.Count(),
	})
}

// Ready handles GET /ready. Readiness follows the Ollama client's
// observed health: the service accepts traffic but reports not-ready
// while the upstream is failing.
func (h *Health) Ready(w http.ResponseWriter, r *http.Request) {
	health := h.client.GetHealth()

	w.Header().Set("Content-Type", "application/json")
	if !health.IsHealthy {
		w.WriteHeader(http.StatusServiceUnavailable)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"status":               "not_ready",
			"detail":               "LLM service unhealthy",
			"consecutive_failures": health.ConsecutiveFailures,
		})
		return
	}

	_ = json.NewEncoder(w).Encode(map[string]any{
		"status": "ready",
	})
}
