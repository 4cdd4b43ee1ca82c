package handlers

import (
	"log/slog"
	"net/http"

	"github.com/coder/websocket"

	"mercator-hq/spyglass/pkg/hub"
)

// Observers upgrades GET /ws/logs connections and hands them to the
// broadcast hub. Observers only receive; anything they send is drained
// by the session's liveness loop.
type Observers struct {
	hub    *hub.Hub
	logger *slog.Logger
}

// NewObservers creates the observer endpoint handler.
func NewObservers(h *hub.Hub) *Observers {
	return &Observers{
		hub:    h,
		logger: slog.Default().With("component", "handlers.observers"),
	}
}

// ServeHTTP handles GET /ws/logs.
func (h *Observers) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		h.logger.WarnContext(r.Context(), "websocket accept failed",
			"remote_addr", r.RemoteAddr,
			"error", err,
		)
		return
	}

	h.logger.InfoContext(r.Context(), "observer connected", "remote_addr", r.RemoteAddr)

	// Run blocks until the observer disconnects; it registers the
	// session and guarantees exactly one unregister on the way out.
	hub.NewSession(conn, h.hub, r.RemoteAddr).Run(r.Context())

	h.logger.InfoContext(r.Context(), "observer disconnected", "remote_addr", r.RemoteAddr)
}
