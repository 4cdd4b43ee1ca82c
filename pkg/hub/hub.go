package hub

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"mercator-hq/spyglass/pkg/events"
	"mercator-hq/spyglass/pkg/telemetry/metrics"
)

// Sink is one observer delivery target. *Session implements Sink over a
// WebSocket connection; tests substitute in-memory fakes.
type Sink interface {
	// Send delivers one serialized event. It must respect ctx deadlines.
	Send(ctx context.Context, data []byte) error

	// RemoteAddr identifies the observer for logging.
	RemoteAddr() string
}

// Hub owns the set of connected observers and fans broadcast events out
// to all of them.
//
// Delivery to each observer runs in its own goroutine with its own
// timeout, so one slow or dead observer never delays or corrupts
// delivery to the others. A failed delivery is logged and counted but
// never removes the observer: removal is driven exclusively by the
// session's own read loop, which avoids racing a send failure against
// an in-flight disconnect.
type Hub struct {
	mu        sync.RWMutex
	observers map[Sink]struct{}

	sendTimeout time.Duration
	logger      *slog.Logger
	metrics     *metrics.HubMetrics
}

// Option configures a Hub.
type Option func(*Hub)

// WithMetrics attaches hub metrics.
func WithMetrics(m *metrics.HubMetrics) Option {
	return func(h *Hub) { h.metrics = m }
}

// WithLogger overrides the default logger.
func WithLogger(logger *slog.Logger) Option {
	return func(h *Hub) { h.logger = logger }
}

// New creates a Hub. sendTimeout bounds each per-observer delivery.
func New(sendTimeout time.Duration, opts ...Option) *Hub {
	h := &Hub{
		observers:   make(map[Sink]struct{}),
		sendTimeout: sendTimeout,
		logger:      slog.Default().With("component", "hub"),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Register adds an observer. It is called only after the transport
// handshake has succeeded; the transport never offers the same
// connection identity twice.
func (h *Hub) Register(s Sink) {
	h.mu.Lock()
	h.observers[s] = struct{}{}
	count := len(h.observers)
	h.mu.Unlock()

	if h.metrics != nil {
		h.metrics.ObserverConnected()
	}
	h.logger.Info("observer connected", "remote", s.RemoteAddr(), "observers", count)
}

// Unregister removes an observer. It is safe to call for an observer
// that is already absent; the second call is a no-op.
func (h *Hub) Unregister(s Sink) {
	h.mu.Lock()
	_, present := h.observers[s]
	if present {
		delete(h.observers, s)
	}
	count := len(h.observers)
	h.mu.Unlock()

	if !present {
		return
	}
	if h.metrics != nil {
		h.metrics.ObserverDisconnected()
	}
	h.logger.Info("observer disconnected", "remote", s.RemoteAddr(), "observers", count)
}

// Count returns the number of registered observers.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.observers)
}

// Broadcast serializes the event once and delivers it to every
// registered observer concurrently. It returns after every delivery
// attempt has completed (success or failure); each attempt is bounded
// by the hub's send timeout, so a stalled observer cannot pin the call
// for longer than that.
//
// An observer that disconnects while the broadcast is in flight may or
// may not receive the event; either way the broadcast itself never
// fails. Serialization errors are logged and the event is dropped.
func (h *Hub) Broadcast(ctx context.Context, ev *events.Event) {
	data, err := ev.Marshal()
	if err != nil {
		h.logger.Error("failed to serialize event", "source", ev.Source, "error", err)
		return
	}

	// Snapshot under the read lock; sends happen outside it.
	h.mu.RLock()
	targets := make([]Sink, 0, len(h.observers))
	for s := range h.observers {
		targets = append(targets, s)
	}
	h.mu.RUnlock()

	if h.metrics != nil {
		h.metrics.BroadcastStarted()
	}
	if len(targets) == 0 {
		return
	}

	// Deliveries outlive the request's cancellation but not the send
	// timeout.
	base := context.WithoutCancel(ctx)

	var wg sync.WaitGroup
	for _, target := range targets {
		wg.Add(1)
		go func(s Sink) {
			defer wg.Done()

			sendCtx, cancel := context.WithTimeout(base, h.sendTimeout)
			defer cancel()

			err := s.Send(sendCtx, data)
			if h.metrics != nil {
				h.metrics.DeliveryCompleted(err == nil)
			}
			if err != nil {
				// The observer's own read loop will notice the dead
				// connection and unregister it.
				h.logger.Warn("failed to deliver event to observer",
					"remote", s.RemoteAddr(),
					"source", ev.Source,
					"error", err,
				)
			}
		}(target)
	}
	wg.Wait()
}
