package pipeline

import (
	"context"
	"log/slog"
	"sync/atomic"

	"mercator-hq/spyglass/pkg/events"
	"mercator-hq/spyglass/pkg/telemetry/logging"
)

// Broadcaster delivers one event to all connected observers.
type Broadcaster interface {
	Broadcast(ctx context.Context, ev *events.Event)
}

// Sink receives a copy of every emitted event, in emission order. The
// event journal is a Sink; Sinks must not block.
type Sink interface {
	Record(ev *events.Event)
}

// Pipeline produces the event stream for request lifecycles. Every
// externally-triggered action begins an Invocation, which enforces the
// emission protocol: a client_request event first, any upstream events
// in call order, and exactly one terminal event before the response is
// returned.
type Pipeline struct {
	formatter   *events.Formatter
	broadcaster Broadcaster
	sinks       []Sink
	logger      *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithSink attaches an additional event sink.
func WithSink(s Sink) Option {
	return func(p *Pipeline) { p.sinks = append(p.sinks, s) }
}

// WithFormatter overrides the event formatter (used by tests to pin
// timestamps).
func WithFormatter(f *events.Formatter) Option {
	return func(p *Pipeline) { p.formatter = f }
}

// New creates a Pipeline that fans emitted events out through the
// broadcaster.
func New(b Broadcaster, opts ...Option) *Pipeline {
	p := &Pipeline{
		formatter:   events.NewFormatter(),
		broadcaster: b,
		logger:      slog.Default().With("component", "pipeline"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// emit builds and distributes one event.
func (p *Pipeline) emit(ctx context.Context, source events.Source, fields ...events.Field) {
	ev := p.formatter.Format(source, fields...)
	p.broadcaster.Broadcast(ctx, ev)
	for _, s := range p.sinks {
		s.Record(ev)
	}
	p.logger.Debug("event emitted", "source", ev.Source, "url", ev.URL, "status", ev.Status)
}

// Begin starts an invocation and emits its client_request event. The
// payload is stripped of credential fields before it leaves the process;
// a nil payload emits no request_payload field at all.
func (p *Pipeline) Begin(ctx context.Context, method, url string, payload map[string]any) *Invocation {
	fields := []events.Field{
		events.WithMethod(method),
		events.WithURL(url),
	}
	if payload != nil {
		fields = append(fields, events.WithRequestPayload(logging.StripSecrets(payload)))
	}
	p.emit(ctx, events.SourceClientRequest, fields...)

	return &Invocation{pipeline: p, method: method, url: url}
}

// Invocation tracks one request's pass through the pipeline. Exactly one
// terminal event is emitted per invocation; Respond and Fail mark it,
// and EnsureTerminal backstops paths that die before reaching either.
type Invocation struct {
	pipeline *Pipeline
	method   string
	url      string
	terminal atomic.Bool
}

// OllamaRequest emits the event preceding an outbound generation call.
func (inv *Invocation) OllamaRequest(ctx context.Context, url string, payload any) {
	inv.pipeline.emit(ctx, events.SourceOllamaRequest,
		events.WithMethod("POST"),
		events.WithURL(url),
		events.WithRequestPayload(payload),
	)
}

// OllamaResponse emits the event following an upstream response of any
// status, mirroring the upstream payload.
func (inv *Invocation) OllamaResponse(ctx context.Context, url string, status int, payload any) {
	inv.pipeline.emit(ctx, events.SourceOllamaResponse,
		events.WithURL(url),
		events.WithStatus(status),
		events.WithResponsePayload(payload),
	)
}

// OllamaError emits the event for an upstream transport failure.
func (inv *Invocation) OllamaError(ctx context.Context, url, detail string) {
	inv.pipeline.emit(ctx, events.SourceOllamaError,
		events.WithURL(url),
		events.WithDetail(detail),
	)
}

// Respond emits the terminal server_response event. Domain failures
// (user not found, bad credentials) terminate here too, with their
// failure-shaped payload and status; they are not errors from the
// pipeline's perspective.
func (inv *Invocation) Respond(ctx context.Context, status int, payload any) {
	inv.terminal.Store(true)
	inv.pipeline.emit(ctx, events.SourceServerResponse,
		events.WithMethod(inv.method),
		events.WithURL(inv.url),
		events.WithStatus(status),
		events.WithResponsePayload(payload),
	)
}

// Fail emits a server_error event describing an unexpected internal
// failure, followed by the terminal server_response with status 500.
func (inv *Invocation) Fail(ctx context.Context, detail string) {
	inv.pipeline.emit(ctx, events.SourceServerError,
		events.WithMethod(inv.method),
		events.WithURL(inv.url),
		events.WithDetail(detail),
	)
	inv.Respond(ctx, 500, map[string]any{"detail": "Internal server error"})
}

// Terminated reports whether the terminal event has been emitted.
func (inv *Invocation) Terminated() bool {
	return inv.terminal.Load()
}

// EnsureTerminal emits a degraded terminal event if none was emitted,
// so observers see a closing event for every opened request even when a
// handler path panics or returns early. Intended for use in a defer.
func (inv *Invocation) EnsureTerminal(ctx context.Context) {
	if inv.terminal.Load() {
		return
	}
	inv.Fail(ctx, "request terminated without a response")
}
