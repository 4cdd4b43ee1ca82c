package events

import "time"

// Field sets one optional field on an Event under construction.
type Field func(*Event)

// WithMethod sets the HTTP method of the request being described.
func WithMethod(method string) Field {
	return func(e *Event) { e.Method = method }
}

// WithURL sets the URL path or upstream address the event refers to.
func WithURL(url string) Field {
	return func(e *Event) { e.URL = url }
}

// WithStatus sets the HTTP status code carried by the event.
func WithStatus(status int) Field {
	return func(e *Event) { e.Status = status }
}

// WithRequestPayload attaches the (already sanitized) request body.
// The payload is carried opaquely; the formatter never validates its shape.
func WithRequestPayload(payload any) Field {
	return func(e *Event) { e.RequestPayload = payload }
}

// WithResponsePayload attaches the response body.
func WithResponsePayload(payload any) Field {
	return func(e *Event) { e.ResponsePayload = payload }
}

// WithDetail attaches a human-readable detail message.
func WithDetail(detail string) Field {
	return func(e *Event) { e.Detail = detail }
}

// Formatter builds Events. It is stateless apart from the clock, which is
// injectable so tests can pin timestamps.
type Formatter struct {
	now func() time.Time
}

// NewFormatter returns a Formatter using the wall clock.
func NewFormatter() *Formatter {
	return &Formatter{now: time.Now}
}

// NewFormatterWithClock returns a Formatter using the provided clock.
func NewFormatterWithClock(now func() time.Time) *Formatter {
	return &Formatter{now: now}
}

// Format constructs an Event for the given source tag. The timestamp is
// assigned here, at formatting time, so events built by a single pipeline
// invocation carry timestamps in emission order.
func (f *Formatter) Format(source Source, fields ...Field) *Event {
	e := &Event{Source: source}
	for _, field := range fields {
		field(e)
	}
	e.Timestamp = f.now().Format(time.RFC3339Nano)
	return e
}
