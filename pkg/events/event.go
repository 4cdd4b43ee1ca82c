package events

import "encoding/json"

// Source identifies the lifecycle step an Event describes.
type Source string

// Event source tags. Every event emitted by the pipeline carries exactly
// one of these.
const (
	// SourceClientRequest is emitted when an inbound request is received.
	SourceClientRequest Source = "client_request"

	// SourceServerResponse is the terminal event for a request that
	// produced a definitive response, including domain failures such as
	// "user not found".
	SourceServerResponse Source = "server_response"

	// SourceServerError is the terminal event for an unexpected internal
	// failure.
	SourceServerError Source = "server_error"

	// SourceOllamaRequest is emitted immediately before an outbound call
	// to the Ollama service.
	SourceOllamaRequest Source = "ollama_request"

	// SourceOllamaResponse is emitted immediately after the Ollama
	// service responds, regardless of status code.
	SourceOllamaResponse Source = "ollama_response"

	// SourceOllamaError is emitted when the Ollama call fails at the
	// transport level (connection refused, timeout).
	SourceOllamaError Source = "ollama_error"
)

// Event is one structured record describing a single request lifecycle
// step. Events are constructed by a Formatter, serialized once, and
// immutable afterward.
//
// Field order in the serialized form is fixed: source first, any present
// optional fields next, timestamp last. Absent optional fields are
// omitted entirely, never emitted as null or empty.
type Event struct {
	Source          Source `json:"source"`
	Method          string `json:"method,omitempty"`
	URL             string `json:"url,omitempty"`
	Status          int    `json:"status,omitempty"`
	RequestPayload  any    `json:"request_payload,omitempty"`
	ResponsePayload any    `json:"response_payload,omitempty"`
	Detail          string `json:"detail,omitempty"`
	Timestamp       string `json:"timestamp"`
}

// Marshal serializes the event as a compact JSON object.
func (e *Event) Marshal() ([]byte, error) {
	return json.Marshal(e)
}
