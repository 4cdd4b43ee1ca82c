package ollama

import "fmt"

// TransportError represents a failure to reach the Ollama service at
// all: connection refused, DNS failure, or timeout. The pipeline maps it
// to 503 "LLM service unavailable".
type TransportError struct {
	// URL is the endpoint that could not be reached.
	URL string

	// Cause is the underlying error.
	Cause error
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	return fmt.Sprintf("ollama request to %s failed: %v", e.URL, e.Cause)
}

// Unwrap returns the underlying error for error chain support.
func (e *TransportError) Unwrap() error {
	return e.Cause
}

// StatusError represents a non-2xx response from the Ollama service.
// The service was reachable but rejected or failed the request; the
// pipeline maps it to 502 "Error from LLM service".
type StatusError struct {
	// StatusCode is the HTTP status returned by Ollama.
	StatusCode int

	// Body is the raw response body, truncated for logging.
	Body string
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	return fmt.Sprintf("ollama returned status %d: %s", e.StatusCode, e.Body)
}
