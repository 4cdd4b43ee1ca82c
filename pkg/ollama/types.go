package ollama

// GenerateRequest is the JSON body sent to the Ollama /api/generate
// endpoint. Streaming is always disabled; the pipeline wants a single
// synchronous response.
type GenerateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

// GenerateResult is the outcome of a generation call.
//
// A result is returned whenever Ollama produced an HTTP response,
// including non-2xx statuses, so the caller can mirror the upstream
// response to observers before classifying the failure.
type GenerateResult struct {
	// StatusCode is the HTTP status returned by Ollama.
	StatusCode int

	// Payload is the decoded JSON body, or {"raw_response": <text>} when
	// the body was not valid JSON.
	Payload any

	// Text is the generated text extracted from the response. When the
	// upstream JSON lacks a "response" field, Text carries a
	// deterministic fallback message instead.
	Text string
}

// fallbackText is returned when a 2xx Ollama response carries no
// "response" field.
const fallbackText = "Error: No 'response' field found in Ollama output."
