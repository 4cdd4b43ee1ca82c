// Package ollama provides the HTTP client for the upstream Ollama
// generation service.
//
// The client makes a single synchronous POST to /api/generate with
// {"model": ..., "prompt": ..., "stream": false} and classifies
// failures into two kinds the pipeline cares about:
//
//   - *TransportError: the service could not be reached (connection
//     refused, timeout). Mapped to HTTP 503.
//   - *StatusError: the service responded with a non-2xx status.
//     Mapped to HTTP 502. The decoded body is still returned so it can
//     be mirrored to observers.
//
// A non-JSON upstream body is never a parse failure; it is wrapped as
// {"raw_response": <text>}. A 2xx JSON body without a "response" field
// yields a deterministic fallback message.
//
// The client tracks health across calls (consecutive failures mark the
// upstream unhealthy) for the /ready endpoint.
package ollama
