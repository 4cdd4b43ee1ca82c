// Package pipeline enforces the event emission protocol for request
// lifecycles.
//
// Every externally-triggered action emits, in strict call order:
//
//  1. client_request, with credentials stripped from the payload
//  2. for actions with an upstream call: ollama_request immediately
//     before it and ollama_response or ollama_error immediately after
//  3. exactly one terminal event — server_response on success and on
//     domain failures, or server_error followed by a 500 response on
//     internal failure
//
// Events from concurrent invocations interleave arbitrarily at the hub;
// ordering is only guaranteed within one invocation.
package pipeline
