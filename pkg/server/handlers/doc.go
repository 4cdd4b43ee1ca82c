// Package handlers implements the HTTP API: user registration, login,
// user info lookup and password update, LLM generation proxying, the
// observer WebSocket endpoint, and health probes.
//
// Every API handler routes its lifecycle through the event pipeline, so
// each request produces a client_request event, any upstream events,
// and exactly one terminal event visible to connected observers.
package handlers
