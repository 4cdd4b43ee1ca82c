// Package middleware provides the HTTP middleware chain: panic
// recovery, request IDs, structured request logging with metrics,
// CORS, and per-request timeouts.
package middleware
