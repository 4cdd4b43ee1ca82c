// Package server assembles the HTTP surface: API routes, the observer
// WebSocket endpoint, health probes, the optional metrics endpoint, and
// the middleware chain. It owns the http.Server lifecycle including
// graceful shutdown on signal or context cancellation.
//
// # Routes
//
//	POST /register/          register a user
//	POST /login/             authenticate a user
//	GET  /user/{username}/   fetch user info
//	PUT  /user/{username}/   update a user's password
//	POST /llm/generate       proxy a generation request to Ollama
//	GET  /ws/logs            observer event stream (WebSocket)
//	GET  /health             liveness probe
//	GET  /ready              readiness probe (upstream health)
//	GET  /metrics            Prometheus metrics (when enabled)
//
// # Middleware Chain
//
// Requests pass through, outermost first: recovery, logging, request
// ID, CORS, timeout. The timeout middleware exempts /ws/logs so
// observer connections can live indefinitely.
package server
