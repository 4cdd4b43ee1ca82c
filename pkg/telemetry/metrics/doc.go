// Package metrics provides Prometheus metrics for Spyglass.
//
// All metrics live on a private registry owned by a Collector, exposed
// over HTTP via Collector.Handler at /metrics. Three metric groups
// exist: hub (observer connections, broadcast deliveries), http
// (request counts and latency), and ollama (upstream call outcomes and
// latency).
package metrics
