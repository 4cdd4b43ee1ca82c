// Spyglass is a backend that mirrors its own request traffic to live
// observers.
//
// It manages a small user directory, proxies generation requests to a
// local Ollama service, and broadcasts every request/response lifecycle
// as structured JSON events to any number of WebSocket observers.
//
// Usage:
//
//	# Start the server with default configuration
//	spyglass run
//
//	# Start with a custom configuration file
//	spyglass run --config /path/to/spyglass.yaml
//
//	# Show version information
//	spyglass version
package main

func main() {
	Execute()
}
