// Package hub implements the live event broadcast pipeline: a registry
// of connected WebSocket observers and concurrent, failure-isolated
// fan-out of serialized events to all of them.
//
// # Failure Isolation
//
// Each delivery runs in its own goroutine bounded by a send timeout. A
// delivery failure is logged and counted but never mutates the
// registry; the failing observer's own read loop detects the dead
// connection and unregisters it. Letting the send path disconnect as
// well would race the read path's unregister, so it deliberately does
// not.
//
// # Observer Lifecycle
//
// An observer is registered only after a successful WebSocket accept
// and removed exactly once, on the first read error or close. Between
// those two points it is a valid broadcast target. Observers never feed
// data back into the pipeline; inbound frames are drained solely to
// detect liveness.
package hub
