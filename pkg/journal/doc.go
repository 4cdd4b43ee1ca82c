// Package journal persists a copy of every emitted event for later
// inspection. Recording is asynchronous: the recorder enqueues events on
// a buffered channel and a background worker drains it to storage, so a
// full journal never slows a request down. When the buffer is full the
// event is dropped and counted.
//
// Two storage backends are provided: an in-memory ring for development
// and SQLite for persistence. A retention pruner deletes records past
// the configured age or count limit on a cron schedule.
package journal
