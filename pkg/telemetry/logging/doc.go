// Package logging provides structured logging setup and credential
// stripping.
//
// The package wraps Go's standard log/slog with:
//   - JSON and text output formats selected by configuration
//   - A runtime-mutable minimum level (see Logger.SetLevel), used by the
//     config watcher for hot reload
//   - StripSecrets, which removes credential fields from request
//     payloads before they are logged or broadcast to observers
//
// Usage:
//
//	logger, err := logging.New(logging.Config{Level: "info", Format: "json"})
//	if err != nil { ... }
//	slog.Info("started") // default logger is installed by New
package logging
