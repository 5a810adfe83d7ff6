// Package logging provides a minimal logging interface and adapters for AgentWire.
//
// The Logger interface defines the standard logging methods (Debug, Info,
// Warn, Error) that the driver, translators and transports use for
// observability. This package includes:
//
//   - Logger interface for dependency injection
//   - SlogAdapter wrapping Go's structured logging
//   - NoOpLogger for silent operation (testing, minimal setups)
//   - AgentWireLogger with contextual helpers (component, thread, run) and
//     domain specific helpers for run completion, tool correlation and
//     stream delivery
//
// Usage:
//
//	logger := logging.NewSlogLogger(logging.LogLevelInfo, "json", false)
//	drv := driver.New(engine, func(o *driver.Options) { o.Logger = logger })
//
// The design intentionally keeps the interface minimal to avoid vendor
// lock-in while supporting structured logging where available.
package logging
