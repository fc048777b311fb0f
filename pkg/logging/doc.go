// Package logging provides structured logging for mcpweb with unified log
// handling and level filtering.
//
// The package wraps Go's standard slog package with a small subsystem-aware
// API so every component logs through the same handler with consistent
// attributes.
//
// # Usage
//
//	import "mcpweb/pkg/logging"
//
//	// Initialize with Info level logging to stderr
//	logging.InitForCLI(logging.LevelInfo, os.Stderr)
//
//	// Log messages
//	logging.Info("gateway", "Listening on %s", addr)
//	logging.Debug("config", "Loaded configuration from %s", configPath)
//	logging.Warn("validator", "Service %s failed validation", name)
//	logging.Error("backend", err, "Connection to %s failed", name)
//
// # Subsystem Organization
//
// Logs are categorized by subsystem to enable filtering:
//
//   - gateway: server lifecycle and transport handling
//   - registry: backend registration and the routing table
//   - validator: startup capability probes
//   - dispatcher: request routing across backends
//   - backend: proxied client connections
//   - config: configuration loading and watching
//   - agent: interactive client operations
//
// Output goes to stderr by default so that stdio transports keep stdout
// clean for protocol traffic.
package logging
