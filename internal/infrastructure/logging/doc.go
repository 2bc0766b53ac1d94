// Package logging provides structured logging for OpenCrate.
//
// This package wraps Go's standard log/slog package to provide
// consistent, structured logging across the CLI and the record observers.
//
// # Features
//
//   - JSON output for services (machine-parsable)
//   - Text output for interactive use (human-readable)
//   - Default fields (service, version) on all log entries
//   - Level-based filtering (debug, info, warn, error)
//   - Thread-safe for concurrent use
//
// # Configuration
//
// Logging is configured via the LoggingConfig in config.yaml:
//
//	logging:
//	  level: "info"      # debug, info, warn, error
//	  format: "json"     # json, text
//	  output: "stderr"   # stdout, stderr, discard
//
// # Usage
//
//	logger := logging.New(cfg.Logging, "1.0.0")
//	users := record.NewRepository(handle, account.Users, record.WithLogger(logger))
//
// # Security
//
// Never log secrets, tokens or passwords. Statement logging at debug level
// includes SQL text but never bound values.
package logging
