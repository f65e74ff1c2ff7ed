// Package log provides structured event capture for the mailbox core.
//
// This package defines the Logger interface and Event types for
// recording what a channel does: message traffic in both directions,
// lifecycle transitions, flow control (backpressure engage/release),
// power-context hooks and internal errors. It is separate from
// operational logging (slog) - event capture provides a complete
// machine-readable trace for debugging and analysis.
//
// # Basic Usage
//
// Applications configure capture by providing a Logger implementation:
//
//	// For development: log to console via slog
//	cfg.Logger = log.NewSlogAdapter(slog.Default())
//
//	// For production: write to binary file
//	cfg.Logger, _ = log.NewFileLogger("/var/log/mbox/trace.mlog")
//
//	// Both: use MultiLogger
//	cfg.Logger = log.NewMultiLogger(
//	    log.NewSlogAdapter(slog.Default()),
//	    fileLogger,
//	)
//
// # File Format
//
// Log files use CBOR encoding. The mbox-logdump CLI tool provides
// viewing and filtering.
package log
