// Package logging provides structured logging utilities for supercal.
//
// This package centralizes logging patterns to ensure consistent, structured
// logging throughout the codebase using the standard library's slog package.
//
// # Key Features
//
//   - Structured logging with slog
//   - Credential sanitization (session hashing)
//   - Consistent attribute naming across the codebase
//
// # Usage Patterns
//
// Create a logger with standard attributes:
//
//	logger := logging.WithOperation(slog.Default(), "agent.run")
//	logger.Info("loop finished", logging.Status(logging.StatusSuccess))
//
// Sanitize sensitive data before logging:
//
//	logger.Info("chat request", logging.SessionHash(token))
//
// Tokens and credentials are never logged directly; only a truncated SHA-256
// hash is emitted so log entries from one session can be correlated.
package logging
