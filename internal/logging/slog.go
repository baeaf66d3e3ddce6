package logging

import (
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
)

// Common log attribute keys for consistent naming across the codebase.
const (
	KeyOperation   = "operation"
	KeyTool        = "tool"
	KeyTurn        = "turn"
	KeyStatus      = "status"
	KeyError       = "error"
	KeyModel       = "model"
	KeySessionHash = "session_hash"
)

// Status values for consistent logging.
// Note: These are intentionally duplicated from the instrumentation package
// to avoid circular dependencies (instrumentation imports logging).
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// WithOperation returns a logger with the operation attribute set.
func WithOperation(logger *slog.Logger, operation string) *slog.Logger {
	return logger.With(slog.String(KeyOperation, operation))
}

// WithTool returns a logger with the tool attribute set.
func WithTool(logger *slog.Logger, tool string) *slog.Logger {
	return logger.With(slog.String(KeyTool, tool))
}

// Operation returns a slog attribute for the operation name.
func Operation(op string) slog.Attr {
	return slog.String(KeyOperation, op)
}

// Tool returns a slog attribute for the tool name.
func Tool(tool string) slog.Attr {
	return slog.String(KeyTool, tool)
}

// Status returns a slog attribute for the status.
func Status(status string) slog.Attr {
	return slog.String(KeyStatus, status)
}

// Model returns a slog attribute for the language model name.
func Model(model string) slog.Attr {
	return slog.String(KeyModel, model)
}

// Err returns a slog attribute for an error.
// If err is nil, returns an empty Group attribute that will be omitted from
// output, so Err(maybeNilErr) is always safe to pass.
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Group("")
	}
	return slog.String(KeyError, err.Error())
}

// AnonymizeCredential returns a hashed representation of a credential for
// logging purposes. This allows correlation of log entries across one session
// without exposing the token itself.
func AnonymizeCredential(credential string) string {
	if credential == "" {
		return ""
	}
	hash := sha256.Sum256([]byte(credential))
	return "session:" + hex.EncodeToString(hash[:8])
}

// SessionHash returns a slog attribute with the anonymized session credential.
func SessionHash(credential string) slog.Attr {
	return slog.String(KeySessionHash, AnonymizeCredential(credential))
}
