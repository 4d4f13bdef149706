// Package logger provides structured logging for sessionlink.
//
// It wraps log/slog:
//
//   - logger.go: Logger interface and configuration
//   - context.go: request IDs carried by context and added to records
//   - redact.go: credential redaction applied to every record
//
// Bearer credentials must never appear in logs. Attributes whose key names
// a credential are fully redacted, and any value shaped like a JWT or an
// Authorization header is masked regardless of its key.
package logger
