package logger

import (
	"log/slog"
	"strings"
)

// Key fragments that mark an attribute as a credential.
var sensitiveKeyPatterns = []string{
	"password",
	"secret",
	"token",
	"credential",
	"authorization",
	"bearer",
	"api_key",
	"encryption_key",
}

const redactedValue = "***REDACTED***"

// redactSensitive masks credential-like values before they are written.
func redactSensitive(a slog.Attr) slog.Attr {
	switch a.Value.Kind() {
	case slog.KindString:
		v := a.Value.String()
		if v == "" {
			return a
		}
		if IsSensitiveKey(a.Key) {
			return slog.String(a.Key, redactedValue)
		}
		if IsSensitiveValue(v) {
			return slog.String(a.Key, RedactString(v))
		}
	case slog.KindGroup:
		attrs := a.Value.Group()
		out := make([]slog.Attr, len(attrs))
		for i, attr := range attrs {
			out[i] = redactSensitive(attr)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(out...)}
	}
	return a
}

// RedactString masks a credential, keeping just enough to tell two apart.
// Non-credential values are returned unchanged.
func RedactString(value string) string {
	if rest, ok := cutBearer(value); ok {
		return "Bearer " + maskJWT(rest)
	}
	if looksLikeJWT(value) {
		return maskJWT(value)
	}
	return value
}

// IsSensitiveKey checks if a key name suggests sensitive content.
func IsSensitiveKey(key string) bool {
	keyLower := strings.ToLower(key)
	for _, pattern := range sensitiveKeyPatterns {
		if strings.Contains(keyLower, pattern) {
			return true
		}
	}
	return false
}

// IsSensitiveValue reports whether value looks like a bearer credential.
func IsSensitiveValue(value string) bool {
	if _, ok := cutBearer(value); ok {
		return true
	}
	return looksLikeJWT(value)
}

func cutBearer(value string) (string, bool) {
	if len(value) > 7 && strings.EqualFold(value[:7], "bearer ") {
		return strings.TrimSpace(value[7:]), true
	}
	return "", false
}

// looksLikeJWT matches compact JWTs: three segments, JSON header ("eyJ").
func looksLikeJWT(value string) bool {
	return strings.HasPrefix(value, "eyJ") && strings.Count(value, ".") == 2
}

// maskJWT keeps the first 6 and last 4 characters.
func maskJWT(value string) string {
	if len(value) <= 16 {
		return "***"
	}
	return value[:6] + "..." + value[len(value)-4:]
}
