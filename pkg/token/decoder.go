package token

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrMalformed is returned when a credential is not a structurally valid JWT.
var ErrMalformed = errors.New("token: malformed credential")

// Claims is a decoded claim set.
type Claims map[string]any

// Subject returns the "sub" claim, or "" when absent or not a string.
func (c Claims) Subject() string {
	sub, err := jwt.MapClaims(c).GetSubject()
	if err != nil {
		return ""
	}
	return sub
}

// ExpiresAt returns the "exp" claim, or the zero time when absent or malformed.
func (c Claims) ExpiresAt() time.Time {
	exp, err := jwt.MapClaims(c).GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}
	}
	return exp.Time
}

// Decoder parses a bearer credential into its claims.
type Decoder interface {
	Decode(raw string) (Claims, error)
}

// DecoderFunc adapts a function to the Decoder interface.
type DecoderFunc func(raw string) (Claims, error)

// Decode calls f(raw).
func (f DecoderFunc) Decode(raw string) (Claims, error) {
	return f(raw)
}

// JWTDecoder decodes JWT payloads without verifying signatures.
//
// Only the payload segment is read. The header is neither decoded nor
// checked, so tokens without an "alg" or with an algorithm golang-jwt does
// not register still decode.
type JWTDecoder struct {
	parser *jwt.Parser
}

// NewJWTDecoder creates a JWT decoder.
func NewJWTDecoder() *JWTDecoder {
	return &JWTDecoder{parser: jwt.NewParser()}
}

// Decode returns the payload claims of raw.
func (d *JWTDecoder) Decode(raw string) (Claims, error) {
	if raw == "" {
		return nil, fmt.Errorf("%w: empty", ErrMalformed)
	}

	parts := strings.Split(raw, ".")
	if len(parts) != 3 {
		return nil, fmt.Errorf("%w: want 3 segments, got %d", ErrMalformed, len(parts))
	}
	if parts[1] == "" {
		return nil, fmt.Errorf("%w: empty payload", ErrMalformed)
	}

	payload, err := d.parser.DecodeSegment(parts[1])
	if err != nil {
		return nil, fmt.Errorf("%w: payload: %v", ErrMalformed, err)
	}

	var claims jwt.MapClaims
	if err := json.Unmarshal(payload, &claims); err != nil {
		return nil, fmt.Errorf("%w: payload: %v", ErrMalformed, err)
	}
	if claims == nil {
		return nil, fmt.Errorf("%w: payload is not a JSON object", ErrMalformed)
	}

	return Claims(claims), nil
}
