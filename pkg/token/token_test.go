package token

import (
	"encoding/base64"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-signing-key"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return raw
}

func TestJWTDecoder_Decode(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	raw := signToken(t, jwt.MapClaims{
		"sub":        "alice",
		"privileged": true,
		"exp":        exp.Unix(),
	})

	claims, err := NewJWTDecoder().Decode(raw)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	if claims.Subject() != "alice" {
		t.Errorf("Subject() = %q, want %q", claims.Subject(), "alice")
	}
	if claims["privileged"] != true {
		t.Errorf("privileged = %v, want true", claims["privileged"])
	}
	if !claims.ExpiresAt().Equal(exp) {
		t.Errorf("ExpiresAt() = %v, want %v", claims.ExpiresAt(), exp)
	}
}

func TestJWTDecoder_IgnoresSignature(t *testing.T) {
	raw := signToken(t, jwt.MapClaims{"sub": "bob"})
	tampered := raw[:len(raw)-4] + "AAAA"

	claims, err := NewJWTDecoder().Decode(tampered)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if claims.Subject() != "bob" {
		t.Errorf("Subject() = %q, want %q", claims.Subject(), "bob")
	}
}

func segment(s string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(s))
}

func TestJWTDecoder_AnyHeader(t *testing.T) {
	payload := segment(`{"sub":"carol","privileged":true}`)

	tests := []struct {
		name   string
		header string
	}{
		{"no alg", segment(`{"typ":"JWT"}`)},
		{"unregistered alg", segment(`{"alg":"ES256K","typ":"JWT"}`)},
		{"alg none", segment(`{"alg":"none"}`)},
		{"header not json", segment(`opaque`)},
	}

	d := NewJWTDecoder()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := d.Decode(tt.header + "." + payload + ".sig")
			if err != nil {
				t.Fatalf("Decode failed: %v", err)
			}
			if claims.Subject() != "carol" {
				t.Errorf("Subject() = %q, want carol", claims.Subject())
			}
			if claims["privileged"] != true {
				t.Errorf("privileged = %v, want true", claims["privileged"])
			}
		})
	}
}

func TestJWTDecoder_Malformed(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"empty", ""},
		{"not a jwt", "not-a-token"},
		{"two segments", "abc.def"},
		{"bad base64 payload", "eyJhbGciOiJIUzI1NiJ9.!!!.sig"},
		{"payload not json", "eyJhbGciOiJIUzI1NiJ9.bm90LWpzb24.sig"},
		{"empty payload", "eyJhbGciOiJIUzI1NiJ9..sig"},
		{"four segments", "a.b.c.d"},
		{"payload is array", "eyJhbGciOiJIUzI1NiJ9." + segment(`[1,2]`) + ".sig"},
		{"payload is null", "eyJhbGciOiJIUzI1NiJ9." + segment(`null`) + ".sig"},
		{"payload is number", "eyJhbGciOiJIUzI1NiJ9." + segment(`42`) + ".sig"},
	}

	d := NewJWTDecoder()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := d.Decode(tt.raw)
			if !errors.Is(err, ErrMalformed) {
				t.Errorf("Decode(%q) error = %v, want ErrMalformed", tt.raw, err)
			}
		})
	}
}

func TestClaims_MissingFields(t *testing.T) {
	c := Claims{"sub": 42, "exp": "tomorrow"}

	if c.Subject() != "" {
		t.Errorf("Subject() = %q, want empty for non-string sub", c.Subject())
	}
	if !c.ExpiresAt().IsZero() {
		t.Errorf("ExpiresAt() = %v, want zero for malformed exp", c.ExpiresAt())
	}
	if !(Claims{}).ExpiresAt().IsZero() {
		t.Error("ExpiresAt() should be zero when exp is absent")
	}
}

func TestDecoderFunc(t *testing.T) {
	var d Decoder = DecoderFunc(func(raw string) (Claims, error) {
		return Claims{"raw": raw}, nil
	})

	claims, err := d.Decode("abc.def.ghi")
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if claims["raw"] != "abc.def.ghi" {
		t.Errorf("raw = %v, want abc.def.ghi", claims["raw"])
	}
}
