package storage

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/yndnr/sessionlink/pkg/crypto/adaptive"
)

// Encrypted seals values before handing them to the wrapped storage.
//
// The storage key is used as additional data, so a sealed value copied
// under a different key fails to decrypt.
type Encrypted struct {
	inner  Storage
	cipher adaptive.Cipher
}

// NewEncrypted wraps inner with cipher.
func NewEncrypted(inner Storage, cipher adaptive.Cipher) *Encrypted {
	return &Encrypted{inner: inner, cipher: cipher}
}

// Get retrieves and decrypts a value.
func (e *Encrypted) Get(ctx context.Context, key string) (string, error) {
	sealed, err := e.inner.Get(ctx, key)
	if err != nil {
		return "", err
	}

	raw, err := base64.RawStdEncoding.DecodeString(sealed)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrCorrupted, err)
	}

	plaintext, err := e.cipher.Decrypt(raw, []byte(key))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrCorrupted, err)
	}
	return string(plaintext), nil
}

// Set encrypts and stores a value.
func (e *Encrypted) Set(ctx context.Context, key, value string) error {
	sealed, err := e.cipher.Encrypt([]byte(value), []byte(key))
	if err != nil {
		return fmt.Errorf("encrypt value: %w", err)
	}
	return e.inner.Set(ctx, key, base64.RawStdEncoding.EncodeToString(sealed))
}

// Remove deletes a key.
func (e *Encrypted) Remove(ctx context.Context, key string) error {
	return e.inner.Remove(ctx, key)
}

// Close closes the wrapped storage.
func (e *Encrypted) Close() error {
	return e.inner.Close()
}
