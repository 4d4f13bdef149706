// Package adaptive provides authenticated encryption for values kept at rest.
//
// The cipher is chosen from the platform:
//
//   - AES-256-GCM on amd64/arm64, where Go uses hardware AES
//   - ChaCha20-Poly1305 everywhere else
//
// Keys are 32 bytes. Ciphertexts carry their nonce as a prefix, so a value
// encrypted by one process can be decrypted by any other process holding the
// same key and cipher type.
//
// Usage:
//
//	key, err := adaptive.ParseKey(hexKey)
//	c, err := adaptive.New(key)
//	sealed, err := c.Encrypt(plaintext, aad)
//	plaintext, err := c.Decrypt(sealed, aad)
package adaptive
