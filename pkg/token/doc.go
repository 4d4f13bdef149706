// Package token decodes bearer credentials into claim sets.
//
// Decoding is structural only: the signature is not verified because the
// client never holds the issuer's key. The server stays the authority on
// whether a credential is valid; the client only needs the claims to
// derive the identity it shows and keys its authorization checks off.
//
// Credential format:
//
//   - JWT compact serialization: header.payload.signature
//   - Header and payload are base64url-encoded JSON objects
package token
