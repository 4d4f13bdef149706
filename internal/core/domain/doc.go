// Package domain defines the core domain models for sessionlink.
//
// Domain models are plain values without any IO dependencies:
//
//   - Session: the bearer token together with the identity derived from it
//   - Identity: the fixed projection of decoded credential claims
//   - Errors: coded domain errors shared by the store and the CLI
//
// A Session is always replaced as a whole. Token and Identity are never
// mutated independently.
package domain
