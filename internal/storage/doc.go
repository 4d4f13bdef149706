// Package storage provides durable string storage for persisted session state.
//
// It is the client-side counterpart of a browser's local storage: a small
// set of named string values that survive process restarts. Drivers:
//
//   - memory: process-local map, lost on exit (tests, one-shot runs)
//   - badger: embedded Badger v3 database in a local directory (default)
//   - redis:  shared Redis instance, for clients that hop between hosts
//   - sqlite: single SQLite file through gorm
//
// Any driver can be wrapped with at-rest encryption (see Encrypted), in
// which case values are sealed with an adaptive AEAD cipher keyed by the
// configured 32-byte key and bound to their storage key.
//
// Writes are last-write-wins per key.
package storage
