// Package session holds the current authentication session.
//
// A Store owns one Session value. It decodes the bearer credential handed to
// SetSession, persists it through a storage.Storage, and notifies subscribers
// whenever the session changes. Init restores a previously persisted
// credential on start-up.
//
// Reads (Current) never block. Mutations and the notifications they trigger
// are serialized, so every subscriber observes changes in the same order.
package session
