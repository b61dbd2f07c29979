// Package session provides the session record, the store adapter that applies the
// TTL policy, and cache backends (Redis and in-process memory).
//
// # Encoding
//
// Records are stored as a one-byte format version followed by a JSON body. Readers
// reject unknown versions instead of guessing at their layout.
//
// # Architecture boundaries
//
// This package owns [Store] and the [Cache] implementations. It does NOT resolve tokens,
// talk to transports, or decide whether a request is authenticated. Those
// responsibilities belong to the Engine.
//
// # What this package must NOT do
//
//   - Import goSession (no upward imports).
//   - Offer scan or iteration over stored sessions.
//   - Use the raw client token as a key when the Engine binds ids with a secret.
package session
