// Package identity derives the cache lookup key (internal id) for a session token.
//
// Without a secret the internal id is the token itself. With a secret it is an HMAC over
// the token followed by the values of a fixed, ordered list of request attributes.
// Attributes missing from the request are skipped rather than hashed as empty strings,
// so dropping an optional header keeps the same id while changing its value does not.
//
// # What this package must NOT do
//
//   - Read cookies or touch the session cache.
//   - Be imported outside the goSession module.
package identity
