// Package jwt wraps session tokens in signed JWT envelopes for header-based transports.
//
// [Manager] signs a session token into the "sid" claim and verifies it on the way back.
// Ed25519 (default) and HS256 are supported.
//
// # What this package must NOT do
//
//   - Interpret the session token or load sessions.
//   - Carry credentials in claims; the envelope only transports the opaque token.
package jwt
