// Package transport carries the session token between client and server.
//
// [Cookie] stores the token in a named cookie. [Header] wraps it in a signed JWT and
// exchanges it through the Authorization request header and a response header.
// Both satisfy goSession.Transport.
//
// # What this package must NOT do
//
//   - Load or store sessions.
//   - Import goSession (no upward imports).
package transport
