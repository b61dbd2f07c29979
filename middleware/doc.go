// Package middleware exposes net/http adapters that install the goSession request handle
// and enforce authentication on routes.
//
// # Middleware
//
//   - [Session]: installs a [goSession.Handle] on every request.
//   - [Guard]: authenticates and applies the engine's reject-or-redirect policy.
//   - [Require] / [Try]: Guard in required or try mode.
//
// In try mode unauthenticated requests continue anonymously, except rate-limited ones,
// which are always answered with 429.
//
// # Architecture boundaries
//
// This package translates HTTP semantics into Engine calls. It does NOT implement
// authentication logic itself; decisions come from Engine.Authenticate and Engine.Decide.
//
// # What this package must NOT do
//
//   - Read or write session tokens directly (the Engine's transport does).
//   - Access the session cache.
package middleware
