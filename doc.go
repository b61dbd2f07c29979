// Package goSession provides server-side session authentication for net/http services:
// opaque client tokens resolved to stored sessions, optional HMAC binding of tokens to
// request attributes, per-request credential validation, failure rate limiting, and a
// reject-or-redirect policy for unauthenticated requests.
//
// Engine methods are safe to call from multiple goroutines after initialization
// through [Builder.Build]. Per-request state lives in a [Handle].
//
// # Architecture boundaries
//
// goSession is the public surface. It exposes [Engine], [Builder], [Config], [Handle],
// the pure [Decide] policy, and value types. Token generation and identity binding
// live under internal/. Storage, limiter backends and transports live in session,
// ratelimit and transport; HTTP glue lives in middleware.
//
// # What this package must NOT do
//
//   - Expose the cache record encoding in its public API.
//   - Perform I/O outside of Engine and Handle methods.
//   - Import middleware or the metrics exporters (no import cycles).
//   - Log domain rejections (bad session, not authenticated, invalid, rate limited) as errors.
package goSession
