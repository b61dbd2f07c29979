// Package ratelimit defines the limiter client contract consumed by the session engine
// and ships two fixed-window implementations: [RedisLimiter] for shared deployments and
// [MemoryLimiter] for tests and single-process servers.
//
// Query inspects a bucket without charging it. Take charges one unit. Both return a
// [Decision] carrying the bucket size, the remaining budget and the time until reset.
//
// # What this package must NOT do
//
//   - Know about sessions, tokens or HTTP responses.
package ratelimit
