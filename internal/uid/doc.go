// Package uid issues opaque session tokens drawn from a cryptographically secure
// entropy source.
//
// Each [Generator] owns its own record of issued tokens. Two generators never share
// that record, so independent engines (and tests) cannot observe each other.
//
// # What this package must NOT do
//
//   - Keep package-level mutable state.
//   - Be imported outside the goSession module.
package uid
