// Package rate provides internal primitives for login attempt limiting:
// an abstract per-key counter store, Redis-backed and in-memory backends,
// and the fixed-window limiter applied to the login operation.
//
// # Window semantics
//
// Fixed-window counters: increment plus window TTL set on the first hit.
// Key prefix:
//   - lg: — login per-IP
//
// Once a key is over the limit, further checks reject without advancing the
// counter, so rejection is idempotent and the window end stays stable.
//
// # What this package must NOT do
//
//   - Implement HTTP semantics (status codes live in httpapi).
//   - Be imported outside the shopauth module.
package rate
