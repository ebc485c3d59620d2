// Package shopauth provides the session and authentication core for a
// headless storefront: JWT session tokens in hardened cookies, a double-submit
// CSRF pair, Redis-backed login rate limiting, and cookie-driven route
// guarding in front of a commerce backend that owns all credentials.
//
// The package is designed for concurrent server workloads: Engine methods are
// safe to call from multiple goroutines after initialization through
// [Builder.Build]. Request and response writers are passed explicitly per
// call; the engine holds no per-request state.
//
// # Architecture boundaries
//
// shopauth is the public surface. It exposes [Engine], [Builder], [Config],
// the [Backend] integration interface, and value types (LoginResult,
// SessionState, MetricsSnapshot, etc.). Flow orchestration, rate limiting,
// and audit dispatch live under internal/ and are never exported directly.
//
// # What this package must NOT do
//
//   - Store or verify passwords; credential checks belong to the [Backend].
//   - Expose Redis clients or internal stores in its public API.
//   - Perform I/O outside of Engine methods (construction via Builder is
//     allocation-only until Build).
//
// # Performance contract
//
// ValidateSession is the hot path. It decodes the session cookie locally and
// never calls the backend. Login and Refresh are allowed one backend round
// trip plus one rate-store round trip per call.
package shopauth
