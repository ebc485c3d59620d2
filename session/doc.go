// Package session owns the scoped lifecycle of the session cookie and its
// paired CSRF cookie: set, read, clear, with hardened attributes.
//
// # Cookie pairing
//
// Every SetSession writes two cookies in the same response:
//
//   - the session cookie (httpOnly, Secure in production, SameSite>=Lax,
//     Path=/, MaxAge matching the token lifetime), and
//   - the CSRF cookie (readable by client code) carrying a fresh random value.
//
// The pair lives and dies together: rotation replaces both, ClearSession
// expires both. A CSRF value from a rotated-away session can therefore never
// validate against the current one.
//
// # Failure policy
//
// Cookie reads fail soft: a missing or malformed cookie is "no session", never
// an error. The system fails closed (deny access), not loudly.
//
// # What this package must NOT do
//
//   - Verify token signatures (that is token.Manager's job).
//   - Talk to the commerce backend or Redis.
package session
