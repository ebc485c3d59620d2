// Package token encodes and decodes the storefront session token as an opaque
// signed string. The token carries an authenticated identity plus an expiration
// instant and nothing else; callers exchange it for user data through the
// commerce backend, never by inspecting it.
//
// # Trust model
//
// A token is either fully valid — signature verifies, not expired, claims parse —
// or it is worthless. Parse returns an error for every defect; there is no
// partial-trust result.
//
// # What this package must NOT do
//
//   - Perform I/O. Issue and Parse are pure CPU work.
//   - Know about cookies, HTTP, or Redis (session and transport concerns live
//     in the session and middleware packages).
package token
