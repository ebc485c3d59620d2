// Package middleware exposes HTTP middleware adapters for route guarding and
// session enforcement built on top of shopauth.Engine validation.
//
// # Guards
//
//   - [Guard] — presence-only cookie check with login redirect; runs ahead of
//     page rendering on every request.
//   - [RequireSession] — full local token validation, 401 on failure; for API
//     routes that need a verified identity.
//
// [Guard] deliberately checks only that the session cookie exists. Deep
// validation on every page navigation would put token parsing on the hot path
// of anonymous traffic; an invalid cookie is instead caught by the page's own
// session call.
//
// # Architecture boundaries
//
// This package translates HTTP semantics into Engine calls. It does NOT
// implement authentication logic itself.
//
// # What this package must NOT do
//
//   - Parse or create session tokens directly (delegates to Engine).
//   - Call the commerce backend.
//   - Make authorization decisions beyond pass/redirect/reject.
package middleware
