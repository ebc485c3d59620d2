// Package httpapi serves the session endpoints over JSON: login, logout,
// refresh, and a read-only session probe. It translates engine sentinel
// errors into stable error codes and HTTP statuses, and marks every response
// uncacheable.
//
// # Endpoints
//
//   - POST /auth/login — authenticate, set the cookie pair, merge guest cart.
//   - POST /auth/logout — clear the session; CSRF-checked via the csrfToken
//     body field or the X-CSRF-Token header.
//   - POST /auth/refresh — rotate the session against the backend.
//   - GET  /auth/session — report the current session state, no mutation.
//
// # What this package must NOT do
//
//   - Talk to the commerce backend or Redis directly (Engine handles I/O).
//   - Set or clear cookies itself (the Engine owns the cookie pair).
//   - Leak which credential component failed a login.
package httpapi
