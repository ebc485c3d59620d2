// Package flows contains the orchestration logic for the auth operations —
// login, logout, refresh, validate — decoupled from the root package through
// dependency structs. Each flow is a pure function over its deps, which keeps
// the state machine testable without cookies, Redis, or a live backend.
//
// # Fail-closed invariant
//
// Every failure path that touches session state clears it through the bound
// SessionIO before surfacing an error. Logout is the deliberate exception in
// the other direction: it reports success even when the backend call fails,
// because the client-visible guarantee is "cookies are gone".
//
// # What this package must NOT do
//
//   - Import the root shopauth package (the root imports flows, never the
//     reverse).
//   - Touch net/http directly; request/response access is abstracted behind
//     SessionIO.
package flows
