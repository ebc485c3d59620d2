// Package audit provides the internal event model, sinks, and the async
// dispatcher behind the storefront auth core's security logging. Full failure
// detail is recorded here and only here; client-facing responses carry generic
// messages.
//
// # What this package must NOT do
//
//   - Block request paths: Emit is bounded by the dispatcher buffer and the
//     caller's context.
//   - Be imported outside the shopauth module (the root package re-exports the
//     public aliases).
package audit
