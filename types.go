package shopauth

import (
	"context"
	"io"

	internalaudit "github.com/hexlane/shopauth/internal/audit"
	"github.com/hexlane/shopauth/internal/flows"
)

// User is the storefront account representation returned by the commerce
// backend and surfaced on authenticated sessions.
type User = flows.User

// CartItem is a single guest-cart line item carried through login so the
// backend can merge it into the account cart.
type CartItem = flows.CartItem

// DegradeStatus defines a public type used by shopauth APIs.
//
// DegradeStatus instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type DegradeStatus = flows.DegradeStatus

const (
	// DegradeSkipped is an exported constant or variable used by the session engine.
	DegradeSkipped = flows.DegradeSkipped
	// DegradeOK is an exported constant or variable used by the session engine.
	DegradeOK = flows.DegradeOK
	// DegradeDegraded is an exported constant or variable used by the session engine.
	DegradeDegraded = flows.DegradeDegraded
)

// DegradeResult reports the outcome of a best-effort side operation such as
// the guest-cart merge: skipped, completed, or degraded with a reason.
type DegradeResult = flows.DegradeResult

// SessionStatus defines a public type used by shopauth APIs.
//
// SessionStatus instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type SessionStatus = flows.SessionStatus

const (
	// StatusUnauthenticated is an exported constant or variable used by the session engine.
	StatusUnauthenticated = flows.StatusUnauthenticated
	// StatusAuthenticated is an exported constant or variable used by the session engine.
	StatusAuthenticated = flows.StatusAuthenticated
)

// SessionState is returned by [Engine.ValidateSession]. A request is either
// authenticated with a user payload or unauthenticated with a zero User.
type SessionState = flows.SessionState

// LoginRequest is the input for [Engine.Login].
type LoginRequest = flows.LoginRequest

// LoginResult is returned by [Engine.Login]. It includes the signed session
// token, the CSRF pair value, the sanitized post-login redirect, and the
// guest-cart merge outcome.
type LoginResult = flows.LoginResult

// LogoutResult is returned by [Engine.Logout].
type LogoutResult = flows.LogoutResult

// RefreshResult is returned by [Engine.Refresh] on success. It carries the
// refreshed user payload, the new signed token, and the rotated CSRF value.
type RefreshResult = flows.RefreshResult

// Backend is the interface callers must implement to integrate shopauth with
// their commerce platform. It covers credential verification, token
// introspection, user lookup, logout notification, and guest-cart merging.
type Backend interface {
	Login(ctx context.Context, username, password string) (User, error)
	ValidateToken(ctx context.Context, token string) (userID string, valid bool, err error)
	GetUserData(ctx context.Context, userID string) (User, error)
	Logout(ctx context.Context) error
	MergeCart(ctx context.Context, items []CartItem) error
}

// AuditEvent is a structured audit record emitted by the engine.
type AuditEvent = internalaudit.Event

// AuditSink receives [AuditEvent] values from the engine’s audit dispatcher.
type AuditSink = internalaudit.Sink

// NoOpSink is an [AuditSink] that silently discards all events.
type NoOpSink = internalaudit.NoOpSink

// ChannelSink is a buffered channel-based [AuditSink].
type ChannelSink = internalaudit.ChannelSink

// JSONWriterSink is an [AuditSink] that writes JSON-encoded events to an
// [io.Writer].
type JSONWriterSink = internalaudit.JSONWriterSink

// NewChannelSink creates a [ChannelSink] with the given buffer capacity.
func NewChannelSink(buffer int) *ChannelSink {
	return internalaudit.NewChannelSink(buffer)
}

// NewJSONWriterSink creates a [JSONWriterSink] that writes to w.
func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return internalaudit.NewJSONWriterSink(w)
}
