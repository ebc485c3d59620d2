package flows

import (
	"context"
	"encoding/json"
)

// User is the flow-local user record: fetched from the commerce backend and
// forwarded to callers, never interpreted beyond the identity fields needed
// for token issuance.
type User struct {
	ID      string          `json:"id"`
	Email   string          `json:"email,omitempty"`
	Profile json.RawMessage `json:"profile,omitempty"`
}

// CartItem is an opaque line item handed to the backend cart merge.
type CartItem struct {
	ID       string `json:"id"`
	Quantity int    `json:"quantity"`
}

// DegradeStatus classifies a best-effort side operation: it either ran clean,
// was not applicable, or failed without failing its parent operation.
type DegradeStatus int

const (
	// DegradeSkipped means the side operation was not attempted.
	DegradeSkipped DegradeStatus = iota
	// DegradeOK means the side operation completed.
	DegradeOK
	// DegradeDegraded means the side operation failed; the parent succeeded anyway.
	DegradeDegraded
)

// DegradeResult reports the outcome of a best-effort side operation so tests
// and clients can distinguish the degraded path from full success.
type DegradeResult struct {
	Status DegradeStatus `json:"status"`
	Reason string        `json:"reason,omitempty"`
}

// SessionStatus is the orchestrator's client-visible state.
type SessionStatus int

const (
	// StatusUnauthenticated means no usable session exists.
	StatusUnauthenticated SessionStatus = iota
	// StatusAuthenticated means the session token resolved to a live account.
	StatusAuthenticated
)

// SessionIO is the per-request cookie surface bound by the root engine.
// Flows mutate session state only through it, which keeps the fail-closed
// clearing observable in tests.
type SessionIO interface {
	ReadSession() (string, bool)
	SetSession(token string) (csrfToken string, err error)
	ClearSession()
	ValidateCSRF(submitted string) bool
}

// Service is the centralized flow runner built once by the root engine.
type Service struct {
	deps Deps
}

// Deps aggregates per-flow dependency wiring.
type Deps struct {
	Login    LoginDeps
	Logout   LogoutDeps
	Refresh  RefreshDeps
	Validate ValidateDeps
}

// New returns a flow service with immutable dependency wiring.
func New(deps Deps) Service {
	return Service{deps: deps}
}

// Initialized reports whether the service has been wired with flow deps.
func (s Service) Initialized() bool {
	return s.deps.Login.BackendLogin != nil
}

func (s Service) Login(ctx context.Context, req LoginRequest, io SessionIO) (*LoginResult, error) {
	return RunLogin(ctx, req, io, s.deps.Login)
}

func (s Service) Logout(ctx context.Context, csrfSubmitted string, io SessionIO) (*LogoutResult, error) {
	return RunLogout(ctx, csrfSubmitted, io, s.deps.Logout)
}

func (s Service) Refresh(ctx context.Context, io SessionIO) RefreshResult {
	return RunRefresh(ctx, io, s.deps.Refresh)
}

func (s Service) Validate(ctx context.Context, io SessionIO) SessionState {
	return RunValidate(ctx, io, s.deps.Validate)
}
