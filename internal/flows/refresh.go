package flows

import "context"

// RefreshFailureKind distinguishes the refresh outcomes the HTTP layer maps
// to distinct response codes.
type RefreshFailureKind int

const (
	RefreshNone RefreshFailureKind = iota
	RefreshNoToken
	RefreshInvalidToken
	RefreshUserNotFound
	RefreshInternal
)

// RefreshResult is the flow-local refresh response shape. On failure the
// session has already been cleared unless Kind is RefreshNoToken.
type RefreshResult struct {
	Kind      RefreshFailureKind
	User      User
	Token     string
	CSRFToken string
	Err       error
}

// RefreshMetrics carries metric IDs needed by the refresh flow.
type RefreshMetrics struct {
	RefreshSuccess int
	RefreshFailure int
	SessionIssued  int
	SessionCleared int
}

// RefreshEvents carries audit event names used by the refresh flow.
type RefreshEvents struct {
	RefreshSuccess string
	RefreshFailure string
}

// RefreshDeps captures refresh flow dependencies.
type RefreshDeps struct {
	ValidateToken func(ctx context.Context, token string) (string, bool, error)
	FetchUser     func(ctx context.Context, userID string) (User, error)
	NewSessionID  func() string
	IssueToken    func(user User, sessionID string) (string, error)

	MetricInc func(int)
	EmitAudit func(ctx context.Context, event string, success bool, userID, sessionID string, err error, meta func() map[string]string)

	Metrics RefreshMetrics
	Events  RefreshEvents
}

// RunRefresh validates the current session token against the backend and
// rotates the session: new session ID, new signed token, new CSRF pair. Every
// failure past the missing-cookie case clears the session before returning,
// so a client that fails refresh is never left holding stale credentials.
func RunRefresh(ctx context.Context, io SessionIO, deps RefreshDeps) RefreshResult {
	if deps.MetricInc == nil {
		deps.MetricInc = func(int) {}
	}
	if deps.EmitAudit == nil {
		deps.EmitAudit = func(context.Context, string, bool, string, string, error, func() map[string]string) {}
	}

	fail := func(kind RefreshFailureKind, userID string, err error, reason string) RefreshResult {
		io.ClearSession()
		deps.MetricInc(deps.Metrics.SessionCleared)
		deps.MetricInc(deps.Metrics.RefreshFailure)
		deps.EmitAudit(ctx, deps.Events.RefreshFailure, false, userID, "", err, func() map[string]string {
			return map[string]string{"reason": reason}
		})
		return RefreshResult{Kind: kind, Err: err}
	}

	token, ok := io.ReadSession()
	if !ok || token == "" {
		deps.MetricInc(deps.Metrics.RefreshFailure)
		return RefreshResult{Kind: RefreshNoToken}
	}

	userID, valid, err := deps.ValidateToken(ctx, token)
	if err != nil {
		return fail(RefreshInternal, "", err, "validate_error")
	}
	if !valid {
		return fail(RefreshInvalidToken, "", nil, "token_rejected")
	}

	user, err := deps.FetchUser(ctx, userID)
	if err != nil || user.ID == "" {
		return fail(RefreshUserNotFound, userID, err, "user_not_found")
	}

	sessionID := deps.NewSessionID()
	signed, err := deps.IssueToken(user, sessionID)
	if err != nil {
		return fail(RefreshInternal, user.ID, err, "token_issue_failed")
	}

	csrf, err := io.SetSession(signed)
	if err != nil {
		return fail(RefreshInternal, user.ID, err, "session_set_failed")
	}

	deps.MetricInc(deps.Metrics.SessionIssued)
	deps.MetricInc(deps.Metrics.RefreshSuccess)
	deps.EmitAudit(ctx, deps.Events.RefreshSuccess, true, user.ID, sessionID, nil, nil)

	return RefreshResult{Kind: RefreshNone, User: user, Token: signed, CSRFToken: csrf}
}
