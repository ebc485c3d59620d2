package flows

import (
	"context"
	"errors"
)

// Username/password shape bounds enforced before any backend call. Bounding
// input first blunts abuse and avoids wasting backend round-trips on garbage.
const (
	MinUsernameLen = 3
	MaxUsernameLen = 255
	MinPasswordLen = 6
	MaxPasswordLen = 128
)

// LoginRequest is the flow-local login input shape.
type LoginRequest struct {
	Username   string
	Password   string
	CartItems  []CartItem
	RedirectTo string
}

// LoginResult is the flow-local login response shape.
type LoginResult struct {
	User       User
	Token      string
	CSRFToken  string
	RedirectTo string
	CartSync   DegradeResult
}

// LoginMetrics carries metric IDs needed by the login flow.
type LoginMetrics struct {
	LoginSuccess     int
	LoginFailure     int
	LoginRateLimited int
	RateStoreError   int
	CartSyncDegraded int
	SessionIssued    int
}

// LoginEvents carries audit event names used by the login flow.
type LoginEvents struct {
	LoginSuccess     string
	LoginFailure     string
	LoginRateLimited string
	RateStoreError   string
	CartSyncDegraded string
}

// LoginErrors carries host-level sentinel errors used by the login flow.
type LoginErrors struct {
	EngineNotReady     error
	InvalidUsername    error
	InvalidPassword    error
	InvalidCredentials error
	LoginFailed        error
	LoginError         error
	LoginRateLimited   error
	RateStoreFailed    error
}

// LoginDeps captures login flow dependencies.
type LoginDeps struct {
	ClientIPFromContext func(context.Context) string

	CheckLoginRate func(ctx context.Context, ip string) error
	ResetLoginRate func(ctx context.Context, ip string) error

	BackendLogin func(ctx context.Context, username, password string) (User, error)
	MergeCart    func(ctx context.Context, items []CartItem) error

	NewSessionID     func() string
	IssueToken       func(user User, sessionID string) (string, error)
	SanitizeRedirect func(requested string) string

	MetricInc func(int)
	EmitAudit func(ctx context.Context, event string, success bool, userID, sessionID string, err error, meta func() map[string]string)
	Warn      func(string, ...any)

	Metrics LoginMetrics
	Events  LoginEvents
	Errors  LoginErrors
}

// RunLogin executes the login flow: shape validation, rate limiting, backend
// authentication, session issuance, best-effort cart merge, and redirect
// sanitation. Backend rejections surface as a single generic failure so the
// response never reveals which credential component was wrong.
func RunLogin(ctx context.Context, req LoginRequest, io SessionIO, deps LoginDeps) (*LoginResult, error) {
	if deps.MetricInc == nil {
		deps.MetricInc = func(int) {}
	}
	if deps.EmitAudit == nil {
		deps.EmitAudit = func(context.Context, string, bool, string, string, error, func() map[string]string) {}
	}
	if deps.Warn == nil {
		deps.Warn = func(string, ...any) {}
	}
	if deps.ClientIPFromContext == nil {
		deps.ClientIPFromContext = func(context.Context) string { return "" }
	}
	if deps.BackendLogin == nil ||
		deps.NewSessionID == nil ||
		deps.IssueToken == nil ||
		deps.SanitizeRedirect == nil ||
		io == nil {
		return nil, deps.Errors.EngineNotReady
	}

	// Shape checks run before any rate or backend work so malformed input
	// costs nothing downstream.
	if n := len(req.Username); n < MinUsernameLen || n > MaxUsernameLen {
		deps.MetricInc(deps.Metrics.LoginFailure)
		return nil, deps.Errors.InvalidUsername
	}
	if n := len(req.Password); n < MinPasswordLen || n > MaxPasswordLen {
		deps.MetricInc(deps.Metrics.LoginFailure)
		return nil, deps.Errors.InvalidPassword
	}

	ip := deps.ClientIPFromContext(ctx)
	if deps.CheckLoginRate != nil {
		if err := deps.CheckLoginRate(ctx, ip); err != nil {
			// A counter-store outage still blocks the login (fail closed),
			// but it is an infrastructure failure, not a client violation.
			if deps.Errors.RateStoreFailed != nil && errors.Is(err, deps.Errors.RateStoreFailed) {
				deps.MetricInc(deps.Metrics.RateStoreError)
				deps.EmitAudit(ctx, deps.Events.RateStoreError, false, "", "", err, func() map[string]string {
					return map[string]string{"identifier": req.Username}
				})
				return nil, err
			}
			deps.MetricInc(deps.Metrics.LoginRateLimited)
			deps.EmitAudit(ctx, deps.Events.LoginRateLimited, false, "", "", deps.Errors.LoginRateLimited, func() map[string]string {
				return map[string]string{"identifier": req.Username}
			})
			return nil, deps.Errors.LoginRateLimited
		}
	}

	user, err := deps.BackendLogin(ctx, req.Username, req.Password)
	if err != nil {
		deps.MetricInc(deps.Metrics.LoginFailure)
		if deps.Errors.InvalidCredentials != nil && errors.Is(err, deps.Errors.InvalidCredentials) {
			deps.EmitAudit(ctx, deps.Events.LoginFailure, false, "", "", deps.Errors.LoginFailed, func() map[string]string {
				return map[string]string{"identifier": req.Username, "reason": "backend_rejected"}
			})
			return nil, deps.Errors.LoginFailed
		}
		deps.EmitAudit(ctx, deps.Events.LoginFailure, false, "", "", err, func() map[string]string {
			return map[string]string{"identifier": req.Username, "reason": "backend_error"}
		})
		return nil, deps.Errors.LoginError
	}

	sessionID := deps.NewSessionID()
	signed, err := deps.IssueToken(user, sessionID)
	if err != nil {
		deps.MetricInc(deps.Metrics.LoginFailure)
		deps.EmitAudit(ctx, deps.Events.LoginFailure, false, user.ID, sessionID, err, func() map[string]string {
			return map[string]string{"reason": "token_issue_failed"}
		})
		return nil, deps.Errors.LoginError
	}

	csrf, err := io.SetSession(signed)
	if err != nil {
		deps.MetricInc(deps.Metrics.LoginFailure)
		deps.EmitAudit(ctx, deps.Events.LoginFailure, false, user.ID, sessionID, err, func() map[string]string {
			return map[string]string{"reason": "session_set_failed"}
		})
		return nil, deps.Errors.LoginError
	}

	result := &LoginResult{
		User:       user,
		Token:      signed,
		CSRFToken:  csrf,
		RedirectTo: deps.SanitizeRedirect(req.RedirectTo),
		CartSync:   DegradeResult{Status: DegradeSkipped},
	}

	// Cart merge is best-effort: its failure is reported inline but never
	// aborts a login that has already succeeded.
	if len(req.CartItems) > 0 && deps.MergeCart != nil {
		if mergeErr := deps.MergeCart(ctx, req.CartItems); mergeErr != nil {
			result.CartSync = DegradeResult{Status: DegradeDegraded, Reason: "cart_merge_failed"}
			deps.MetricInc(deps.Metrics.CartSyncDegraded)
			deps.EmitAudit(ctx, deps.Events.CartSyncDegraded, false, user.ID, sessionID, mergeErr, nil)
		} else {
			result.CartSync = DegradeResult{Status: DegradeOK}
		}
	}

	if deps.ResetLoginRate != nil {
		if resetErr := deps.ResetLoginRate(ctx, ip); resetErr != nil {
			deps.Warn("shopauth: login rate counter reset failed")
		}
	}

	deps.MetricInc(deps.Metrics.SessionIssued)
	deps.MetricInc(deps.Metrics.LoginSuccess)
	deps.EmitAudit(ctx, deps.Events.LoginSuccess, true, user.ID, sessionID, nil, func() map[string]string {
		return map[string]string{"identifier": req.Username}
	})

	return result, nil
}
