package flows

import "context"

// LogoutResult is the flow-local logout response shape.
type LogoutResult struct {
	BackendSync DegradeResult
}

// LogoutMetrics carries metric IDs needed by the logout flow.
type LogoutMetrics struct {
	LogoutSuccess  int
	SessionCleared int
	CSRFRejected   int
}

// LogoutEvents carries audit event names used by the logout flow.
type LogoutEvents struct {
	Logout       string
	CSRFRejected string
}

// LogoutErrors carries host-level sentinel errors used by the logout flow.
type LogoutErrors struct {
	InvalidCSRF error
}

// LogoutDeps captures logout flow dependencies.
type LogoutDeps struct {
	BackendLogout func(ctx context.Context) error

	MetricInc func(int)
	EmitAudit func(ctx context.Context, event string, success bool, userID, sessionID string, err error, meta func() map[string]string)

	Metrics LogoutMetrics
	Events  LogoutEvents
	Errors  LogoutErrors
}

// RunLogout executes the logout flow. The only failure mode is a submitted
// CSRF token that does not match the cookie pair; everything else, including
// a failing backend notification, still clears the local session and reports
// success with a degraded sync status.
func RunLogout(ctx context.Context, csrfSubmitted string, io SessionIO, deps LogoutDeps) (*LogoutResult, error) {
	if deps.MetricInc == nil {
		deps.MetricInc = func(int) {}
	}
	if deps.EmitAudit == nil {
		deps.EmitAudit = func(context.Context, string, bool, string, string, error, func() map[string]string) {}
	}

	if csrfSubmitted != "" && !io.ValidateCSRF(csrfSubmitted) {
		deps.MetricInc(deps.Metrics.CSRFRejected)
		deps.EmitAudit(ctx, deps.Events.CSRFRejected, false, "", "", deps.Errors.InvalidCSRF, nil)
		return nil, deps.Errors.InvalidCSRF
	}

	result := &LogoutResult{BackendSync: DegradeResult{Status: DegradeSkipped}}

	if deps.BackendLogout != nil {
		if err := deps.BackendLogout(ctx); err != nil {
			result.BackendSync = DegradeResult{Status: DegradeDegraded, Reason: "backend_logout_failed"}
		} else {
			result.BackendSync = DegradeResult{Status: DegradeOK}
		}
	}

	io.ClearSession()
	deps.MetricInc(deps.Metrics.SessionCleared)
	deps.MetricInc(deps.Metrics.LogoutSuccess)
	deps.EmitAudit(ctx, deps.Events.Logout, true, "", "", nil, nil)

	return result, nil
}
