package flows

import "context"

// SessionState is the read-only answer to "who is this request".
type SessionState struct {
	Status SessionStatus
	User   User
}

// ValidateMetrics carries metric IDs needed by the validate flow.
type ValidateMetrics struct {
	ValidateHit  int
	ValidateMiss int
}

// ValidateDeps captures validate flow dependencies.
type ValidateDeps struct {
	ParseToken func(token string) (User, string, error)

	MetricInc func(int)

	Metrics ValidateMetrics
}

// RunValidate inspects the current session without mutating it. A missing or
// unparsable cookie yields an unauthenticated state; no cookie is ever
// cleared here so a transient parse problem cannot log a user out.
func RunValidate(_ context.Context, io SessionIO, deps ValidateDeps) SessionState {
	if deps.MetricInc == nil {
		deps.MetricInc = func(int) {}
	}

	token, ok := io.ReadSession()
	if !ok || token == "" {
		deps.MetricInc(deps.Metrics.ValidateMiss)
		return SessionState{Status: StatusUnauthenticated}
	}

	user, _, err := deps.ParseToken(token)
	if err != nil {
		deps.MetricInc(deps.Metrics.ValidateMiss)
		return SessionState{Status: StatusUnauthenticated}
	}

	deps.MetricInc(deps.Metrics.ValidateHit)
	return SessionState{Status: StatusAuthenticated, User: user}
}
