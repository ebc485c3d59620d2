package shopauth

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"

	internalaudit "github.com/hexlane/shopauth/internal/audit"
	"github.com/hexlane/shopauth/internal/flows"
	"github.com/hexlane/shopauth/internal/rate"
	"github.com/hexlane/shopauth/redirect"
	"github.com/hexlane/shopauth/session"
	"github.com/hexlane/shopauth/token"
)

// Engine defines a public type used by shopauth APIs.
//
// Engine instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Engine struct {
	config  Config
	backend Backend
	tokens  *token.Manager
	cookies *session.Manager
	limiter *rate.Limiter
	audit   *internalaudit.Dispatcher
	metrics *Metrics
	flows   flows.Service
}

// Close describes the close operation and its observable behavior.
//
// Close does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	if e.audit != nil {
		e.audit.Close()
	}
}

// AuditDropped describes the auditdropped operation and its observable behavior.
//
// AuditDropped does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) AuditDropped() uint64 {
	if e == nil || e.audit == nil {
		return 0
	}
	return e.audit.Dropped()
}

// MetricsSnapshot describes the metricssnapshot operation and its observable behavior.
//
// MetricsSnapshot does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil || e.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return e.metrics.Snapshot()
}

// CookieName returns the configured session cookie name. The route guard
// uses it for its presence check.
func (e *Engine) CookieName() string {
	if e == nil || e.cookies == nil {
		return session.DefaultCookieName
	}
	return e.cookies.CookieName()
}

// CountGuardRedirect records a route-guard login redirect. Exposed for the
// middleware package, which observes redirects outside the engine's own
// operations.
func (e *Engine) CountGuardRedirect() {
	e.metricInc(MetricGuardRedirect)
}

func (e *Engine) metricInc(id MetricID) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Inc(id)
}

func (e *Engine) emitAudit(ctx context.Context, eventType string, success bool, userID, sessionID string, err error, meta func() map[string]string) {
	if e == nil || e.audit == nil || eventType == "" {
		return
	}

	event := internalaudit.Event{
		Timestamp: time.Now(),
		EventType: eventType,
		UserID:    userID,
		SessionID: sessionID,
		IP:        clientIPFromContext(ctx),
		Success:   success,
	}
	if err != nil {
		event.Error = err.Error()
	}
	if meta != nil {
		event.Metadata = meta()
	}

	e.audit.Emit(ctx, event)
}

/*
====================================
REQUEST BINDING
====================================
*/

// requestIO binds one HTTP exchange to the flow layer. Request and response
// are passed explicitly per call; the engine holds no per-request state.
type requestIO struct {
	w       http.ResponseWriter
	r       *http.Request
	cookies *session.Manager
}

func (io requestIO) ReadSession() (string, bool) {
	return io.cookies.ReadSession(io.r)
}

func (io requestIO) SetSession(token string) (string, error) {
	return io.cookies.SetSession(io.w, token)
}

func (io requestIO) ClearSession() {
	if io.w != nil {
		io.cookies.ClearSession(io.w)
	}
}

func (io requestIO) ValidateCSRF(submitted string) bool {
	return io.cookies.ValidateCSRF(io.r, submitted)
}

func (e *Engine) bindRequest(w http.ResponseWriter, r *http.Request) requestIO {
	return requestIO{w: w, r: r, cookies: e.cookies}
}

func (e *Engine) withRequestIP(ctx context.Context, r *http.Request) context.Context {
	if clientIPFromContext(ctx) == "" && r != nil {
		return ContextWithRequestIP(ctx, r)
	}
	return ctx
}

/*
====================================
FLOW WIRING
====================================
*/

func (e *Engine) bindFlows() {
	deps := flows.Deps{
		Login: flows.LoginDeps{
			ClientIPFromContext: clientIPFromContext,
			BackendLogin:        e.backend.Login,
			MergeCart:           e.backend.MergeCart,
			NewSessionID:        uuid.NewString,
			IssueToken:          e.issueToken,
			SanitizeRedirect:    e.sanitizeRedirect,
			MetricInc:           e.flowMetricInc,
			EmitAudit:           e.emitAudit,
			Warn:                log.Printf,
			Metrics: flows.LoginMetrics{
				LoginSuccess:     int(MetricLoginSuccess),
				LoginFailure:     int(MetricLoginFailure),
				LoginRateLimited: int(MetricLoginRateLimited),
				RateStoreError:   int(MetricRateStoreError),
				CartSyncDegraded: int(MetricCartSyncDegraded),
				SessionIssued:    int(MetricSessionIssued),
			},
			Events: flows.LoginEvents{
				LoginSuccess:     "login_success",
				LoginFailure:     "login_failure",
				LoginRateLimited: "login_rate_limited",
				RateStoreError:   "rate_store_error",
				CartSyncDegraded: "cart_sync_degraded",
			},
			Errors: flows.LoginErrors{
				EngineNotReady:     ErrEngineNotReady,
				InvalidUsername:    ErrInvalidUsername,
				InvalidPassword:    ErrInvalidPassword,
				InvalidCredentials: ErrInvalidCredentials,
				LoginFailed:        ErrLoginFailed,
				LoginError:         ErrLoginError,
				LoginRateLimited:   ErrLoginRateLimited,
				RateStoreFailed:    ErrRateStoreUnavailable,
			},
		},
		Logout: flows.LogoutDeps{
			BackendLogout: e.backend.Logout,
			MetricInc:     e.flowMetricInc,
			EmitAudit:     e.emitAudit,
			Metrics: flows.LogoutMetrics{
				LogoutSuccess:  int(MetricLogout),
				SessionCleared: int(MetricSessionCleared),
				CSRFRejected:   int(MetricCSRFRejected),
			},
			Events: flows.LogoutEvents{
				Logout:       "logout",
				CSRFRejected: "csrf_rejected",
			},
			Errors: flows.LogoutErrors{
				InvalidCSRF: ErrInvalidCSRF,
			},
		},
		Refresh: flows.RefreshDeps{
			ValidateToken: e.backend.ValidateToken,
			FetchUser:     e.backend.GetUserData,
			NewSessionID:  uuid.NewString,
			IssueToken:    e.issueToken,
			MetricInc:     e.flowMetricInc,
			EmitAudit:     e.emitAudit,
			Metrics: flows.RefreshMetrics{
				RefreshSuccess: int(MetricRefreshSuccess),
				RefreshFailure: int(MetricRefreshFailure),
				SessionIssued:  int(MetricSessionIssued),
				SessionCleared: int(MetricSessionCleared),
			},
			Events: flows.RefreshEvents{
				RefreshSuccess: "refresh_success",
				RefreshFailure: "refresh_failure",
			},
		},
		Validate: flows.ValidateDeps{
			ParseToken: e.parseToken,
			MetricInc:  e.flowMetricInc,
			Metrics: flows.ValidateMetrics{
				ValidateHit:  int(MetricValidateHit),
				ValidateMiss: int(MetricValidateMiss),
			},
		},
	}

	if e.limiter != nil {
		deps.Login.CheckLoginRate = e.checkLoginRate
		deps.Login.ResetLoginRate = e.limiter.ResetLogin
	}

	e.flows = flows.New(deps)
}

func (e *Engine) flowMetricInc(id int) {
	e.metricInc(MetricID(id))
}

// checkLoginRate translates limiter errors into engine sentinels so callers
// can tell an exhausted budget from an unreachable counter store.
func (e *Engine) checkLoginRate(ctx context.Context, ip string) error {
	err := e.limiter.CheckLogin(ctx, ip)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, rate.ErrRateLimited):
		return ErrLoginRateLimited
	default:
		return fmt.Errorf("%w: %v", ErrRateStoreUnavailable, err)
	}
}

func (e *Engine) issueToken(user User, sessionID string) (string, error) {
	return e.tokens.Issue(token.Identity{
		UserID:    user.ID,
		Email:     user.Email,
		SessionID: sessionID,
	})
}

func (e *Engine) parseToken(tokenStr string) (User, string, error) {
	claims, err := e.tokens.Parse(tokenStr)
	if err != nil {
		return User{}, "", err
	}
	return User{ID: claims.UID, Email: claims.Email}, claims.SID, nil
}

func (e *Engine) sanitizeRedirect(requested string) string {
	return redirect.Sanitize(requested, e.config.Redirect.AllowedPrefixes, e.config.Redirect.Fallback)
}

/*
====================================
OPERATIONS
====================================
*/

// Login describes the login operation and its observable behavior.
//
// Login may return an error when input validation, dependency calls, or security checks fail.
// Login does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) Login(ctx context.Context, w http.ResponseWriter, r *http.Request, req LoginRequest) (*LoginResult, error) {
	if e == nil || !e.flows.Initialized() {
		return nil, ErrEngineNotReady
	}

	ctx = e.withRequestIP(ctx, r)
	return e.flows.Login(ctx, req, e.bindRequest(w, r))
}

// Logout describes the logout operation and its observable behavior.
//
// Logout may return an error when input validation, dependency calls, or security checks fail.
// Logout does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) Logout(ctx context.Context, w http.ResponseWriter, r *http.Request, csrfSubmitted string) (*LogoutResult, error) {
	if e == nil || !e.flows.Initialized() {
		return nil, ErrEngineNotReady
	}

	if !e.config.Security.CSRFProtection {
		csrfSubmitted = ""
	}

	ctx = e.withRequestIP(ctx, r)
	return e.flows.Logout(ctx, csrfSubmitted, e.bindRequest(w, r))
}

// Refresh validates the current session against the backend and rotates the
// cookie pair. The returned error is one of [ErrNoToken], [ErrInvalidToken],
// [ErrUserNotFound], or [ErrRefreshFailed]; all but [ErrNoToken] leave the
// client logged out.
func (e *Engine) Refresh(ctx context.Context, w http.ResponseWriter, r *http.Request) (*RefreshResult, error) {
	if e == nil || !e.flows.Initialized() {
		return nil, ErrEngineNotReady
	}

	ctx = e.withRequestIP(ctx, r)
	result := e.flows.Refresh(ctx, e.bindRequest(w, r))

	switch result.Kind {
	case flows.RefreshNone:
		return &result, nil
	case flows.RefreshNoToken:
		return nil, ErrNoToken
	case flows.RefreshInvalidToken:
		return nil, ErrInvalidToken
	case flows.RefreshUserNotFound:
		return nil, ErrUserNotFound
	default:
		return nil, ErrRefreshFailed
	}
}

// ValidateSession describes the validatesession operation and its observable behavior.
//
// ValidateSession does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) ValidateSession(ctx context.Context, r *http.Request) SessionState {
	if e == nil || !e.flows.Initialized() {
		return SessionState{Status: StatusUnauthenticated}
	}

	start := time.Now()
	state := e.flows.Validate(ctx, e.bindRequest(nil, r))
	if e.metrics.LatencyEnabled() {
		e.metrics.Observe(MetricValidateLatency, time.Since(start))
	}

	return state
}
