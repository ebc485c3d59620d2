package internaldefs

import (
	shopauth "github.com/hexlane/shopauth"
)

// CounterDef defines a public type used by shopauth APIs.
//
// CounterDef instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type CounterDef struct {
	ID   shopauth.MetricID
	Name string
	Help string
}

// HistogramDef defines a public type used by shopauth APIs.
//
// HistogramDef instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type HistogramDef struct {
	ID   shopauth.MetricID
	Name string
	Help string
}

// CounterDefs is an exported constant or variable used by the session engine.
var CounterDefs = []CounterDef{
	{ID: shopauth.MetricLoginSuccess, Name: "shopauth_login_success_total", Help: "Successful login attempts."},
	{ID: shopauth.MetricLoginFailure, Name: "shopauth_login_failure_total", Help: "Failed login attempts."},
	{ID: shopauth.MetricLoginRateLimited, Name: "shopauth_login_rate_limited_total", Help: "Rate-limited login attempts."},
	{ID: shopauth.MetricLogout, Name: "shopauth_logout_total", Help: "Logout operations."},
	{ID: shopauth.MetricCSRFRejected, Name: "shopauth_csrf_rejected_total", Help: "Requests rejected by CSRF validation."},
	{ID: shopauth.MetricRefreshSuccess, Name: "shopauth_refresh_success_total", Help: "Successful session refreshes."},
	{ID: shopauth.MetricRefreshFailure, Name: "shopauth_refresh_failure_total", Help: "Failed session refreshes."},
	{ID: shopauth.MetricSessionIssued, Name: "shopauth_session_issued_total", Help: "Issued session cookie pairs."},
	{ID: shopauth.MetricSessionCleared, Name: "shopauth_session_cleared_total", Help: "Cleared session cookie pairs."},
	{ID: shopauth.MetricValidateHit, Name: "shopauth_validate_hit_total", Help: "Session validations resolving to authenticated."},
	{ID: shopauth.MetricValidateMiss, Name: "shopauth_validate_miss_total", Help: "Session validations resolving to unauthenticated."},
	{ID: shopauth.MetricCartSyncDegraded, Name: "shopauth_cart_sync_degraded_total", Help: "Guest-cart merges that degraded during login."},
	{ID: shopauth.MetricGuardRedirect, Name: "shopauth_guard_redirect_total", Help: "Route guard redirects to the login page."},
	{ID: shopauth.MetricRateStoreError, Name: "shopauth_rate_store_error_total", Help: "Logins rejected because the rate-limit store was unreachable."},
}

// HistogramDefs is an exported constant or variable used by the session engine.
var HistogramDefs = []HistogramDef{
	{ID: shopauth.MetricValidateLatency, Name: "shopauth_validate_latency_seconds", Help: "ValidateSession latency histogram."},
}

// HistogramBounds is an exported constant or variable used by the session engine.
var HistogramBounds = []string{
	"0.005",
	"0.01",
	"0.025",
	"0.05",
	"0.1",
	"0.25",
	"0.5",
	"+Inf",
}

// HistogramBoundSuffix is an exported constant or variable used by the session engine.
var HistogramBoundSuffix = []string{
	"0_005",
	"0_01",
	"0_025",
	"0_05",
	"0_1",
	"0_25",
	"0_5",
	"inf",
}

// NormalizeBuckets describes the normalizebuckets operation and its observable behavior.
//
// NormalizeBuckets does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets describes the cumulativebuckets operation and its observable behavior.
//
// CumulativeBuckets does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
