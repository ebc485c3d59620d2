package flows

import (
	"context"
	"errors"
	"strings"
	"testing"
)

var (
	errNotReady     = errors.New("engine not ready")
	errBadUsername  = errors.New("invalid username")
	errBadPassword  = errors.New("invalid password")
	errBadCreds     = errors.New("invalid credentials")
	errLoginFailed  = errors.New("login failed")
	errLoginError   = errors.New("login error")
	errRateLimited  = errors.New("rate limited")
	errRateStore    = errors.New("rate store down")
	errCSRFRejected = errors.New("invalid csrf")
)

type stubIO struct {
	token     string
	hasToken  bool
	csrf      string
	setErr    error
	setCalls  int
	cleared   int
	csrfValid bool
}

func (s *stubIO) ReadSession() (string, bool) { return s.token, s.hasToken }

func (s *stubIO) SetSession(token string) (string, error) {
	s.setCalls++
	if s.setErr != nil {
		return "", s.setErr
	}
	s.token = token
	s.hasToken = true
	s.csrf = "csrf-" + token
	return s.csrf, nil
}

func (s *stubIO) ClearSession() {
	s.cleared++
	s.token = ""
	s.hasToken = false
}

func (s *stubIO) ValidateCSRF(string) bool { return s.csrfValid }

func baseLoginDeps() LoginDeps {
	return LoginDeps{
		BackendLogin: func(_ context.Context, username, _ string) (User, error) {
			return User{ID: "u1", Email: username}, nil
		},
		NewSessionID:     func() string { return "sid-1" },
		IssueToken:       func(_ User, sid string) (string, error) { return "tok-" + sid, nil },
		SanitizeRedirect: func(requested string) string { return requested },
		Errors: LoginErrors{
			EngineNotReady:     errNotReady,
			InvalidUsername:    errBadUsername,
			InvalidPassword:    errBadPassword,
			InvalidCredentials: errBadCreds,
			LoginFailed:        errLoginFailed,
			LoginError:         errLoginError,
			LoginRateLimited:   errRateLimited,
			RateStoreFailed:    errRateStore,
		},
	}
}

func TestRunLoginSuccess(t *testing.T) {
	io := &stubIO{}
	res, err := RunLogin(context.Background(), LoginRequest{
		Username:   "customer@shop.test",
		Password:   "secret1",
		RedirectTo: "/my-account",
	}, io, baseLoginDeps())
	if err != nil {
		t.Fatalf("RunLogin: %v", err)
	}
	if res.User.ID != "u1" {
		t.Fatalf("user = %+v", res.User)
	}
	if res.Token != "tok-sid-1" || res.CSRFToken != "csrf-tok-sid-1" {
		t.Fatalf("token=%q csrf=%q", res.Token, res.CSRFToken)
	}
	if res.RedirectTo != "/my-account" {
		t.Fatalf("redirect = %q", res.RedirectTo)
	}
	if res.CartSync.Status != DegradeSkipped {
		t.Fatalf("cart sync = %+v", res.CartSync)
	}
	if io.setCalls != 1 {
		t.Fatalf("set calls = %d", io.setCalls)
	}
}

func TestRunLoginShapeValidationBeforeBackend(t *testing.T) {
	backendCalled := false
	deps := baseLoginDeps()
	deps.BackendLogin = func(context.Context, string, string) (User, error) {
		backendCalled = true
		return User{}, nil
	}

	cases := []struct {
		name     string
		username string
		password string
		want     error
	}{
		{"short username", "ab", "secret1", errBadUsername},
		{"long username", strings.Repeat("a", 256), "secret1", errBadUsername},
		{"short password", "customer", "abc12", errBadPassword},
		{"long password", "customer", strings.Repeat("p", 129), errBadPassword},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := RunLogin(context.Background(), LoginRequest{Username: tc.username, Password: tc.password}, &stubIO{}, deps)
			if !errors.Is(err, tc.want) {
				t.Fatalf("err = %v, want %v", err, tc.want)
			}
			if backendCalled {
				t.Fatal("backend called on malformed input")
			}
		})
	}
}

func TestRunLoginGenericFailureOnBadCredentials(t *testing.T) {
	deps := baseLoginDeps()
	deps.BackendLogin = func(context.Context, string, string) (User, error) {
		return User{}, errBadCreds
	}
	_, err := RunLogin(context.Background(), LoginRequest{Username: "customer", Password: "wrongpass"}, &stubIO{}, deps)
	if !errors.Is(err, errLoginFailed) {
		t.Fatalf("err = %v, want generic login failure", err)
	}
}

func TestRunLoginBackendErrorIsNotCredentialFailure(t *testing.T) {
	deps := baseLoginDeps()
	deps.BackendLogin = func(context.Context, string, string) (User, error) {
		return User{}, errors.New("upstream 503")
	}
	_, err := RunLogin(context.Background(), LoginRequest{Username: "customer", Password: "secret1"}, &stubIO{}, deps)
	if !errors.Is(err, errLoginError) {
		t.Fatalf("err = %v, want login error", err)
	}
}

func TestRunLoginRateLimited(t *testing.T) {
	backendCalled := false
	deps := baseLoginDeps()
	deps.CheckLoginRate = func(context.Context, string) error { return errRateLimited }
	deps.BackendLogin = func(context.Context, string, string) (User, error) {
		backendCalled = true
		return User{}, nil
	}
	_, err := RunLogin(context.Background(), LoginRequest{Username: "customer", Password: "secret1"}, &stubIO{}, deps)
	if !errors.Is(err, errRateLimited) {
		t.Fatalf("err = %v", err)
	}
	if backendCalled {
		t.Fatal("backend called while rate limited")
	}
}

func TestRunLoginStoreOutageIsNotARateRejection(t *testing.T) {
	backendCalled := false
	var metricIDs []int
	deps := baseLoginDeps()
	deps.Metrics = LoginMetrics{LoginRateLimited: 1, RateStoreError: 2}
	deps.MetricInc = func(id int) { metricIDs = append(metricIDs, id) }
	deps.CheckLoginRate = func(context.Context, string) error { return errRateStore }
	deps.BackendLogin = func(context.Context, string, string) (User, error) {
		backendCalled = true
		return User{}, nil
	}
	_, err := RunLogin(context.Background(), LoginRequest{Username: "customer", Password: "secret1"}, &stubIO{}, deps)
	if !errors.Is(err, errRateStore) {
		t.Fatalf("err = %v", err)
	}
	if errors.Is(err, errRateLimited) {
		t.Fatal("store outage reported as a rate rejection")
	}
	if backendCalled {
		t.Fatal("backend called during store outage")
	}
	if len(metricIDs) != 1 || metricIDs[0] != 2 {
		t.Fatalf("metric increments = %v, want the store-error counter only", metricIDs)
	}
}

func TestRunLoginResetsRateCounterOnSuccess(t *testing.T) {
	resetIPs := []string{}
	deps := baseLoginDeps()
	deps.ClientIPFromContext = func(context.Context) string { return "10.0.0.9" }
	deps.CheckLoginRate = func(context.Context, string) error { return nil }
	deps.ResetLoginRate = func(_ context.Context, ip string) error {
		resetIPs = append(resetIPs, ip)
		return nil
	}
	if _, err := RunLogin(context.Background(), LoginRequest{Username: "customer", Password: "secret1"}, &stubIO{}, deps); err != nil {
		t.Fatalf("RunLogin: %v", err)
	}
	if len(resetIPs) != 1 || resetIPs[0] != "10.0.0.9" {
		t.Fatalf("reset calls = %v", resetIPs)
	}
}

func TestRunLoginCartMergeDegradesWithoutFailing(t *testing.T) {
	deps := baseLoginDeps()
	deps.MergeCart = func(context.Context, []CartItem) error { return errors.New("cart service down") }
	res, err := RunLogin(context.Background(), LoginRequest{
		Username:  "customer",
		Password:  "secret1",
		CartItems: []CartItem{{ID: "widget", Quantity: 2}},
	}, &stubIO{}, deps)
	if err != nil {
		t.Fatalf("RunLogin: %v", err)
	}
	if res.CartSync.Status != DegradeDegraded || res.CartSync.Reason == "" {
		t.Fatalf("cart sync = %+v", res.CartSync)
	}
}

func TestRunLoginCartMergeOK(t *testing.T) {
	merged := []CartItem{}
	deps := baseLoginDeps()
	deps.MergeCart = func(_ context.Context, items []CartItem) error {
		merged = append(merged, items...)
		return nil
	}
	res, err := RunLogin(context.Background(), LoginRequest{
		Username:  "customer",
		Password:  "secret1",
		CartItems: []CartItem{{ID: "widget", Quantity: 1}},
	}, &stubIO{}, deps)
	if err != nil {
		t.Fatalf("RunLogin: %v", err)
	}
	if res.CartSync.Status != DegradeOK || len(merged) != 1 {
		t.Fatalf("cart sync = %+v merged = %v", res.CartSync, merged)
	}
}

func TestRunLoginNotReadyWithoutBackend(t *testing.T) {
	deps := baseLoginDeps()
	deps.BackendLogin = nil
	_, err := RunLogin(context.Background(), LoginRequest{Username: "customer", Password: "secret1"}, &stubIO{}, deps)
	if !errors.Is(err, errNotReady) {
		t.Fatalf("err = %v", err)
	}
}

func TestRunLogoutClearsSessionDespiteBackendError(t *testing.T) {
	io := &stubIO{token: "tok", hasToken: true}
	res, err := RunLogout(context.Background(), "", io, LogoutDeps{
		BackendLogout: func(context.Context) error { return errors.New("backend down") },
		Errors:        LogoutErrors{InvalidCSRF: errCSRFRejected},
	})
	if err != nil {
		t.Fatalf("RunLogout: %v", err)
	}
	if io.cleared != 1 {
		t.Fatalf("cleared = %d", io.cleared)
	}
	if res.BackendSync.Status != DegradeDegraded {
		t.Fatalf("backend sync = %+v", res.BackendSync)
	}
}

func TestRunLogoutRejectsBadCSRF(t *testing.T) {
	io := &stubIO{token: "tok", hasToken: true, csrfValid: false}
	_, err := RunLogout(context.Background(), "forged", io, LogoutDeps{
		Errors: LogoutErrors{InvalidCSRF: errCSRFRejected},
	})
	if !errors.Is(err, errCSRFRejected) {
		t.Fatalf("err = %v", err)
	}
	if io.cleared != 0 {
		t.Fatal("session cleared despite CSRF rejection")
	}
}

func TestRunLogoutSkipsCSRFCheckWhenNotSubmitted(t *testing.T) {
	io := &stubIO{token: "tok", hasToken: true, csrfValid: false}
	res, err := RunLogout(context.Background(), "", io, LogoutDeps{
		Errors: LogoutErrors{InvalidCSRF: errCSRFRejected},
	})
	if err != nil {
		t.Fatalf("RunLogout: %v", err)
	}
	if io.cleared != 1 {
		t.Fatalf("cleared = %d", io.cleared)
	}
	if res.BackendSync.Status != DegradeSkipped {
		t.Fatalf("backend sync = %+v", res.BackendSync)
	}
}

func baseRefreshDeps() RefreshDeps {
	return RefreshDeps{
		ValidateToken: func(_ context.Context, token string) (string, bool, error) {
			if token == "tok-good" {
				return "u1", true, nil
			}
			return "", false, nil
		},
		FetchUser: func(_ context.Context, userID string) (User, error) {
			return User{ID: userID, Email: "customer@shop.test"}, nil
		},
		NewSessionID: func() string { return "sid-2" },
		IssueToken:   func(_ User, sid string) (string, error) { return "tok-" + sid, nil },
	}
}

func TestRunRefreshRotatesSession(t *testing.T) {
	io := &stubIO{token: "tok-good", hasToken: true}
	res := RunRefresh(context.Background(), io, baseRefreshDeps())
	if res.Kind != RefreshNone {
		t.Fatalf("kind = %v err = %v", res.Kind, res.Err)
	}
	if res.Token != "tok-sid-2" || res.CSRFToken != "csrf-tok-sid-2" {
		t.Fatalf("token=%q csrf=%q", res.Token, res.CSRFToken)
	}
	if io.token != "tok-sid-2" {
		t.Fatalf("session cookie not rotated: %q", io.token)
	}
}

func TestRunRefreshNoToken(t *testing.T) {
	io := &stubIO{}
	res := RunRefresh(context.Background(), io, baseRefreshDeps())
	if res.Kind != RefreshNoToken {
		t.Fatalf("kind = %v", res.Kind)
	}
	if io.cleared != 0 {
		t.Fatal("cleared session on missing cookie")
	}
}

func TestRunRefreshClearsOnInvalidToken(t *testing.T) {
	io := &stubIO{token: "tok-stale", hasToken: true}
	res := RunRefresh(context.Background(), io, baseRefreshDeps())
	if res.Kind != RefreshInvalidToken {
		t.Fatalf("kind = %v", res.Kind)
	}
	if io.cleared != 1 {
		t.Fatal("session not cleared on invalid token")
	}
}

func TestRunRefreshClearsOnUserNotFound(t *testing.T) {
	deps := baseRefreshDeps()
	deps.FetchUser = func(context.Context, string) (User, error) { return User{}, nil }
	io := &stubIO{token: "tok-good", hasToken: true}
	res := RunRefresh(context.Background(), io, deps)
	if res.Kind != RefreshUserNotFound {
		t.Fatalf("kind = %v", res.Kind)
	}
	if io.cleared != 1 {
		t.Fatal("session not cleared on unknown user")
	}
}

func TestRunRefreshClearsOnValidateError(t *testing.T) {
	deps := baseRefreshDeps()
	deps.ValidateToken = func(context.Context, string) (string, bool, error) {
		return "", false, errors.New("backend unreachable")
	}
	io := &stubIO{token: "tok-good", hasToken: true}
	res := RunRefresh(context.Background(), io, deps)
	if res.Kind != RefreshInternal {
		t.Fatalf("kind = %v", res.Kind)
	}
	if io.cleared != 1 {
		t.Fatal("session not cleared on validation error")
	}
}

func TestRunValidateAuthenticated(t *testing.T) {
	io := &stubIO{token: "tok-good", hasToken: true}
	state := RunValidate(context.Background(), io, ValidateDeps{
		ParseToken: func(token string) (User, string, error) {
			if token != "tok-good" {
				return User{}, "", errors.New("bad token")
			}
			return User{ID: "u1"}, "sid-1", nil
		},
	})
	if state.Status != StatusAuthenticated || state.User.ID != "u1" {
		t.Fatalf("state = %+v", state)
	}
}

func TestRunValidateNeverClearsCookies(t *testing.T) {
	io := &stubIO{token: "tok-bad", hasToken: true}
	state := RunValidate(context.Background(), io, ValidateDeps{
		ParseToken: func(string) (User, string, error) {
			return User{}, "", errors.New("parse failed")
		},
	})
	if state.Status != StatusUnauthenticated {
		t.Fatalf("state = %+v", state)
	}
	if io.cleared != 0 {
		t.Fatal("validate cleared session cookies")
	}
}

func TestRunValidateMissingCookie(t *testing.T) {
	state := RunValidate(context.Background(), &stubIO{}, ValidateDeps{
		ParseToken: func(string) (User, string, error) {
			t.Fatal("ParseToken called without a cookie")
			return User{}, "", nil
		},
	})
	if state.Status != StatusUnauthenticated {
		t.Fatalf("state = %+v", state)
	}
}
