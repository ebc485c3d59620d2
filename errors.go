package shopauth

import "errors"

var (
	// ErrEngineNotReady is an exported constant or variable used by the session engine.
	ErrEngineNotReady = errors.New("engine not initialized")
	// ErrInvalidUsername is an exported constant or variable used by the session engine.
	ErrInvalidUsername = errors.New("invalid username")
	// ErrInvalidPassword is an exported constant or variable used by the session engine.
	ErrInvalidPassword = errors.New("invalid password")
	// ErrInvalidCredentials is an exported constant or variable used by the session engine.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrLoginFailed is an exported constant or variable used by the session engine.
	ErrLoginFailed = errors.New("login failed")
	// ErrLoginError is an exported constant or variable used by the session engine.
	ErrLoginError = errors.New("login backend error")
	// ErrLoginRateLimited is an exported constant or variable used by the session engine.
	ErrLoginRateLimited = errors.New("login rate limited")
	// ErrRateStoreUnavailable is an exported constant or variable used by the session engine.
	ErrRateStoreUnavailable = errors.New("rate limit store unavailable")
	// ErrInvalidCSRF is an exported constant or variable used by the session engine.
	ErrInvalidCSRF = errors.New("invalid csrf token")
	// ErrNoToken is an exported constant or variable used by the session engine.
	ErrNoToken = errors.New("no session token")
	// ErrInvalidToken is an exported constant or variable used by the session engine.
	ErrInvalidToken = errors.New("invalid session token")
	// ErrUserNotFound is an exported constant or variable used by the session engine.
	ErrUserNotFound = errors.New("user not found")
	// ErrRefreshFailed is an exported constant or variable used by the session engine.
	ErrRefreshFailed = errors.New("session refresh failed")
	// ErrUnauthorized is an exported constant or variable used by the session engine.
	ErrUnauthorized = errors.New("unauthorized")
)
