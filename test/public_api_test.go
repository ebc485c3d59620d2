package test

import (
	"context"
	"net/http"
	"testing"

	shopauth "github.com/hexlane/shopauth"
	"github.com/hexlane/shopauth/middleware"
)

// This test intentionally guards public API compile-compat for consumers.
func TestPublicAPISurfaceCompile(t *testing.T) {
	_ = shopauth.New

	var _ *shopauth.Engine
	var _ shopauth.Config
	var _ shopauth.LoginRequest
	var _ shopauth.LoginResult
	var _ shopauth.LogoutResult
	var _ shopauth.RefreshResult
	var _ shopauth.SessionState
	var _ shopauth.Backend
	var _ shopauth.AuditSink
	var _ shopauth.RateStore

	var _ error = shopauth.ErrInvalidCredentials
	var _ error = shopauth.ErrLoginFailed
	var _ error = shopauth.ErrLoginRateLimited
	var _ error = shopauth.ErrInvalidCSRF
	var _ error = shopauth.ErrNoToken
	var _ error = shopauth.ErrInvalidToken
	var _ error = shopauth.ErrUserNotFound
	var _ error = shopauth.ErrRefreshFailed

	var _ func(middleware.GuardConfig) func(http.Handler) http.Handler = middleware.Guard
	var _ func(*shopauth.Engine) func(http.Handler) http.Handler = middleware.RequireSession

	var _ func(*shopauth.Engine, context.Context, http.ResponseWriter, *http.Request, shopauth.LoginRequest) (*shopauth.LoginResult, error) = (*shopauth.Engine).Login
	var _ func(*shopauth.Engine, context.Context, http.ResponseWriter, *http.Request, string) (*shopauth.LogoutResult, error) = (*shopauth.Engine).Logout
	var _ func(*shopauth.Engine, context.Context, http.ResponseWriter, *http.Request) (*shopauth.RefreshResult, error) = (*shopauth.Engine).Refresh
	var _ func(*shopauth.Engine, context.Context, *http.Request) shopauth.SessionState = (*shopauth.Engine).ValidateSession
}
