//go:build integration
// +build integration

package test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	shopauth "github.com/hexlane/shopauth"
)

type integrationBackend struct{}

func (integrationBackend) Login(_ context.Context, username, password string) (shopauth.User, error) {
	if password != "correct-password" {
		return shopauth.User{}, shopauth.ErrInvalidCredentials
	}
	return shopauth.User{ID: "u1", Email: username}, nil
}

func (integrationBackend) ValidateToken(_ context.Context, token string) (string, bool, error) {
	return "u1", token != "", nil
}

func (integrationBackend) GetUserData(_ context.Context, userID string) (shopauth.User, error) {
	return shopauth.User{ID: userID, Email: "alice@example.com"}, nil
}

func (integrationBackend) Logout(_ context.Context) error { return nil }

func (integrationBackend) MergeCart(_ context.Context, _ []shopauth.CartItem) error { return nil }

func integrationConfig() shopauth.Config {
	var cfg shopauth.Config
	cfg.Token.Lifetime = time.Hour
	cfg.Token.SigningMethod = "hs256"
	cfg.Token.PrivateKey = []byte("integration-test-integration-te!")
	cfg.Token.Issuer = "shopauth-test"
	cfg.Cookie.Name = "session"
	cfg.Cookie.CSRFName = "csrf_token"
	cfg.Cookie.Path = "/"
	cfg.Cookie.SameSite = http.SameSiteLaxMode
	cfg.Security.EnableIPThrottle = true
	cfg.Security.MaxLoginAttempts = 5
	cfg.Security.LoginCooldownDuration = 15 * time.Minute
	cfg.Security.CSRFProtection = true
	cfg.Redirect.AllowedPrefixes = []string{"/my-account", "/checkout"}
	cfg.Redirect.Fallback = "/my-account"
	return cfg
}

func newIntegrationEngine(t *testing.T) (*shopauth.Engine, *miniredis.Miniredis, func()) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis run failed: %v", err)
	}

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	engine, err := shopauth.New().
		WithConfig(integrationConfig()).
		WithRedis(rdb).
		WithBackend(integrationBackend{}).
		WithMetricsEnabled(true).
		Build()
	if err != nil {
		mr.Close()
		t.Fatalf("engine build failed: %v", err)
	}

	return engine, mr, func() {
		engine.Close()
		_ = rdb.Close()
		mr.Close()
	}
}
