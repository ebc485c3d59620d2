//go:build integration
// +build integration

package test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	shopauth "github.com/hexlane/shopauth"
)

func failedLogin(ctx context.Context, engine *shopauth.Engine) error {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
	req.RemoteAddr = "198.51.100.7:9000"
	_, err := engine.Login(ctx, rec, req, shopauth.LoginRequest{
		Username: "alice@example.com",
		Password: "wrong-password",
	})
	return err
}

func TestRateLimitConcurrentAttemptsNeverUndercount(t *testing.T) {
	ctx := context.Background()
	engine, _, cleanup := newIntegrationEngine(t)
	defer cleanup()

	const workers = 16
	start := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(workers)

	results := make(chan error, workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			<-start
			results <- failedLogin(ctx, engine)
		}()
	}

	close(start)
	wg.Wait()
	close(results)

	failed, limited := 0, 0
	for err := range results {
		switch {
		case errors.Is(err, shopauth.ErrLoginFailed):
			failed++
		case errors.Is(err, shopauth.ErrLoginRateLimited):
			limited++
		default:
			t.Fatalf("unexpected login error: %v", err)
		}
	}

	if failed+limited != workers {
		t.Fatalf("expected %d total outcomes, got %d", workers, failed+limited)
	}

	// Redis INCR is atomic, so the storm can never undercount: once it has
	// passed, a sequential attempt must be rejected.
	if err := failedLogin(ctx, engine); !errors.Is(err, shopauth.ErrLoginRateLimited) {
		t.Fatalf("expected ErrLoginRateLimited after storm, got %v", err)
	}
}

func TestRateLimitWindowExpiryRestoresLogin(t *testing.T) {
	ctx := context.Background()
	engine, mr, cleanup := newIntegrationEngine(t)
	defer cleanup()

	for i := 0; i < 5; i++ {
		if err := failedLogin(ctx, engine); !errors.Is(err, shopauth.ErrLoginFailed) {
			t.Fatalf("attempt %d: expected ErrLoginFailed, got %v", i, err)
		}
	}

	if err := failedLogin(ctx, engine); !errors.Is(err, shopauth.ErrLoginRateLimited) {
		t.Fatalf("expected ErrLoginRateLimited, got %v", err)
	}

	mr.FastForward(15*time.Minute + time.Second)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
	req.RemoteAddr = "198.51.100.7:9000"
	if _, err := engine.Login(ctx, rec, req, shopauth.LoginRequest{
		Username: "alice@example.com",
		Password: "correct-password",
	}); err != nil {
		t.Fatalf("expected login to succeed after window expiry, got %v", err)
	}
}
