package test

import (
	"context"
	"net/http"

	"github.com/redis/go-redis/v9"

	shopauth "github.com/hexlane/shopauth"
)

// ExampleNew demonstrates engine construction with production-style dependencies.
func ExampleNew() {
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:6379"})
	backend := &exampleBackend{}

	engine, _ := shopauth.New().
		WithRedis(rdb).
		WithBackend(backend).
		Build()
	_ = engine
}

// ExampleEngine_Login shows a typical login entrypoint call and structured error handling.
func ExampleEngine_Login() {
	var (
		engine *shopauth.Engine
		w      http.ResponseWriter
		r      *http.Request
	)
	_, err := engine.Login(context.Background(), w, r, shopauth.LoginRequest{
		Username: "alice@example.com",
		Password: "password",
	})
	if err != nil {
		_ = err
	}
}

// ExampleEngine_MetricsSnapshot shows how to read in-process metrics counters.
func ExampleEngine_MetricsSnapshot() {
	var engine *shopauth.Engine
	snapshot := engine.MetricsSnapshot()
	_ = snapshot
}

type exampleBackend struct{}

func (e *exampleBackend) Login(ctx context.Context, username, password string) (shopauth.User, error) {
	return shopauth.User{}, nil
}

func (e *exampleBackend) ValidateToken(ctx context.Context, token string) (string, bool, error) {
	return "", false, nil
}

func (e *exampleBackend) GetUserData(ctx context.Context, userID string) (shopauth.User, error) {
	return shopauth.User{}, nil
}

func (e *exampleBackend) Logout(ctx context.Context) error { return nil }

func (e *exampleBackend) MergeCart(ctx context.Context, items []shopauth.CartItem) error {
	return nil
}
