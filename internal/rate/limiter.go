package rate

import (
	"context"
	"time"
)

// Config holds rate limiter tuning parameters. The reference storefront
// configuration is 5 login attempts per 15-minute window.
type Config struct {
	MaxLoginAttempts int
	LoginWindow      time.Duration
}

// Limiter enforces the per-IP login attempt budget over an injectable Store.
type Limiter struct {
	store  Store
	config Config
}

// New creates a login rate Limiter backed by the given store.
func New(store Store, cfg Config) *Limiter {
	return &Limiter{store: store, config: cfg}
}

func loginIPKey(ip string) string {
	return "lg:" + ip
}

// CheckLogin consumes one attempt for the client IP, rejecting with
// ErrRateLimited once the budget is exhausted. Rejections after the limit do
// not advance the counter, so a hammering client cannot push the window
// further out. An empty IP (no derivable client identity) is not limited.
func (l *Limiter) CheckLogin(ctx context.Context, ip string) error {
	if ip == "" {
		return nil
	}

	key := loginIPKey(ip)
	count, err := l.store.Get(ctx, key)
	if err != nil {
		return err
	}
	if count >= int64(l.config.MaxLoginAttempts) {
		return ErrRateLimited
	}

	count, err = l.store.Increment(ctx, key, l.config.LoginWindow)
	if err != nil {
		return err
	}
	if count > int64(l.config.MaxLoginAttempts) {
		return ErrRateLimited
	}
	return nil
}

// ResetLogin clears the attempt counter for the client IP. Called after a
// successful login.
func (l *Limiter) ResetLogin(ctx context.Context, ip string) error {
	if ip == "" {
		return nil
	}
	return l.store.Reset(ctx, loginIPKey(ip))
}

// LoginAttempts returns the current attempt counter for an IP. Missing keys
// return zero.
func (l *Limiter) LoginAttempts(ctx context.Context, ip string) (int, error) {
	count, err := l.store.Get(ctx, loginIPKey(ip))
	if err != nil {
		return 0, err
	}
	return int(count), nil
}
