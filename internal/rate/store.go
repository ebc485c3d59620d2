package rate

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrRateLimited is returned when an attempt budget is exhausted.
	ErrRateLimited = errors.New("rate limited")
	// ErrStoreUnavailable is returned when the counter backend cannot be reached.
	ErrStoreUnavailable = errors.New("rate store unavailable")
)

// Store is the injectable attempt-counter backend. Production deployments use
// the Redis-backed store so limits hold across instances; single-instance and
// test setups may use the in-memory store.
type Store interface {
	// Increment advances the counter for key and returns the new count. The
	// first hit in a window starts it: implementations attach the window TTL
	// only then, so the window end is fixed from the first attempt.
	Increment(ctx context.Context, key string, window time.Duration) (int64, error)
	// Get returns the current count for key; missing keys are zero.
	Get(ctx context.Context, key string) (int64, error)
	// Reset removes the given keys.
	Reset(ctx context.Context, keys ...string) error
}
