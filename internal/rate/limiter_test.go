package rate

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newRedisStoreTest(t *testing.T) (*RedisStore, *miniredis.Miniredis, func()) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis start: %v", err)
	}
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewRedisStore(rdb), mr, func() {
		rdb.Close()
		mr.Close()
	}
}

func testConfig() Config {
	return Config{MaxLoginAttempts: 5, LoginWindow: 15 * time.Minute}
}

func TestLimiterSixthAttemptRejected(t *testing.T) {
	store, _, done := newRedisStoreTest(t)
	defer done()
	limiter := New(store, testConfig())
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if err := limiter.CheckLogin(ctx, "10.0.0.1"); err != nil {
			t.Fatalf("attempt %d: %v", i+1, err)
		}
	}
	if err := limiter.CheckLogin(ctx, "10.0.0.1"); !errors.Is(err, ErrRateLimited) {
		t.Fatalf("sixth attempt: got %v, want ErrRateLimited", err)
	}
}

func TestLimiterRejectionIsIdempotent(t *testing.T) {
	store, _, done := newRedisStoreTest(t)
	defer done()
	limiter := New(store, testConfig())
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if err := limiter.CheckLogin(ctx, "10.0.0.1"); err != nil {
			t.Fatalf("attempt %d: %v", i+1, err)
		}
	}
	for i := 0; i < 3; i++ {
		if err := limiter.CheckLogin(ctx, "10.0.0.1"); !errors.Is(err, ErrRateLimited) {
			t.Fatalf("over-limit attempt: got %v", err)
		}
	}

	attempts, err := limiter.LoginAttempts(ctx, "10.0.0.1")
	if err != nil {
		t.Fatalf("login attempts: %v", err)
	}
	if attempts != 5 {
		t.Fatalf("rejections advanced the counter: got %d, want 5", attempts)
	}
}

func TestLimiterWindowExpiryResets(t *testing.T) {
	store, mr, done := newRedisStoreTest(t)
	defer done()
	limiter := New(store, testConfig())
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if err := limiter.CheckLogin(ctx, "10.0.0.1"); err != nil {
			t.Fatalf("attempt %d: %v", i+1, err)
		}
	}
	if err := limiter.CheckLogin(ctx, "10.0.0.1"); !errors.Is(err, ErrRateLimited) {
		t.Fatalf("expected rejection before window expiry, got %v", err)
	}

	mr.FastForward(15 * time.Minute)

	if err := limiter.CheckLogin(ctx, "10.0.0.1"); err != nil {
		t.Fatalf("attempt after window expiry: %v", err)
	}
}

func TestLimiterKeysAreIndependent(t *testing.T) {
	store, _, done := newRedisStoreTest(t)
	defer done()
	limiter := New(store, testConfig())
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if err := limiter.CheckLogin(ctx, "10.0.0.1"); err != nil {
			t.Fatalf("attempt %d: %v", i+1, err)
		}
	}
	if err := limiter.CheckLogin(ctx, "10.0.0.2"); err != nil {
		t.Fatalf("different client blocked: %v", err)
	}
}

func TestLimiterResetLogin(t *testing.T) {
	store, _, done := newRedisStoreTest(t)
	defer done()
	limiter := New(store, testConfig())
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if err := limiter.CheckLogin(ctx, "10.0.0.1"); err != nil {
			t.Fatalf("attempt %d: %v", i+1, err)
		}
	}
	if err := limiter.ResetLogin(ctx, "10.0.0.1"); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if err := limiter.CheckLogin(ctx, "10.0.0.1"); err != nil {
		t.Fatalf("attempt after reset: %v", err)
	}
}

func TestLimiterEmptyIPNotLimited(t *testing.T) {
	store, _, done := newRedisStoreTest(t)
	defer done()
	limiter := New(store, testConfig())
	ctx := context.Background()

	for i := 0; i < 20; i++ {
		if err := limiter.CheckLogin(ctx, ""); err != nil {
			t.Fatalf("empty ip must not be limited: %v", err)
		}
	}
}

func TestMemoryStoreWindowSemantics(t *testing.T) {
	store := NewMemoryStore()
	base := time.Now()
	now := base
	store.now = func() time.Time { return now }
	ctx := context.Background()

	for i := int64(1); i <= 3; i++ {
		n, err := store.Increment(ctx, "lg:a", time.Minute)
		if err != nil {
			t.Fatalf("increment: %v", err)
		}
		if n != i {
			t.Fatalf("count = %d, want %d", n, i)
		}
	}

	now = base.Add(time.Minute)
	n, err := store.Increment(ctx, "lg:a", time.Minute)
	if err != nil {
		t.Fatalf("increment after window: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected fresh window count 1, got %d", n)
	}
}

func TestMemoryStoreConcurrentSameKey(t *testing.T) {
	store := NewMemoryStore()
	limiter := New(store, Config{MaxLoginAttempts: 50, LoginWindow: time.Minute})
	ctx := context.Background()

	var wg sync.WaitGroup
	var mu sync.Mutex
	allowed, rejected := 0, 0

	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := limiter.CheckLogin(ctx, "10.0.0.9")
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				allowed++
			} else if errors.Is(err, ErrRateLimited) {
				rejected++
			} else {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if allowed > 50 {
		t.Fatalf("allowed %d attempts past the budget of 50", allowed)
	}
	if allowed+rejected != 100 {
		t.Fatalf("lost attempts: allowed=%d rejected=%d", allowed, rejected)
	}
}
