package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"os"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	shopauth "github.com/hexlane/shopauth"
)

type sessionState struct {
	sessionCookie string
	csrfCookie    string
	mu            sync.Mutex
}

type loadBackend struct{}

func (loadBackend) Login(_ context.Context, username, password string) (shopauth.User, error) {
	if password != "load-test-password" {
		return shopauth.User{}, errors.New("invalid credentials")
	}
	return shopauth.User{ID: username, Email: username + "@load.example"}, nil
}

func (loadBackend) ValidateToken(_ context.Context, token string) (string, bool, error) {
	return "u1", true, nil
}

func (loadBackend) GetUserData(_ context.Context, userID string) (shopauth.User, error) {
	return shopauth.User{ID: userID, Email: userID + "@load.example"}, nil
}

func (loadBackend) Logout(_ context.Context) error { return nil }

func (loadBackend) MergeCart(_ context.Context, _ []shopauth.CartItem) error { return nil }

func main() {
	var (
		sessions    = flag.Int("sessions", 10000, "number of sessions to seed")
		concurrency = flag.Int("concurrency", 256, "number of concurrent workers")
		ops         = flag.Int("ops", 200000, "operations per phase (validate + refresh)")
		redisAddr   = flag.String("redis-addr", "", "redis address; if empty, REDIS_ADDR env or miniredis is used")
	)
	flag.Parse()

	if *sessions <= 0 || *concurrency <= 0 || *ops <= 0 {
		fmt.Fprintln(os.Stderr, "sessions, concurrency, and ops must be > 0")
		os.Exit(2)
	}

	ctx := context.Background()

	addr := *redisAddr
	if addr == "" {
		addr = os.Getenv("REDIS_ADDR")
	}

	var (
		cleanup func()
		client  redis.UniversalClient
	)
	if addr == "" {
		mr, err := miniredis.Run()
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to start miniredis: %v\n", err)
			os.Exit(1)
		}
		addr = mr.Addr()
		client = redis.NewUniversalClient(&redis.UniversalOptions{
			Addrs: []string{addr},
		})
		cleanup = func() {
			_ = client.Close()
			mr.Close()
		}
		fmt.Printf("using miniredis at %s\n", addr)
	} else {
		client = redis.NewUniversalClient(&redis.UniversalOptions{
			Addrs: []string{addr},
		})
		cleanup = func() { _ = client.Close() }
		fmt.Printf("using redis at %s\n", addr)
	}
	defer cleanup()

	engine, err := shopauth.New().
		WithConfig(loadConfig()).
		WithRedis(client).
		WithBackend(loadBackend{}).
		WithMetricsEnabled(true).
		Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "engine build failed: %v\n", err)
		os.Exit(1)
	}
	defer engine.Close()

	states := make([]sessionState, *sessions)
	fmt.Printf("seeding %d sessions...\n", *sessions)
	startSeed := time.Now()
	for i := 0; i < *sessions; i++ {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
		req.RemoteAddr = fmt.Sprintf("10.%d.%d.%d:5000", (i>>16)&0xFF, (i>>8)&0xFF, i&0xFF)
		_, err := engine.Login(ctx, rec, req, shopauth.LoginRequest{
			Username: fmt.Sprintf("shopper-%d", i),
			Password: "load-test-password",
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "seed login failed: %v\n", err)
			os.Exit(1)
		}
		for _, c := range rec.Result().Cookies() {
			switch c.Name {
			case "session":
				states[i].sessionCookie = c.Value
			case "csrf_token":
				states[i].csrfCookie = c.Value
			}
		}
	}
	fmt.Printf("seeded in %s\n", time.Since(startSeed).Round(time.Millisecond))

	validateStats := runValidatePhase(ctx, engine, states, *ops, *concurrency)
	refreshStats := runRefreshPhase(ctx, engine, states, *ops, *concurrency)

	fmt.Println("---- results ----")
	printStats("validate", validateStats)
	printStats("refresh", refreshStats)
}

func loadConfig() shopauth.Config {
	var cfg shopauth.Config
	cfg.Token.Lifetime = 24 * time.Hour
	cfg.Token.SigningMethod = "hs256"
	cfg.Token.PrivateKey = []byte("loadtest-loadtest-loadtest-load!")
	cfg.Token.Issuer = "shopauth-loadtest"
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

func runValidatePhase(ctx context.Context, engine *shopauth.Engine, states []sessionState, ops, concurrency int) phaseStats {
	var (
		wg        sync.WaitGroup
		cursor    int64
		failures  int64
		latencies = make([]time.Duration, 0, ops)
		mu        sync.Mutex
	)

	start := time.Now()
	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			r := rand.New(rand.NewSource(time.Now().UnixNano() + int64(worker)*7919))
			for {
				i := int(atomic.AddInt64(&cursor, 1)) - 1
				if i >= ops {
					return
				}
				idx := r.Intn(len(states))

				states[idx].mu.Lock()
				cookie := states[idx].sessionCookie
				states[idx].mu.Unlock()

				req := httptest.NewRequest(http.MethodGet, "/auth/session", nil)
				req.AddCookie(&http.Cookie{Name: "session", Value: cookie})

				t0 := time.Now()
				state := engine.ValidateSession(ctx, req)
				d := time.Since(t0)
				if state.Status != shopauth.StatusAuthenticated {
					atomic.AddInt64(&failures, 1)
				}
				mu.Lock()
				latencies = append(latencies, d)
				mu.Unlock()
			}
		}(w)
	}
	wg.Wait()
	total := time.Since(start)
	return computeStats(total, latencies, failures)
}

func runRefreshPhase(ctx context.Context, engine *shopauth.Engine, states []sessionState, ops, concurrency int) phaseStats {
	var (
		wg        sync.WaitGroup
		cursor    int64
		failures  int64
		latencies = make([]time.Duration, 0, ops)
		mu        sync.Mutex
	)

	start := time.Now()
	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			r := rand.New(rand.NewSource(time.Now().UnixNano() + int64(worker)*6151))
			for {
				i := int(atomic.AddInt64(&cursor, 1)) - 1
				if i >= ops {
					return
				}
				idx := r.Intn(len(states))
				state := &states[idx]

				state.mu.Lock()
				req := httptest.NewRequest(http.MethodPost, "/auth/refresh", nil)
				req.AddCookie(&http.Cookie{Name: "session", Value: state.sessionCookie})
				rec := httptest.NewRecorder()

				t0 := time.Now()
				_, err := engine.Refresh(ctx, rec, req)
				d := time.Since(t0)
				if err == nil {
					for _, c := range rec.Result().Cookies() {
						if c.Name == "session" && c.MaxAge >= 0 {
							state.sessionCookie = c.Value
						}
					}
				} else {
					atomic.AddInt64(&failures, 1)
				}
				state.mu.Unlock()

				mu.Lock()
				latencies = append(latencies, d)
				mu.Unlock()
			}
		}(w)
	}
	wg.Wait()
	total := time.Since(start)
	return computeStats(total, latencies, failures)
}

type phaseStats struct {
	total    time.Duration
	ops      int
	failures int64
	p50      time.Duration
	p95      time.Duration
	p99      time.Duration
	opsPerS  float64
}

func computeStats(total time.Duration, samples []time.Duration, failures int64) phaseStats {
	if len(samples) == 0 {
		return phaseStats{total: total}
	}
	sort.Slice(samples, func(i, j int) bool { return samples[i] < samples[j] })
	return phaseStats{
		total:    total,
		ops:      len(samples),
		failures: failures,
		p50:      percentile(samples, 50),
		p95:      percentile(samples, 95),
		p99:      percentile(samples, 99),
		opsPerS:  float64(len(samples)) / total.Seconds(),
	}
}

func percentile(samples []time.Duration, p int) time.Duration {
	if len(samples) == 0 {
		return 0
	}
	if p <= 0 {
		return samples[0]
	}
	if p >= 100 {
		return samples[len(samples)-1]
	}
	idx := (len(samples) - 1) * p / 100
	return samples[idx]
}

func printStats(name string, s phaseStats) {
	fmt.Printf("%s: ops=%d failures=%d total=%s ops/sec=%.0f p50=%s p95=%s p99=%s\n",
		name,
		s.ops,
		s.failures,
		s.total.Round(time.Millisecond),
		s.opsPerS,
		s.p50.Round(time.Microsecond),
		s.p95.Round(time.Microsecond),
		s.p99.Round(time.Microsecond),
	)
}
