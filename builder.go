package shopauth

import (
	"errors"

	"github.com/redis/go-redis/v9"

	internalaudit "github.com/hexlane/shopauth/internal/audit"
	"github.com/hexlane/shopauth/internal/rate"
	"github.com/hexlane/shopauth/session"
	"github.com/hexlane/shopauth/token"
)

// RateStore is the injectable attempt-counter storage used by the login rate
// limiter. [Builder.WithRedis] installs the Redis-backed implementation;
// [NewMemoryRateStore] provides an in-process one for tests and single-node
// deployments.
type RateStore = rate.Store

// NewMemoryRateStore returns an in-process [RateStore].
func NewMemoryRateStore() RateStore {
	return rate.NewMemoryStore()
}

// Builder defines a public type used by shopauth APIs.
//
// Builder instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Builder struct {
	config Config
	redis  redis.UniversalClient

	rateStore RateStore
	backend   Backend
	auditSink AuditSink

	built bool
}

// New describes the new operation and its observable behavior.
//
// New does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func New() *Builder {
	return &Builder{
		config: defaultConfig(),
	}
}

// WithConfig describes the withconfig operation and its observable behavior.
//
// WithConfig does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithRedis describes the withredis operation and its observable behavior.
//
// WithRedis does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

// WithRateStore installs an explicit attempt-counter store, overriding the
// Redis-backed one derived from [Builder.WithRedis].
func (b *Builder) WithRateStore(store RateStore) *Builder {
	b.rateStore = store
	return b
}

// WithBackend describes the withbackend operation and its observable behavior.
//
// WithBackend does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithBackend(backend Backend) *Builder {
	b.backend = backend
	return b
}

// WithAuditSink describes the withauditsink operation and its observable behavior.
//
// WithAuditSink does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithMetricsEnabled describes the withmetricsenabled operation and its observable behavior.
//
// WithMetricsEnabled does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// WithLatencyHistograms describes the withlatencyhistograms operation and its observable behavior.
//
// WithLatencyHistograms does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// Build describes the build operation and its observable behavior.
//
// Build may return an error when input validation, dependency calls, or security checks fail.
// Build does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if b.backend == nil {
		return nil, errors.New("backend required")
	}

	rateStore := b.rateStore
	if rateStore == nil {
		if cfg.Security.EnableIPThrottle && b.redis == nil {
			return nil, errors.New("IP throttle requires redis client or explicit rate store")
		}
		if b.redis != nil {
			rateStore = rate.NewRedisStore(b.redis)
		}
	}

	tm, err := token.NewManager(token.Config{
		Lifetime:      cfg.Token.Lifetime,
		SigningMethod: token.SigningMethod(cfg.Token.SigningMethod),
		PrivateKey:    cloneBytes(cfg.Token.PrivateKey),
		PublicKey:     cloneBytes(cfg.Token.PublicKey),
		Issuer:        cfg.Token.Issuer,
		Leeway:        cfg.Token.Leeway,
		MaxFutureIAT:  cfg.Token.MaxFutureIAT,
	})
	if err != nil {
		return nil, err
	}

	cookies := session.NewManager(session.CookieOptions{
		Name:     cfg.Cookie.Name,
		CSRFName: cfg.Cookie.CSRFName,
		Path:     cfg.Cookie.Path,
		Domain:   cfg.Cookie.Domain,
		Secure:   cfg.Cookie.Secure || cfg.Security.RequireSecureCookies,
		SameSite: cfg.Cookie.SameSite,
		MaxAge:   cfg.Token.Lifetime,
	})

	engine := &Engine{
		config:  cfg,
		backend: b.backend,
		tokens:  tm,
		cookies: cookies,
	}

	if cfg.Security.EnableIPThrottle && rateStore != nil {
		engine.limiter = rate.New(rateStore, rate.Config{
			MaxLoginAttempts: cfg.Security.MaxLoginAttempts,
			LoginWindow:      cfg.Security.LoginCooldownDuration,
		})
	}

	engine.audit = internalaudit.NewDispatcher(internalaudit.Config{
		Enabled:    cfg.Audit.Enabled,
		BufferSize: cfg.Audit.BufferSize,
		DropIfFull: cfg.Audit.DropIfFull,
	}, b.auditSink)
	engine.metrics = NewMetrics(cfg.Metrics)

	engine.bindFlows()

	b.built = true

	return engine, nil
}
