package shopauth

import (
	"errors"
	"net/http"
	"strings"
	"time"
)

// Config defines a public type used by shopauth APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	Token    TokenConfig
	Cookie   CookieConfig
	Security SecurityConfig
	Redirect RedirectConfig
	Audit    AuditConfig
	Metrics  MetricsConfig
}

/*
====================================
TOKEN CONFIG
====================================
*/

// TokenConfig defines a public type used by shopauth APIs.
//
// TokenConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type TokenConfig struct {
	Lifetime      time.Duration
	SigningMethod string // "ed25519" (default), "hs256" optional
	PrivateKey    []byte
	PublicKey     []byte
	Issuer        string
	Leeway        time.Duration
	MaxFutureIAT  time.Duration
}

/*
====================================
COOKIE CONFIG
====================================
*/

// CookieConfig defines a public type used by shopauth APIs.
//
// CookieConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type CookieConfig struct {
	Name     string
	CSRFName string
	Path     string
	Domain   string
	Secure   bool
	SameSite http.SameSite
}

/*
====================================
SECURITY CONFIG
====================================
*/

// SecurityConfig defines a public type used by shopauth APIs.
//
// SecurityConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type SecurityConfig struct {
	ProductionMode        bool
	EnableIPThrottle      bool
	MaxLoginAttempts      int
	LoginCooldownDuration time.Duration
	RequireSecureCookies  bool
	CSRFProtection        bool
}

/*
====================================
REDIRECT CONFIG
====================================
*/

// RedirectConfig defines a public type used by shopauth APIs.
//
// RedirectConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type RedirectConfig struct {
	AllowedPrefixes []string
	Fallback        string
}

// AuditConfig defines a public type used by shopauth APIs.
//
// AuditConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig defines a public type used by shopauth APIs.
//
// MetricsConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

/*
====================================
DEFAULT CONFIG
====================================
*/

func defaultConfig() Config {
	return Config{
		Token: TokenConfig{
			Lifetime:      24 * time.Hour,
			SigningMethod: "ed25519",
			Issuer:        "shopauth",
			Leeway:        30 * time.Second,
			MaxFutureIAT:  2 * time.Minute,
		},
		Cookie: CookieConfig{
			Name:     "session",
			CSRFName: "csrf_token",
			Path:     "/",
			Secure:   true,
			SameSite: http.SameSiteLaxMode,
		},
		Security: SecurityConfig{
			ProductionMode:        false,
			EnableIPThrottle:      true,
			MaxLoginAttempts:      5,
			LoginCooldownDuration: 15 * time.Minute,
			RequireSecureCookies:  true,
			CSRFProtection:        true,
		},
		Redirect: RedirectConfig{
			AllowedPrefixes: []string{"/my-account", "/checkout", "/orders", "/shop"},
			Fallback:        "/my-account",
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 1024,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled:                 false,
			EnableLatencyHistograms: false,
		},
	}
}

func cloneConfig(cfg Config) Config {
	out := cfg
	out.Token.PrivateKey = cloneBytes(cfg.Token.PrivateKey)
	out.Token.PublicKey = cloneBytes(cfg.Token.PublicKey)
	out.Redirect.AllowedPrefixes = append([]string(nil), cfg.Redirect.AllowedPrefixes...)
	return out
}

func cloneBytes(b []byte) []byte {
	if len(b) == 0 {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

/*
====================================
VALIDATION
====================================
*/

// Validate describes the validate operation and its observable behavior.
//
// Validate may return an error when input validation, dependency calls, or security checks fail.
// Validate does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Config) Validate() error {
	// Token
	if c.Token.Lifetime <= 0 {
		return errors.New("Token Lifetime must be > 0")
	}
	if c.Token.SigningMethod != "ed25519" && c.Token.SigningMethod != "hs256" {
		return errors.New("unsupported token signing method")
	}
	if c.Token.SigningMethod == "ed25519" && len(c.Token.PrivateKey) == 0 {
		return errors.New("ed25519 requires PrivateKey")
	}
	if c.Token.SigningMethod == "ed25519" && len(c.Token.PublicKey) == 0 {
		return errors.New("ed25519 requires PublicKey")
	}
	if c.Token.SigningMethod == "hs256" && len(c.Token.PrivateKey) == 0 {
		return errors.New("hs256 requires PrivateKey")
	}
	if c.Token.Leeway < 0 {
		return errors.New("Token Leeway must be >= 0")
	}
	if c.Token.MaxFutureIAT < 0 {
		return errors.New("Token MaxFutureIAT must be >= 0")
	}

	// Cookie
	if c.Cookie.Name == c.Cookie.CSRFName && c.Cookie.Name != "" {
		return errors.New("Cookie Name and CSRFName must differ")
	}
	if strings.ContainsAny(c.Cookie.Name, " ;,") || strings.ContainsAny(c.Cookie.CSRFName, " ;,") {
		return errors.New("cookie names must not contain separators")
	}

	// Security
	if c.Security.EnableIPThrottle {
		if c.Security.MaxLoginAttempts <= 0 {
			return errors.New("MaxLoginAttempts must be > 0 when IP throttle is enabled")
		}
		if c.Security.LoginCooldownDuration <= 0 {
			return errors.New("LoginCooldownDuration must be > 0 when IP throttle is enabled")
		}
	}

	// Redirect
	if c.Redirect.Fallback == "" || !strings.HasPrefix(c.Redirect.Fallback, "/") || strings.HasPrefix(c.Redirect.Fallback, "//") {
		return errors.New("Redirect Fallback must be a relative path")
	}

	// Audit
	if c.Audit.Enabled {
		if c.Audit.BufferSize <= 0 {
			return errors.New("Audit BufferSize must be > 0 when audit is enabled")
		}
	}

	if c.Security.ProductionMode {
		if !c.Security.RequireSecureCookies {
			return errors.New("ProductionMode requires secure cookies")
		}
		if !c.Cookie.Secure {
			return errors.New("ProductionMode requires Cookie Secure")
		}
		if c.Cookie.SameSite == http.SameSiteNoneMode || c.Cookie.SameSite == http.SameSiteDefaultMode {
			return errors.New("ProductionMode requires SameSite Lax or Strict")
		}
		if !c.Security.CSRFProtection {
			return errors.New("ProductionMode requires CSRF protection")
		}
		if c.Token.SigningMethod == "hs256" && len(c.Token.PrivateKey) < 32 {
			return errors.New("ProductionMode requires hs256 key length >= 256 bits")
		}
		if c.Token.Lifetime > 30*24*time.Hour {
			return errors.New("ProductionMode requires Token Lifetime <= 30d")
		}
	}

	return nil
}
