package middleware

import (
	"net/http"
	"net/url"
	"strings"

	shopauth "github.com/hexlane/shopauth"
	"github.com/hexlane/shopauth/redirect"
	"github.com/hexlane/shopauth/session"
)

// GuardConfig controls the route guard. Zero values fall back to the
// storefront defaults below.
type GuardConfig struct {
	// CookieName is the session cookie whose presence marks a request as
	// possibly authenticated. Defaults to [session.DefaultCookieName].
	CookieName string

	// LoginPath receives redirected unauthenticated requests.
	// Defaults to "/login".
	LoginPath string

	// PublicExact lists paths that are always public regardless of the
	// protected prefixes, "/" included.
	PublicExact []string

	// PublicPrefixes lists path prefixes that are always public, such as
	// static assets.
	PublicPrefixes []string

	// ProtectedPrefixes lists path prefixes that require a session cookie.
	// Anything not matching is public.
	ProtectedPrefixes []string

	// OnRedirect, when set, is invoked once per login redirect. Wire it to
	// [shopauth.Engine.CountGuardRedirect] to feed the engine metrics.
	OnRedirect func()
}

func (c *GuardConfig) normalize() {
	if c.CookieName == "" {
		c.CookieName = session.DefaultCookieName
	}
	if c.LoginPath == "" {
		c.LoginPath = "/login"
	}
	if c.ProtectedPrefixes == nil {
		c.ProtectedPrefixes = []string{"/my-account", "/checkout", "/orders"}
	}
}

// Guard returns middleware that redirects unauthenticated requests on
// protected paths to the login page, with the original path carried in a
// sanitized "next" parameter. Only cookie PRESENCE is checked here; token
// verification happens later in request handling, so an expired cookie still
// reaches the page and fails there. The guard never blocks on errors: when in
// doubt, the request passes.
func Guard(cfg GuardConfig) func(http.Handler) http.Handler {
	cfg.normalize()

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			securityHeaders(w)

			if !cfg.protected(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			if _, err := r.Cookie(cfg.CookieName); err == nil {
				next.ServeHTTP(w, r)
				return
			}

			if cfg.OnRedirect != nil {
				cfg.OnRedirect()
			}
			target := cfg.LoginPath + "?next=" + url.QueryEscape(cfg.nextParam(r))
			http.Redirect(w, r, target, http.StatusFound)
		})
	}
}

func (c *GuardConfig) protected(path string) bool {
	for _, exact := range c.PublicExact {
		if path == exact {
			return false
		}
	}
	for _, prefix := range c.PublicPrefixes {
		if prefixMatch(path, prefix) {
			return false
		}
	}
	for _, prefix := range c.ProtectedPrefixes {
		if prefixMatch(path, prefix) {
			return true
		}
	}
	return false
}

// nextParam sanitizes the requested location before it is echoed into the
// login redirect, so the guard cannot be used as an open-redirect bounce.
func (c *GuardConfig) nextParam(r *http.Request) string {
	requested := r.URL.Path
	if r.URL.RawQuery != "" {
		requested += "?" + r.URL.RawQuery
	}
	return redirect.Sanitize(requested, c.ProtectedPrefixes, "/")
}

func prefixMatch(path, prefix string) bool {
	if prefix == "" || !strings.HasPrefix(path, prefix) {
		return false
	}
	if len(path) == len(prefix) {
		return true
	}
	// "/orders" covers "/orders/42" and "/orders?page=2" but not
	// "/ordersummary"; a prefix ending in "/" (including "/") covers
	// everything beneath it.
	if strings.HasSuffix(prefix, "/") {
		return true
	}
	return path[len(prefix)] == '/' || path[len(prefix)] == '?'
}

func securityHeaders(w http.ResponseWriter) {
	h := w.Header()
	h.Set("X-Frame-Options", "DENY")
	h.Set("X-Content-Type-Options", "nosniff")
	h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
}

// RequireSession returns middleware that fully validates the session cookie
// via [shopauth.Engine.ValidateSession] and rejects unauthenticated requests
// with 401. The resolved [shopauth.SessionState] is stored on the request
// context for handlers.
func RequireSession(engine *shopauth.Engine) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if engine == nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			state := engine.ValidateSession(r.Context(), r)
			if state.Status != shopauth.StatusAuthenticated {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			ctx := shopauth.WithSessionState(r.Context(), state)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
