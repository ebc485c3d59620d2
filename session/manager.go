package session

import (
	"net/http"
	"time"
)

const (
	// DefaultCookieName is the session cookie name expected by the route guard.
	DefaultCookieName = "session"
	// DefaultCSRFCookieName is the paired anti-forgery cookie name.
	DefaultCSRFCookieName = "csrf_token"
)

// CookieOptions defines how the session/CSRF cookie pair is issued.
type CookieOptions struct {
	Name     string
	CSRFName string
	Path     string
	Domain   string
	Secure   bool
	SameSite http.SameSite
	MaxAge   time.Duration
}

// normalize applies hardened defaults without breaking callers.
func (o CookieOptions) normalize() CookieOptions {
	if o.Name == "" {
		o.Name = DefaultCookieName
	}
	if o.CSRFName == "" {
		o.CSRFName = DefaultCSRFCookieName
	}
	if o.Path == "" {
		o.Path = "/"
	}
	if o.SameSite < http.SameSiteLaxMode {
		o.SameSite = http.SameSiteLaxMode
	}
	return o
}

// Manager issues, reads, and clears the session cookie pair. Safe for
// concurrent use; each method operates only on the request/response it is
// handed.
type Manager struct {
	opts CookieOptions
}

// NewManager returns a cookie Manager with normalized options.
func NewManager(opts CookieOptions) *Manager {
	return &Manager{opts: opts.normalize()}
}

// CookieName returns the session cookie name the manager writes.
func (m *Manager) CookieName() string {
	return m.opts.Name
}

// SetSession persists the session token and a freshly generated CSRF token as
// two scoped cookies on w, unconditionally overwriting any prior pair. It
// returns the CSRF token so callers can echo it to the client for inclusion in
// state-changing requests.
func (m *Manager) SetSession(w http.ResponseWriter, token string) (string, error) {
	csrf, err := NewCSRFToken()
	if err != nil {
		return "", err
	}

	maxAge := int(m.opts.MaxAge / time.Second)
	http.SetCookie(w, &http.Cookie{
		Name:     m.opts.Name,
		Value:    token,
		Path:     m.opts.Path,
		Domain:   m.opts.Domain,
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   m.opts.Secure,
		SameSite: m.opts.SameSite,
	})
	// The CSRF cookie is intentionally readable by client code: the
	// double-submit pattern needs the client to echo it back in the body.
	http.SetCookie(w, &http.Cookie{
		Name:     m.opts.CSRFName,
		Value:    csrf,
		Path:     m.opts.Path,
		Domain:   m.opts.Domain,
		MaxAge:   maxAge,
		HttpOnly: false,
		Secure:   m.opts.Secure,
		SameSite: m.opts.SameSite,
	})

	return csrf, nil
}

// ReadSession returns the current session token, or false when no session
// cookie is present. Missing and malformed cookies are both "no session";
// reads never error.
func (m *Manager) ReadSession(r *http.Request) (string, bool) {
	c, err := r.Cookie(m.opts.Name)
	if err != nil || c.Value == "" {
		return "", false
	}
	return c.Value, true
}

// ReadCSRF returns the persisted CSRF value, or false when absent.
func (m *Manager) ReadCSRF(r *http.Request) (string, bool) {
	c, err := r.Cookie(m.opts.CSRFName)
	if err != nil || c.Value == "" {
		return "", false
	}
	return c.Value, true
}

// ClearSession expires both the session cookie and the CSRF cookie. Idempotent:
// safe to call when no session exists.
func (m *Manager) ClearSession(w http.ResponseWriter) {
	for _, name := range []string{m.opts.Name, m.opts.CSRFName} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     m.opts.Path,
			Domain:   m.opts.Domain,
			MaxAge:   -1,
			HttpOnly: name == m.opts.Name,
			Secure:   m.opts.Secure,
			SameSite: m.opts.SameSite,
		})
	}
}
