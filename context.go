package shopauth

import (
	"context"
	"net"
	"net/http"
	"strings"
)

type clientIPContextKey struct{}
type sessionStateContextKey struct{}

// WithClientIP attaches the caller’s IP address to ctx. The Engine uses it
// for per-IP login rate limiting and audit logging.
func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, clientIPContextKey{}, ip)
}

// ContextWithRequestIP derives the client IP from r and attaches it to the
// request context. X-Forwarded-For wins over RemoteAddr because the expected
// deployment sits behind a reverse proxy that sets it.
func ContextWithRequestIP(ctx context.Context, r *http.Request) context.Context {
	return WithClientIP(ctx, ClientIPFromRequest(r))
}

// ClientIPFromRequest extracts the originating client IP from a request.
func ClientIPFromRequest(r *http.Request) string {
	if r == nil {
		return ""
	}

	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		// First hop is the original client.
		if i := strings.IndexByte(fwd, ','); i >= 0 {
			fwd = fwd[:i]
		}
		return strings.TrimSpace(fwd)
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func clientIPFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}

	ip, _ := ctx.Value(clientIPContextKey{}).(string)
	return ip
}

// SessionStateFromContext returns the session state stored by the
// middleware.RequireSession wrapper, if any.
func SessionStateFromContext(ctx context.Context) (SessionState, bool) {
	if ctx == nil {
		return SessionState{}, false
	}

	state, ok := ctx.Value(sessionStateContextKey{}).(SessionState)
	return state, ok
}

// WithSessionState attaches a resolved session state to ctx.
func WithSessionState(ctx context.Context, state SessionState) context.Context {
	return context.WithValue(ctx, sessionStateContextKey{}, state)
}
