// Package redirect validates caller-supplied "next" paths before they are ever
// used in a redirect. Anything that is not a same-origin relative path matching
// an explicit allow-list collapses to a safe fallback — this is the storefront's
// open-redirect defense, and it sits on a hot path, so it never fails loudly.
package redirect

import (
	"strings"
)

// Sanitize validates requested against the allow-list and returns either the
// requested path or fallback. The allow-list holds path prefixes; an entry
// matches when the path equals it exactly or extends it at a segment boundary.
//
// Rejection cases (all return fallback):
//
//   - empty input — treated as rejection, not "no preference", so a missing
//     parameter cannot cause a same-page redirect loop;
//   - absolute URLs (scheme), protocol-relative paths (//host), backslash
//     variants, and anything with embedded control bytes;
//   - paths outside the allow-list.
func Sanitize(requested string, allowed []string, fallback string) string {
	if requested == "" {
		return fallback
	}
	if !isRelativePath(requested) {
		return fallback
	}
	for _, prefix := range allowed {
		if prefix == "" || !strings.HasPrefix(prefix, "/") {
			continue
		}
		if matchesPrefix(requested, prefix) {
			return requested
		}
	}
	return fallback
}

// isRelativePath reports whether raw is a same-origin relative path. Schemes
// ("https://evil.com/x", "javascript:..."), protocol-relative ("//evil.com"),
// and backslash tricks ("/\evil.com") are all rejected outright.
func isRelativePath(raw string) bool {
	if !strings.HasPrefix(raw, "/") {
		return false
	}
	if strings.HasPrefix(raw, "//") || strings.HasPrefix(raw, "/\\") {
		return false
	}
	for i := 0; i < len(raw); i++ {
		c := raw[i]
		if c < 0x20 || c == 0x7f {
			return false
		}
		// A colon before any '?' could smuggle a scheme through lenient parsers.
		if c == '\\' {
			return false
		}
		if c == '?' {
			break
		}
		if c == ':' {
			return false
		}
	}
	return true
}

func matchesPrefix(path, prefix string) bool {
	if path == prefix {
		return true
	}
	if !strings.HasPrefix(path, prefix) {
		return false
	}
	// "/shop" must match "/shop/widgets" and "/shop?page=2" but not "/shopping".
	rest := path[len(prefix):]
	if strings.HasSuffix(prefix, "/") {
		return true
	}
	return rest[0] == '/' || rest[0] == '?'
}
