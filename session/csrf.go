package session

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"net/http"
)

const csrfTokenBytes = 32

// NewCSRFToken generates a cryptographically random anti-forgery value:
// 32 bytes of entropy, base64url-encoded without padding.
func NewCSRFToken() (string, error) {
	buf := make([]byte, csrfTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// ValidateCSRF compares a client-submitted CSRF value against the value
// persisted alongside the current session, in constant time. It returns false —
// never an error — when no session pair exists, when the submitted value is
// empty, or on mismatch.
func (m *Manager) ValidateCSRF(r *http.Request, submitted string) bool {
	if submitted == "" {
		return false
	}
	stored, ok := m.ReadCSRF(r)
	if !ok {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(stored), []byte(submitted)) == 1
}
