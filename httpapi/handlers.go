package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	shopauth "github.com/hexlane/shopauth"
)

// CSRFHeader is the request header alternative to the body-supplied
// csrfToken field on state-changing requests.
const CSRFHeader = "X-CSRF-Token"

// Handler serves the session endpoints over JSON.
type Handler struct {
	engine *shopauth.Engine
}

// NewHandler returns a Handler bound to engine.
func NewHandler(engine *shopauth.Engine) *Handler {
	return &Handler{engine: engine}
}

// Register mounts the session endpoints on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /auth/login", h.Login)
	mux.HandleFunc("POST /auth/logout", h.Logout)
	mux.HandleFunc("POST /auth/refresh", h.Refresh)
	mux.HandleFunc("GET /auth/session", h.Session)
}

type loginBody struct {
	Username   string              `json:"username"`
	Password   string              `json:"password"`
	CartItems  []shopauth.CartItem `json:"cartItems,omitempty"`
	RedirectTo string              `json:"redirectTo,omitempty"`
}

type logoutBody struct {
	CSRFToken string `json:"csrfToken,omitempty"`
}

type degradePayload struct {
	Status string `json:"status"`
	Reason string `json:"reason,omitempty"`
}

type loginPayload struct {
	Success    bool           `json:"success"`
	User       shopauth.User  `json:"user"`
	RedirectTo string         `json:"redirectTo"`
	CSRFToken  string         `json:"csrfToken"`
	CartSync   degradePayload `json:"cartSync"`
}

type logoutPayload struct {
	Success     bool           `json:"success"`
	BackendSync degradePayload `json:"backendSync"`
}

type refreshPayload struct {
	Success   bool          `json:"success"`
	User      shopauth.User `json:"user"`
	CSRFToken string        `json:"csrfToken"`
}

type sessionPayload struct {
	Success bool           `json:"success"`
	Status  string         `json:"status"`
	User    *shopauth.User `json:"user,omitempty"`
}

type errorPayload struct {
	Success bool      `json:"success"`
	Error   errorBody `json:"error"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Login handles POST /auth/login.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	noStore(w)

	var body loginBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", "request body is not valid JSON")
		return
	}

	result, err := h.engine.Login(r.Context(), w, r, shopauth.LoginRequest{
		Username:   body.Username,
		Password:   body.Password,
		CartItems:  body.CartItems,
		RedirectTo: body.RedirectTo,
	})
	if err != nil {
		writeLoginError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, loginPayload{
		Success:    true,
		User:       result.User,
		RedirectTo: result.RedirectTo,
		CSRFToken:  result.CSRFToken,
		CartSync:   degrade(result.CartSync),
	})
}

// Logout handles POST /auth/logout. The CSRF value is taken from the optional
// JSON body, falling back to the X-CSRF-Token header.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	noStore(w)

	csrf := r.Header.Get(CSRFHeader)
	var body logoutBody
	if err := json.NewDecoder(r.Body).Decode(&body); err == nil && body.CSRFToken != "" {
		csrf = body.CSRFToken
	}

	result, err := h.engine.Logout(r.Context(), w, r, csrf)
	if err != nil {
		if errors.Is(err, shopauth.ErrInvalidCSRF) {
			writeError(w, http.StatusForbidden, "INVALID_CSRF", "csrf token mismatch")
			return
		}
		writeError(w, http.StatusInternalServerError, "LOGOUT_ERROR", "logout failed")
		return
	}

	writeJSON(w, http.StatusOK, logoutPayload{
		Success:     true,
		BackendSync: degrade(result.BackendSync),
	})
}

// Refresh handles POST /auth/refresh.
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	noStore(w)

	result, err := h.engine.Refresh(r.Context(), w, r)
	if err != nil {
		writeRefreshError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, refreshPayload{
		Success:   true,
		User:      result.User,
		CSRFToken: result.CSRFToken,
	})
}

// Session handles GET /auth/session.
func (h *Handler) Session(w http.ResponseWriter, r *http.Request) {
	noStore(w)

	state := h.engine.ValidateSession(r.Context(), r)
	if state.Status != shopauth.StatusAuthenticated {
		writeJSON(w, http.StatusOK, sessionPayload{Success: true, Status: "unauthenticated"})
		return
	}

	user := state.User
	writeJSON(w, http.StatusOK, sessionPayload{Success: true, Status: "authenticated", User: &user})
}

func writeLoginError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, shopauth.ErrInvalidUsername):
		writeError(w, http.StatusBadRequest, "INVALID_USERNAME", "username must be between 3 and 255 characters")
	case errors.Is(err, shopauth.ErrInvalidPassword):
		writeError(w, http.StatusBadRequest, "INVALID_PASSWORD", "password must be between 6 and 128 characters")
	case errors.Is(err, shopauth.ErrLoginRateLimited):
		writeError(w, http.StatusTooManyRequests, "RATE_LIMITED", "too many login attempts, try again later")
	case errors.Is(err, shopauth.ErrRateStoreUnavailable):
		writeError(w, http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "login is temporarily unavailable")
	case errors.Is(err, shopauth.ErrLoginFailed):
		writeError(w, http.StatusUnauthorized, "LOGIN_FAILED", "invalid username or password")
	default:
		writeError(w, http.StatusInternalServerError, "LOGIN_ERROR", "login could not be completed")
	}
}

func writeRefreshError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, shopauth.ErrNoToken):
		writeError(w, http.StatusUnauthorized, "NO_TOKEN", "no session token")
	case errors.Is(err, shopauth.ErrInvalidToken):
		writeError(w, http.StatusUnauthorized, "INVALID_TOKEN", "session token rejected")
	case errors.Is(err, shopauth.ErrUserNotFound):
		writeError(w, http.StatusUnauthorized, "USER_NOT_FOUND", "user no longer exists")
	default:
		writeError(w, http.StatusInternalServerError, "REFRESH_FAILED", "session refresh failed")
	}
}

func degrade(result shopauth.DegradeResult) degradePayload {
	p := degradePayload{Reason: result.Reason}
	switch result.Status {
	case shopauth.DegradeOK:
		p.Status = "ok"
	case shopauth.DegradeDegraded:
		p.Status = "degraded"
	default:
		p.Status = "skipped"
	}
	return p
}

// noStore keeps auth responses out of shared caches; Set-Cookie responses
// must never be cached.
func noStore(w http.ResponseWriter) {
	w.Header().Set("Cache-Control", "no-store, no-cache, must-revalidate")
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorPayload{Success: false, Error: errorBody{Code: code, Message: message}})
}
