package http

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"vetdesk/internal/auth"
)

const (
	oidcCookieName = "oidc"
	oidcCookieTTL  = 5 * time.Minute

	sessionCookieName = "session"
	sessionCookieTTL  = auth.DefaultSessionTTL
)

// AuthHandler exposes the Google login endpoints and the session endpoints.
type AuthHandler struct {
	flow         *auth.Flow
	authService  *auth.Service
	origins      *auth.OriginPolicy
	logger       *slog.Logger
	secureCookie bool
}

// NewAuthHandler creates the handler.
func NewAuthHandler(flow *auth.Flow, authService *auth.Service, origins *auth.OriginPolicy, env string, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		flow:         flow,
		authService:  authService,
		origins:      origins,
		logger:       logger,
		secureCookie: !strings.EqualFold(env, "development"),
	}
}

// InitiateGoogle handles GET /auth/google. It validates the calling web-app
// origin, sets the transient auth cookie and redirects to Google's consent
// screen.
func (h *AuthHandler) InitiateGoogle(w http.ResponseWriter, r *http.Request) {
	origin := requestOrigin(r)
	if origin == "" || !h.origins.Allows(origin) {
		h.logger.Warn("login rejected: origin not allow-listed", "origin", origin)
		h.writeAuthError(w, r, auth.ErrInvalidOrigin)
		return
	}

	result, err := h.flow.Start(origin)
	if err != nil {
		h.logger.Error("failed to start login", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	http.SetCookie(w, h.transientCookie(result.CookieValue, oidcCookieTTL))
	http.Redirect(w, r, result.RedirectURL, http.StatusFound)
}

// CallbackGoogle handles GET /auth/google/callback. The transient cookie is
// cleared on every outcome so a failed login never leaves a stale cookie
// behind.
func (h *AuthHandler) CallbackGoogle(w http.ResponseWriter, r *http.Request) {
	var rawCookie string
	if cookie, err := r.Cookie(oidcCookieName); err == nil {
		rawCookie = cookie.Value
	}

	clearCookie := h.transientCookie("", 0)
	clearCookie.MaxAge = -1
	clearCookie.Expires = time.Unix(0, 0)
	http.SetCookie(w, clearCookie)

	result, err := h.flow.Finish(r.Context(), r.URL, rawCookie)
	if err != nil {
		h.writeAuthError(w, r, err)
		return
	}

	session, err := h.authService.CreateSession(r.Context(), result.User)
	if err != nil {
		h.logger.Error("session creation failed", "error", err, "user_id", result.User.ID)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	http.SetCookie(w, h.sessionCookie(session.ID, sessionCookieTTL))

	h.logger.Info("login successful", "user_id", result.User.ID, "email", result.User.Email)
	http.Redirect(w, r, strings.TrimSuffix(result.AppOrigin, "/")+"/", http.StatusFound)
}

// Me handles GET /me for an authenticated session.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	if user == nil {
		unauthorized(w)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"user": user})
}

// Logout handles POST /auth/logout. It deletes the session if one exists,
// clears the cookie and reports ok unconditionally.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(sessionCookieName); err == nil && cookie.Value != "" {
		if err := h.authService.DeleteSession(r.Context(), cookie.Value); err != nil {
			h.logger.Error("logout: delete session failed", "error", err)
		}
	}

	clearCookie := h.sessionCookie("", 0)
	clearCookie.MaxAge = -1
	clearCookie.Expires = time.Unix(0, 0)
	http.SetCookie(w, clearCookie)

	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

// writeAuthError is the single place where flow errors become status codes:
// exchange failures are internal, an unverified email is forbidden, the
// invariant-violating missing user is internal, and everything else in the
// taxonomy is a client error. The response never carries provider detail.
func (h *AuthHandler) writeAuthError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusBadRequest
	code := "invalid_request"

	switch {
	case errors.Is(err, auth.ErrExchangeFailed):
		status = http.StatusInternalServerError
		code = auth.ErrExchangeFailed.Error()
		h.logger.Error("oauth exchange failed", "error", err)
	case errors.Is(err, auth.ErrEmailUnverified):
		status = http.StatusForbidden
		code = auth.ErrEmailUnverified.Error()
	case errors.Is(err, auth.ErrUserNotFound):
		status = http.StatusInternalServerError
		code = auth.ErrUserNotFound.Error()
		h.logger.Error("user upsert returned no row", "error", err)
	case errors.Is(err, auth.ErrInvalidQuery),
		errors.Is(err, auth.ErrMissingCookie),
		errors.Is(err, auth.ErrBadCookie),
		errors.Is(err, auth.ErrStateMismatch),
		errors.Is(err, auth.ErrMissingClaims),
		errors.Is(err, auth.ErrInvalidClaims),
		errors.Is(err, auth.ErrInvalidOrigin):
		code = err.Error()
		h.logger.Warn("login rejected", "reason", code)
	default:
		status = http.StatusInternalServerError
		code = "internal_error"
		h.logger.Error("login failed", "error", err)
	}

	writeJSON(w, status, map[string]string{
		"error":     code,
		"requestId": middleware.GetReqID(r.Context()),
	})
}

func (h *AuthHandler) transientCookie(value string, ttl time.Duration) *http.Cookie {
	return &http.Cookie{
		Name:     oidcCookieName,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(ttl.Seconds()),
	}
}

func (h *AuthHandler) sessionCookie(value string, ttl time.Duration) *http.Cookie {
	return &http.Cookie{
		Name:     sessionCookieName,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(ttl.Seconds()),
	}
}

// requestOrigin resolves the calling web-app origin from the Origin header,
// falling back to the Referer's origin.
func requestOrigin(r *http.Request) string {
	if origin := strings.TrimSpace(r.Header.Get("Origin")); origin != "" && origin != "null" {
		return origin
	}

	referer := strings.TrimSpace(r.Header.Get("Referer"))
	if referer == "" {
		return ""
	}
	parsed, err := url.Parse(referer)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return ""
	}
	return parsed.Scheme + "://" + parsed.Host
}
