package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/DaniAlencarrr/Athletix/internal/gate"
	"github.com/DaniAlencarrr/Athletix/internal/service"
	apperrors "github.com/DaniAlencarrr/Athletix/pkg/errors"
	"github.com/DaniAlencarrr/Athletix/pkg/httputil"
)

// AuthHandler handles HTTP requests for session endpoints.
type AuthHandler struct {
	sessions *service.SessionService
	cookie   gate.Cookie
	logger   *slog.Logger
}

// NewAuthHandler creates an auth HTTP handler.
func NewAuthHandler(sessions *service.SessionService, cookie gate.Cookie, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{sessions: sessions, cookie: cookie, logger: logger}
}

// SessionResponse describes the caller's current session claims.
type SessionResponse struct {
	AccountID           string     `json:"account_id"`
	Email               string     `json:"email"`
	Name                string     `json:"name"`
	Role                *string    `json:"role"`
	OnboardingCompleted *bool      `json:"onboarding_completed"`
	ExpiresAt           *time.Time `json:"expires_at,omitempty"`
}

// Register handles POST /api/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req service.RegisterInput
	if err := httputil.DecodeJSON(w, r, &req); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	sess, err := h.sessions.Register(r.Context(), req)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	h.cookie.Set(w, sess.Token, sess.ExpiresAt)
	httputil.WriteData(w, http.StatusCreated, sess)
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req service.LoginInput
	if err := httputil.DecodeJSON(w, r, &req); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	sess, err := h.sessions.Login(r.Context(), req)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	h.cookie.Set(w, sess.Token, sess.ExpiresAt)
	httputil.WriteData(w, http.StatusOK, sess)
}

// Logout handles POST /api/auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, _ *http.Request) {
	h.cookie.Clear(w)
	w.WriteHeader(http.StatusNoContent)
}

// UpdateSession handles POST /api/auth/update-session. It re-reads the
// account and re-issues the session, so flags written since the last token
// are picked up.
func (h *AuthHandler) UpdateSession(w http.ResponseWriter, r *http.Request) {
	claims := gate.ClaimsFromContext(r.Context())

	sess, err := h.sessions.Update(r.Context(), claims.AccountID())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	h.cookie.Set(w, sess.Token, sess.ExpiresAt)
	httputil.WriteData(w, http.StatusOK, sess)
}

// Session handles GET /api/auth/session
func (h *AuthHandler) Session(w http.ResponseWriter, r *http.Request) {
	claims := gate.ClaimsFromContext(r.Context())

	resp := SessionResponse{
		AccountID:           claims.AccountID(),
		Email:               claims.Email,
		Name:                claims.Name,
		OnboardingCompleted: claims.OnboardingCompleted,
	}
	if claims.Role != nil {
		role := claims.Role.String()
		resp.Role = &role
	}
	if claims.ExpiresAt != nil {
		resp.ExpiresAt = &claims.ExpiresAt.Time
	}
	httputil.WriteData(w, http.StatusOK, resp)
}

// unauthorized rejects requests without a session.
func unauthorized(logger *slog.Logger) func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteError(w, r, apperrors.Unauthorized("authentication required"), logger)
	}
}
