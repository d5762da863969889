package http

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/DaniAlencarrr/Athletix/internal/domain"
	"github.com/DaniAlencarrr/Athletix/internal/gate"
	"github.com/DaniAlencarrr/Athletix/internal/service"
	apperrors "github.com/DaniAlencarrr/Athletix/pkg/errors"
	"github.com/DaniAlencarrr/Athletix/pkg/httputil"
	"github.com/DaniAlencarrr/Athletix/pkg/validator"
)

// OnboardingHandler handles onboarding submissions.
type OnboardingHandler struct {
	onboarding *service.OnboardingService
	sessions   *service.SessionService
	cookie     gate.Cookie
	logger     *slog.Logger
}

// NewOnboardingHandler creates an onboarding HTTP handler.
func NewOnboardingHandler(
	onboarding *service.OnboardingService,
	sessions *service.SessionService,
	cookie gate.Cookie,
	logger *slog.Logger,
) *OnboardingHandler {
	return &OnboardingHandler{
		onboarding: onboarding,
		sessions:   sessions,
		cookie:     cookie,
		logger:     logger,
	}
}

// OnboardingResponse is returned after a successful submission.
type OnboardingResponse struct {
	Message             string      `json:"message"`
	Role                domain.Role `json:"role"`
	OnboardingCompleted bool        `json:"onboarding_completed"`
	Token               string      `json:"token,omitempty"`
}

// Submit handles POST /api/onboarding
func (h *OnboardingHandler) Submit(w http.ResponseWriter, r *http.Request) {
	claims := gate.ClaimsFromContext(r.Context())

	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, httputil.MaxBodyBytes))
	if err != nil {
		httputil.WriteError(w, r, apperrors.InvalidInput("invalid request body: "+err.Error()), h.logger)
		return
	}

	sub, err := domain.DecodeSubmission(raw)
	if err != nil {
		var valErr *validator.ValidationError
		if !errors.As(err, &valErr) {
			err = apperrors.InvalidInput("invalid request body: " + err.Error())
		}
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	account, err := h.onboarding.Complete(r.Context(), claims.AccountID(), sub)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	resp := OnboardingResponse{
		Message:             "onboarding completed",
		Role:                sub.Role(),
		OnboardingCompleted: account.OnboardingCompleted,
	}

	// The write is committed; a signing failure only costs the client an
	// update-session call.
	if sess, err := h.sessions.Issue(account); err != nil {
		h.logger.ErrorContext(r.Context(), "failed to re-issue session after onboarding",
			slog.String("account_id", account.ID),
			slog.String("error", err.Error()),
		)
	} else {
		h.cookie.Set(w, sess.Token, sess.ExpiresAt)
		resp.Token = sess.Token
	}

	httputil.WriteData(w, http.StatusCreated, resp)
}
