package http

import (
	"log/slog"
	"net/http"
	stdhttputil "net/http/httputil"
	"net/url"

	"github.com/DaniAlencarrr/Athletix/internal/gate"
	"github.com/DaniAlencarrr/Athletix/pkg/httputil"
)

// NewFrontendProxy forwards page requests that passed the access gate to
// the frontend server at target.
func NewFrontendProxy(target *url.URL, logger *slog.Logger) http.Handler {
	proxy := stdhttputil.NewSingleHostReverseProxy(target)
	proxy.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		logger.ErrorContext(r.Context(), "frontend unavailable",
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()),
		)
		httputil.WriteJSON(w, http.StatusBadGateway, httputil.Response{Error: &httputil.ErrorResponse{
			Code:    "FRONTEND_UNAVAILABLE",
			Message: "the frontend is temporarily unavailable",
		}})
	}
	return proxy
}

// PageResponse is returned for page routes when no frontend is configured.
type PageResponse struct {
	Page                string  `json:"page"`
	AccountID           string  `json:"account_id,omitempty"`
	Role                *string `json:"role,omitempty"`
	OnboardingCompleted *bool   `json:"onboarding_completed,omitempty"`
}

// PageStub answers page routes with a description of the page and the
// session that reached it.
func PageStub(w http.ResponseWriter, r *http.Request) {
	resp := PageResponse{Page: r.URL.Path}
	if claims := gate.ClaimsFromContext(r.Context()); claims != nil {
		resp.AccountID = claims.AccountID()
		resp.OnboardingCompleted = claims.OnboardingCompleted
		if claims.Role != nil {
			role := claims.Role.String()
			resp.Role = &role
		}
	}
	httputil.WriteData(w, http.StatusOK, resp)
}
