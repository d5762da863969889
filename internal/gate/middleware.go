package gate

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/DaniAlencarrr/Athletix/internal/auth"
	"github.com/DaniAlencarrr/Athletix/internal/domain"
	apperrors "github.com/DaniAlencarrr/Athletix/pkg/errors"
	"github.com/DaniAlencarrr/Athletix/pkg/logger"
)

// DefaultLookupTimeout bounds the fallback status lookup.
const DefaultLookupTimeout = 2 * time.Second

var gateDecisionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "gate_decisions_total",
		Help: "Access gate decisions by route class and action",
	},
	[]string{"class", "action"},
)

// StatusLookup reads onboarding state straight from storage.
type StatusLookup interface {
	Lookup(ctx context.Context, accountID string) (*domain.OnboardingStatus, error)
}

// Gate routes navigational requests between login, onboarding and the
// dashboard. It must run after Sessions.
type Gate struct {
	lookup  StatusLookup
	timeout time.Duration
	logger  *slog.Logger
}

// New creates a gate. lookup may be nil, in which case flag-less sessions
// are treated as onboarding incomplete.
func New(lookup StatusLookup, timeout time.Duration, logger *slog.Logger) *Gate {
	if timeout <= 0 {
		timeout = DefaultLookupTimeout
	}
	return &Gate{lookup: lookup, timeout: timeout, logger: logger}
}

// Middleware applies the gate decision: allowed requests reach next, the
// rest are redirected. GET and HEAD redirects use 307, other methods 303 so
// the browser follows with a GET.
func (g *Gate) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		class := Classify(r.URL.Path)
		if class == ClassOther {
			gateDecisionsTotal.WithLabelValues(string(class), string(ActionAllow)).Inc()
			next.ServeHTTP(w, r)
			return
		}

		st := g.state(r.Context(), class, ClaimsFromContext(r.Context()))
		d := Decide(class, st)
		gateDecisionsTotal.WithLabelValues(string(class), string(d.Action)).Inc()

		if d.Allowed() {
			next.ServeHTTP(w, r)
			return
		}

		status := http.StatusSeeOther
		if r.Method == http.MethodGet || r.Method == http.MethodHead {
			status = http.StatusTemporaryRedirect
		}
		http.Redirect(w, r, d.Location(r.URL.RequestURI()), status)
	})
}

// state resolves what the gate knows about the caller. The store is only
// consulted when the token carries neither flag; any failure there leaves
// the flag unknown, which Decide treats as incomplete.
func (g *Gate) state(ctx context.Context, class Class, claims *auth.Claims) State {
	if claims == nil {
		return State{}
	}
	st := State{LoggedIn: true, OnboardingCompleted: claims.OnboardingCompleted}
	if claims.Role != nil || claims.OnboardingCompleted != nil || class == ClassPublicAuth {
		return st
	}
	if g.lookup == nil {
		return st
	}

	lctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	status, err := g.lookup.Lookup(lctx, claims.AccountID())
	switch {
	case err == nil:
		completed := status.Completed
		st.OnboardingCompleted = &completed
	case errors.Is(err, apperrors.ErrNotFound):
		completed := false
		st.OnboardingCompleted = &completed
	default:
		g.log(ctx).WarnContext(ctx, "gate status lookup failed",
			slog.String("account_id", claims.AccountID()),
			slog.String("class", string(class)),
			slog.String("error", err.Error()),
		)
	}
	return st
}

func (g *Gate) log(ctx context.Context) *slog.Logger {
	if l := logger.FromContext(ctx); l != slog.Default() || g.logger == nil {
		return l
	}
	return g.logger
}
