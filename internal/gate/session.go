package gate

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/DaniAlencarrr/Athletix/internal/auth"
	"github.com/DaniAlencarrr/Athletix/pkg/logger"
)

// RefreshedTokenHeader carries a re-issued token to bearer-token clients.
const RefreshedTokenHeader = "X-Session-Token"

// SessionEnricher authenticates tokens and back-fills their onboarding
// flags. *service.SessionService implements it.
type SessionEnricher interface {
	Authenticate(token string) (*auth.Claims, error)
	Enrich(ctx context.Context, claims *auth.Claims) (*auth.Claims, bool, error)
	Resign(claims *auth.Claims) (string, error)
	TTL() time.Duration
}

type claimsKey struct{}

// WithClaims stores the session claims in ctx.
func WithClaims(ctx context.Context, c *auth.Claims) context.Context {
	return context.WithValue(ctx, claimsKey{}, c)
}

// ClaimsFromContext returns the session claims, or nil for anonymous
// requests.
func ClaimsFromContext(ctx context.Context) *auth.Claims {
	c, _ := ctx.Value(claimsKey{}).(*auth.Claims)
	return c
}

// Sessions resolves the caller's session. A valid token is enriched when its
// flags are missing and re-issued when enrichment changed it, so later
// requests carry the flags without a store round-trip. An invalid or expired
// cookie is cleared and the request continues anonymously.
func Sessions(enricher SessionEnricher, cookie Cookie) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, source := cookie.token(r)
			if source == sourceNone {
				next.ServeHTTP(w, r)
				return
			}

			ctx := r.Context()
			claims, err := enricher.Authenticate(raw)
			if err != nil {
				if source == sourceCookie {
					cookie.Clear(w)
				}
				logger.FromContext(ctx).DebugContext(ctx, "session rejected", slog.String("reason", err.Error()))
				next.ServeHTTP(w, r)
				return
			}

			enriched, changed, err := enricher.Enrich(ctx, claims)
			if err != nil {
				logger.FromContext(ctx).WarnContext(ctx, "session enrichment failed",
					slog.String("account_id", claims.AccountID()),
					slog.String("error", err.Error()),
				)
			}
			if changed {
				reissue(ctx, w, enricher, cookie, enriched, source)
			}

			ctx = logger.WithAccountID(ctx, enriched.AccountID())
			ctx = logger.NewContext(ctx, logger.FromContext(ctx).With(slog.String("account_id", enriched.AccountID())))
			ctx = WithClaims(ctx, enriched)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func reissue(ctx context.Context, w http.ResponseWriter, enricher SessionEnricher, cookie Cookie, claims *auth.Claims, source tokenSource) {
	token, err := enricher.Resign(claims)
	if err != nil {
		logger.FromContext(ctx).ErrorContext(ctx, "session re-issue failed", slog.String("error", err.Error()))
		return
	}
	switch source {
	case sourceCookie:
		cookie.Set(w, token, time.Now().Add(enricher.TTL()))
	case sourceBearer:
		w.Header().Set(RefreshedTokenHeader, token)
	}
}

// RequireSession rejects anonymous requests with 401 using reject.
func RequireSession(reject func(w http.ResponseWriter, r *http.Request)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if ClaimsFromContext(r.Context()) == nil {
				reject(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
