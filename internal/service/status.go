package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/DaniAlencarrr/Athletix/internal/domain"
	"github.com/DaniAlencarrr/Athletix/internal/repository"
	"github.com/DaniAlencarrr/Athletix/pkg/breaker"
	apperrors "github.com/DaniAlencarrr/Athletix/pkg/errors"
)

// StatusLookup answers the access gate's fallback question "has this account
// completed onboarding" from the status cache, then the database. Database
// reads go through a circuit breaker so an unreachable store fails fast.
type StatusLookup struct {
	accounts repository.AccountRepository
	cache    repository.StatusCache
	breaker  *breaker.Breaker[*domain.OnboardingStatus]
	logger   *slog.Logger
}

// NewStatusLookup creates a lookup. cache may be nil.
func NewStatusLookup(accounts repository.AccountRepository, cache repository.StatusCache, cfg breaker.Config, logger *slog.Logger) *StatusLookup {
	cfg.IsSuccessful = func(err error) bool {
		return err == nil || errors.Is(err, apperrors.ErrNotFound)
	}
	return &StatusLookup{
		accounts: accounts,
		cache:    cache,
		breaker:  breaker.New[*domain.OnboardingStatus](cfg, logger),
		logger:   logger,
	}
}

// Lookup returns the onboarding status of accountID. A missing account
// yields ErrNotFound; an unreachable store yields ErrTransientStore.
func (l *StatusLookup) Lookup(ctx context.Context, accountID string) (*domain.OnboardingStatus, error) {
	if l.cache != nil {
		st, err := l.cache.Get(ctx, accountID)
		if err == nil {
			return st, nil
		}
		if !errors.Is(err, apperrors.ErrNotFound) {
			l.logger.WarnContext(ctx, "status cache read failed",
				slog.String("account_id", accountID),
				slog.String("error", err.Error()),
			)
		}
	}

	st, err := l.breaker.Execute(func() (*domain.OnboardingStatus, error) {
		return l.accounts.GetStatus(ctx, accountID)
	})
	if err != nil {
		if breaker.IsRejected(err) {
			return nil, apperrors.TransientStore(err)
		}
		return nil, err
	}

	if l.cache != nil {
		if err := l.cache.Set(ctx, st); err != nil {
			l.logger.WarnContext(ctx, "status cache write failed",
				slog.String("account_id", accountID),
				slog.String("error", err.Error()),
			)
		}
	}
	return st, nil
}

// Invalidate drops any cached status for accountID.
func (l *StatusLookup) Invalidate(ctx context.Context, accountID string) {
	if l.cache == nil {
		return
	}
	if err := l.cache.Invalidate(ctx, accountID); err != nil {
		l.logger.WarnContext(ctx, "status cache invalidation failed",
			slog.String("account_id", accountID),
			slog.String("error", err.Error()),
		)
	}
}
