package service

import (
	"context"
	"log/slog"

	"github.com/DaniAlencarrr/Athletix/internal/domain"
	"github.com/DaniAlencarrr/Athletix/internal/event"
	"github.com/DaniAlencarrr/Athletix/internal/repository"
	apperrors "github.com/DaniAlencarrr/Athletix/pkg/errors"
)

// OnboardingService validates and persists onboarding submissions.
type OnboardingService struct {
	repo     repository.OnboardingRepository
	statuses *StatusLookup
	producer *event.Producer
	logger   *slog.Logger
}

// NewOnboardingService creates an onboarding service.
func NewOnboardingService(
	repo repository.OnboardingRepository,
	statuses *StatusLookup,
	producer *event.Producer,
	logger *slog.Logger,
) *OnboardingService {
	return &OnboardingService{
		repo:     repo,
		statuses: statuses,
		producer: producer,
		logger:   logger,
	}
}

// Complete validates sub and writes it for accountID in one transaction. It
// returns the updated account.
func (s *OnboardingService) Complete(ctx context.Context, accountID string, sub domain.Submission) (*domain.Account, error) {
	if accountID == "" {
		return nil, apperrors.Unauthorized("authentication required")
	}
	if err := domain.ValidateSubmission(sub); err != nil {
		return nil, err
	}

	account, err := s.repo.Complete(ctx, accountID, sub)
	if err != nil {
		return nil, err
	}

	if s.statuses != nil {
		s.statuses.Invalidate(ctx, accountID)
	}

	if err := s.producer.PublishOnboardingCompleted(ctx, account, sub); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish onboarding.completed event",
			slog.String("account_id", accountID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "onboarding completed",
		slog.String("account_id", accountID),
		slog.String("role", sub.Role().String()),
	)
	return account.Public(), nil
}
