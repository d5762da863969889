package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/DaniAlencarrr/Athletix/internal/domain"
	"github.com/DaniAlencarrr/Athletix/internal/event"
	apperrors "github.com/DaniAlencarrr/Athletix/pkg/errors"
	"github.com/DaniAlencarrr/Athletix/pkg/validator"
)

func float(v float64) *float64 { return &v }

func validAthlete() *domain.AthleteSubmission {
	return &domain.AthleteSubmission{
		OnboardingBase: domain.OnboardingBase{
			BirthDate: "1998-04-02",
			Bio:       "Trail runner and cyclist",
			Street:    "Rua do Sol 45",
			City:      "Olinda",
			State:     "PE",
			ZipCode:   "53000-000",
			Country:   "Brasil",
		},
		Sport:  "running",
		Height: float(172),
		Weight: float(64),
	}
}

type onboardingFixture struct {
	svc   *OnboardingService
	repo  *mockOnboardingRepository
	cache *mockStatusCache
}

func newOnboardingFixture() onboardingFixture {
	repo := new(mockOnboardingRepository)
	cache := new(mockStatusCache)
	logger := discardLogger()
	lookup := NewStatusLookup(new(mockAccountRepository), cache, testBreakerConfig("onboarding"), logger)
	return onboardingFixture{
		svc:   NewOnboardingService(repo, lookup, event.NewProducer(nil, logger), logger),
		repo:  repo,
		cache: cache,
	}
}

func TestOnboardingService_Complete(t *testing.T) {
	f := newOnboardingFixture()
	sub := validAthlete()
	f.repo.On("Complete", mock.Anything, "acc-1", sub).Return(&domain.Account{
		ID:                  "acc-1",
		Password:            "$2a$12$hash",
		Role:                domain.RolePtr(domain.RoleAthlete),
		OnboardingCompleted: true,
		UpdatedAt:           time.Now(),
	}, nil)
	f.cache.On("Invalidate", mock.Anything, "acc-1").Return(nil)

	account, err := f.svc.Complete(context.Background(), "acc-1", sub)
	require.NoError(t, err)
	assert.True(t, account.OnboardingCompleted)
	assert.Empty(t, account.Password)
	f.cache.AssertExpectations(t)
}

func TestOnboardingService_Unauthenticated(t *testing.T) {
	f := newOnboardingFixture()

	_, err := f.svc.Complete(context.Background(), "", validAthlete())
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

func TestOnboardingService_HeightOutOfRange(t *testing.T) {
	f := newOnboardingFixture()
	sub := validAthlete()
	sub.Height = float(50)

	_, err := f.svc.Complete(context.Background(), "acc-1", sub)

	var valErr *validator.ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.Contains(t, valErr.Fields(), "height")
	f.repo.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything, mock.Anything)
}

func TestOnboardingService_SecondSubmissionConflicts(t *testing.T) {
	f := newOnboardingFixture()
	sub := validAthlete()
	f.repo.On("Complete", mock.Anything, "acc-1", sub).
		Return(nil, apperrors.Conflict("onboarding already completed"))

	_, err := f.svc.Complete(context.Background(), "acc-1", sub)
	assert.ErrorIs(t, err, apperrors.ErrConflict)
	f.cache.AssertNotCalled(t, "Invalidate", mock.Anything, mock.Anything)
}
