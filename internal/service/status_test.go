package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/DaniAlencarrr/Athletix/internal/domain"
	"github.com/DaniAlencarrr/Athletix/pkg/breaker"
	apperrors "github.com/DaniAlencarrr/Athletix/pkg/errors"
)

func testBreakerConfig(name string) breaker.Config {
	return breaker.Config{
		Name:         name,
		MaxRequests:  1,
		Interval:     time.Minute,
		Timeout:      time.Minute,
		FailureRatio: 0.5,
		MinRequests:  2,
	}
}

func completedStatus(id string) *domain.OnboardingStatus {
	return &domain.OnboardingStatus{AccountID: id, Role: domain.RolePtr(domain.RoleCoach), Completed: true}
}

func TestStatusLookup_CacheHit(t *testing.T) {
	repo := new(mockAccountRepository)
	cache := new(mockStatusCache)
	cache.On("Get", mock.Anything, "acc-1").Return(completedStatus("acc-1"), nil)

	l := NewStatusLookup(repo, cache, testBreakerConfig("status-hit"), discardLogger())
	st, err := l.Lookup(context.Background(), "acc-1")
	require.NoError(t, err)
	assert.True(t, st.Completed)
	repo.AssertNotCalled(t, "GetStatus", mock.Anything, mock.Anything)
}

func TestStatusLookup_MissFillsCache(t *testing.T) {
	repo := new(mockAccountRepository)
	cache := new(mockStatusCache)
	cache.On("Get", mock.Anything, "acc-1").Return(nil, apperrors.NotFound("onboarding status", "acc-1"))
	repo.On("GetStatus", mock.Anything, "acc-1").Return(completedStatus("acc-1"), nil)
	cache.On("Set", mock.Anything, completedStatus("acc-1")).Return(nil)

	l := NewStatusLookup(repo, cache, testBreakerConfig("status-miss"), discardLogger())
	st, err := l.Lookup(context.Background(), "acc-1")
	require.NoError(t, err)
	assert.True(t, st.Completed)
	cache.AssertExpectations(t)
}

func TestStatusLookup_CacheErrorFallsThrough(t *testing.T) {
	repo := new(mockAccountRepository)
	cache := new(mockStatusCache)
	cache.On("Get", mock.Anything, "acc-1").Return(nil, errors.New("redis get status: i/o timeout"))
	cache.On("Set", mock.Anything, mock.Anything).Return(errors.New("redis set status: i/o timeout"))
	repo.On("GetStatus", mock.Anything, "acc-1").Return(completedStatus("acc-1"), nil)

	l := NewStatusLookup(repo, cache, testBreakerConfig("status-cache-down"), discardLogger())
	st, err := l.Lookup(context.Background(), "acc-1")
	require.NoError(t, err)
	assert.Equal(t, "acc-1", st.AccountID)
}

func TestStatusLookup_WithoutCache(t *testing.T) {
	repo := new(mockAccountRepository)
	repo.On("GetStatus", mock.Anything, "acc-1").Return(completedStatus("acc-1"), nil)

	l := NewStatusLookup(repo, nil, testBreakerConfig("status-nocache"), discardLogger())
	_, err := l.Lookup(context.Background(), "acc-1")
	require.NoError(t, err)
	l.Invalidate(context.Background(), "acc-1")
}

func TestStatusLookup_NotFoundDoesNotTrip(t *testing.T) {
	repo := new(mockAccountRepository)
	repo.On("GetStatus", mock.Anything, "gone").Return(nil, apperrors.NotFound("account", "gone"))

	l := NewStatusLookup(repo, nil, testBreakerConfig("status-notfound"), discardLogger())
	for i := 0; i < 5; i++ {
		_, err := l.Lookup(context.Background(), "gone")
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	}
	repo.AssertNumberOfCalls(t, "GetStatus", 5)
}

func TestStatusLookup_OpenBreakerIsTransient(t *testing.T) {
	repo := new(mockAccountRepository)
	repo.On("GetStatus", mock.Anything, "acc-1").
		Return(nil, apperrors.TransientStore(errors.New("connection refused")))

	l := NewStatusLookup(repo, nil, testBreakerConfig("status-open"), discardLogger())
	for i := 0; i < 2; i++ {
		_, err := l.Lookup(context.Background(), "acc-1")
		assert.ErrorIs(t, err, apperrors.ErrTransientStore)
	}

	_, err := l.Lookup(context.Background(), "acc-1")
	assert.ErrorIs(t, err, apperrors.ErrTransientStore)
	repo.AssertNumberOfCalls(t, "GetStatus", 2)
}

func TestStatusLookup_Invalidate(t *testing.T) {
	cache := new(mockStatusCache)
	cache.On("Invalidate", mock.Anything, "acc-1").Return(errors.New("redis del status: closed"))

	l := NewStatusLookup(new(mockAccountRepository), cache, testBreakerConfig("status-invalidate"), discardLogger())
	l.Invalidate(context.Background(), "acc-1")
	cache.AssertExpectations(t)
}
