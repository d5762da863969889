package service

import (
	"context"
	"io"
	"log/slog"

	"github.com/stretchr/testify/mock"

	"github.com/DaniAlencarrr/Athletix/internal/domain"
	"github.com/DaniAlencarrr/Athletix/pkg/pagination"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// --- Mock Account Repository ---

type mockAccountRepository struct {
	mock.Mock
}

func (m *mockAccountRepository) Create(ctx context.Context, account *domain.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *mockAccountRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *mockAccountRepository) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *mockAccountRepository) GetStatus(ctx context.Context, id string) (*domain.OnboardingStatus, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.OnboardingStatus), args.Error(1)
}

func (m *mockAccountRepository) UpdatePassword(ctx context.Context, id, hash string) error {
	args := m.Called(ctx, id, hash)
	return args.Error(0)
}

// --- Mock Onboarding Repository ---

type mockOnboardingRepository struct {
	mock.Mock
}

func (m *mockOnboardingRepository) Complete(ctx context.Context, accountID string, sub domain.Submission) (*domain.Account, error) {
	args := m.Called(ctx, accountID, sub)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

// --- Mock Directory Repository ---

type mockDirectoryRepository struct {
	mock.Mock
}

func (m *mockDirectoryRepository) List(ctx context.Context, role domain.Role, page pagination.Params) ([]domain.DirectoryEntry, int, error) {
	args := m.Called(ctx, role, page)
	entries, _ := args.Get(0).([]domain.DirectoryEntry)
	return entries, args.Int(1), args.Error(2)
}

func (m *mockDirectoryRepository) FindByName(ctx context.Context, role domain.Role, phrase string) (*domain.DirectoryEntry, error) {
	args := m.Called(ctx, role, phrase)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DirectoryEntry), args.Error(1)
}

// --- Mock Status Cache ---

type mockStatusCache struct {
	mock.Mock
}

func (m *mockStatusCache) Get(ctx context.Context, accountID string) (*domain.OnboardingStatus, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.OnboardingStatus), args.Error(1)
}

func (m *mockStatusCache) Set(ctx context.Context, st *domain.OnboardingStatus) error {
	args := m.Called(ctx, st)
	return args.Error(0)
}

func (m *mockStatusCache) Invalidate(ctx context.Context, accountID string) error {
	args := m.Called(ctx, accountID)
	return args.Error(0)
}
