package repository

import (
	"context"

	"github.com/DaniAlencarrr/Athletix/internal/domain"
	"github.com/DaniAlencarrr/Athletix/pkg/pagination"
)

// AccountRepository persists accounts.
type AccountRepository interface {
	// Create inserts a new account. A taken email yields ErrAlreadyExists.
	Create(ctx context.Context, account *domain.Account) error

	// GetByID returns the account or ErrNotFound.
	GetByID(ctx context.Context, id string) (*domain.Account, error)

	// GetByEmail looks an account up by its normalised email.
	GetByEmail(ctx context.Context, email string) (*domain.Account, error)

	// GetStatus returns only the role and onboarding flag.
	GetStatus(ctx context.Context, id string) (*domain.OnboardingStatus, error)

	// UpdatePassword replaces the stored credential.
	UpdatePassword(ctx context.Context, id, hash string) error
}

// OnboardingRepository writes onboarding submissions.
type OnboardingRepository interface {
	// Complete sets the role and onboarding flag and inserts the role
	// profile and address in one transaction. It returns the updated account.
	Complete(ctx context.Context, accountID string, sub domain.Submission) (*domain.Account, error)
}

// DirectoryRepository reads the public coach and athlete listings.
type DirectoryRepository interface {
	// List returns onboarded accounts with the given role ordered by name,
	// plus the total count.
	List(ctx context.Context, role domain.Role, page pagination.Params) ([]domain.DirectoryEntry, int, error)

	// FindByName returns the first onboarded account with the given role
	// whose accent-folded name contains phrase, or ErrNotFound.
	FindByName(ctx context.Context, role domain.Role, phrase string) (*domain.DirectoryEntry, error)
}

// StatusCache caches onboarding status for the access gate fallback.
type StatusCache interface {
	// Get returns the cached status or ErrNotFound on a miss.
	Get(ctx context.Context, accountID string) (*domain.OnboardingStatus, error)

	// Set stores the status with the cache TTL.
	Set(ctx context.Context, status *domain.OnboardingStatus) error

	// Invalidate drops the cached status.
	Invalidate(ctx context.Context, accountID string) error
}
