package postgres

import (
	"testing"
	"time"

	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/require"

	"github.com/DaniAlencarrr/Athletix/internal/domain"
)

const testAccountID = "5b0c3f4e-3d8a-4a43-9d55-9f0f5c2a7e11"

func newMockPool(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock
}

func strPtr(s string) *string { return &s }

func sampleAccount() *domain.Account {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &domain.Account{
		ID:        testAccountID,
		Name:      "Ana Souza",
		Email:     "ana@athletix.dev",
		Password:  "$2a$12$abcdefghijklmnopqrstuv",
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func accountColumnNames() []string {
	return []string{
		"id", "name", "email", "password", "role", "onboarding_completed",
		"birth_date", "bio", "created_at", "updated_at",
	}
}

func accountRow(a *domain.Account) *pgxmock.Rows {
	var password, role *string
	if a.Password != "" {
		password = strPtr(a.Password)
	}
	if a.Role != nil {
		role = strPtr(a.Role.String())
	}
	return pgxmock.NewRows(accountColumnNames()).AddRow(
		a.ID, a.Name, a.Email, password, role, a.OnboardingCompleted,
		a.BirthDate, a.Bio, a.CreatedAt, a.UpdatedAt,
	)
}
