package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DaniAlencarrr/Athletix/internal/domain"
	apperrors "github.com/DaniAlencarrr/Athletix/pkg/errors"
)

func float(v float64) *float64 { return &v }

func athleteSubmission() *domain.AthleteSubmission {
	return &domain.AthleteSubmission{
		OnboardingBase: domain.OnboardingBase{
			BirthDate: "2000-05-17",
			Bio:       "Marathon runner since 2015",
			Street:    "Rua das Flores 10",
			City:      "Recife",
			State:     "PE",
			ZipCode:   "50000-000",
			Country:   "Brasil",
		},
		Sport:  "running",
		Height: float(180),
		Weight: float(72),
	}
}

func coachSubmission() *domain.CoachSubmission {
	return &domain.CoachSubmission{
		OnboardingBase: athleteSubmission().OnboardingBase,
		Experience:     "Ten years with sprinters",
		HourlyRate:     float(120.5),
		Certifications: "CREF",
	}
}

func completedRow(role domain.Role) *pgxmock.Rows {
	a := sampleAccount()
	a.Role = domain.RolePtr(role)
	a.OnboardingCompleted = true
	bd := time.Date(2000, 5, 17, 0, 0, 0, 0, time.UTC)
	a.BirthDate = &bd
	a.Bio = strPtr("Marathon runner since 2015")
	return accountRow(a)
}

func expectMarkCompleted(mock pgxmock.PgxPoolIface, role domain.Role) {
	mock.ExpectQuery("UPDATE accounts").
		WithArgs(testAccountID, role.String(), time.Date(2000, 5, 17, 0, 0, 0, 0, time.UTC), "Marathon runner since 2015", pgxmock.AnyArg()).
		WillReturnRows(completedRow(role))
}

// ---------------------------------------------------------------------------
// Complete
// ---------------------------------------------------------------------------

func TestOnboardingRepository_Complete_Athlete(t *testing.T) {
	mock := newMockPool(t)
	repo := NewOnboardingRepository(mock)

	mock.ExpectBegin()
	expectMarkCompleted(mock, domain.RoleAthlete)
	mock.ExpectExec("INSERT INTO athlete_profiles").
		WithArgs(pgxmock.AnyArg(), testAccountID, "running", 180, 72, (*string)(nil), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec("INSERT INTO addresses").
		WithArgs(pgxmock.AnyArg(), testAccountID, "Rua das Flores 10", "Recife", "PE", "50000-000", "Brasil", pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	account, err := repo.Complete(context.Background(), testAccountID, athleteSubmission())
	require.NoError(t, err)
	assert.True(t, account.OnboardingCompleted)
	require.NotNil(t, account.Role)
	assert.Equal(t, domain.RoleAthlete, *account.Role)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOnboardingRepository_Complete_Coach(t *testing.T) {
	mock := newMockPool(t)
	repo := NewOnboardingRepository(mock)

	mock.ExpectBegin()
	expectMarkCompleted(mock, domain.RoleCoach)
	mock.ExpectExec("INSERT INTO coach_profiles").
		WithArgs(pgxmock.AnyArg(), testAccountID, "Ten years with sprinters", 120.5, "CREF", pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec("INSERT INTO addresses").
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	_, err := repo.Complete(context.Background(), testAccountID, coachSubmission())
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOnboardingRepository_Complete_AlreadyCompleted(t *testing.T) {
	mock := newMockPool(t)
	repo := NewOnboardingRepository(mock)

	mock.ExpectBegin()
	mock.ExpectQuery("UPDATE accounts").
		WithArgs(testAccountID, "athlete", pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(pgx.ErrNoRows)
	mock.ExpectQuery("SELECT EXISTS").
		WithArgs(testAccountID).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectRollback()

	_, err := repo.Complete(context.Background(), testAccountID, athleteSubmission())
	assert.ErrorIs(t, err, apperrors.ErrConflict)
	assert.Equal(t, 409, apperrors.HTTPStatus(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOnboardingRepository_Complete_MissingAccount(t *testing.T) {
	mock := newMockPool(t)
	repo := NewOnboardingRepository(mock)

	mock.ExpectBegin()
	mock.ExpectQuery("UPDATE accounts").
		WithArgs(testAccountID, "athlete", pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(pgx.ErrNoRows)
	mock.ExpectQuery("SELECT EXISTS").
		WithArgs(testAccountID).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectRollback()

	_, err := repo.Complete(context.Background(), testAccountID, athleteSubmission())
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestOnboardingRepository_Complete_UniqueViolationIsConflict(t *testing.T) {
	mock := newMockPool(t)
	repo := NewOnboardingRepository(mock)

	mock.ExpectBegin()
	expectMarkCompleted(mock, domain.RoleAthlete)
	mock.ExpectExec("INSERT INTO athlete_profiles").
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "athlete_profiles_account_id_key"})
	mock.ExpectRollback()

	_, err := repo.Complete(context.Background(), testAccountID, athleteSubmission())
	assert.ErrorIs(t, err, apperrors.ErrConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOnboardingRepository_Complete_RollsBackOnAddressFailure(t *testing.T) {
	mock := newMockPool(t)
	repo := NewOnboardingRepository(mock)

	mock.ExpectBegin()
	expectMarkCompleted(mock, domain.RoleAthlete)
	mock.ExpectExec("INSERT INTO athlete_profiles").
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec("INSERT INTO addresses").
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(errors.New(`null value in column "street" violates not-null constraint`))
	mock.ExpectRollback()

	_, err := repo.Complete(context.Background(), testAccountID, athleteSubmission())
	require.Error(t, err)
	assert.Equal(t, 500, apperrors.HTTPStatus(err))
	assert.NoError(t, mock.ExpectationsWereMet(), "no commit after a failed insert")
}

func TestOnboardingRepository_Complete_ConnectionLossIsTransient(t *testing.T) {
	mock := newMockPool(t)
	repo := NewOnboardingRepository(mock)

	mock.ExpectBegin().WillReturnError(errors.New("read tcp: connection reset by peer"))

	_, err := repo.Complete(context.Background(), testAccountID, athleteSubmission())
	assert.ErrorIs(t, err, apperrors.ErrTransientStore)
	assert.Equal(t, 503, apperrors.HTTPStatus(err))
}

func TestOnboardingRepository_Complete_DeadlineIsTransient(t *testing.T) {
	mock := newMockPool(t)
	repo := NewOnboardingRepository(mock)

	mock.ExpectBegin()
	expectMarkCompleted(mock, domain.RoleAthlete)
	mock.ExpectExec("INSERT INTO athlete_profiles").
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(context.DeadlineExceeded)
	mock.ExpectRollback()

	_, err := repo.Complete(context.Background(), testAccountID, athleteSubmission())
	assert.ErrorIs(t, err, apperrors.ErrTransientStore)
	assert.Equal(t, 503, apperrors.HTTPStatus(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}
