package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/DaniAlencarrr/Athletix/internal/domain"
	"github.com/DaniAlencarrr/Athletix/pkg/database"
	apperrors "github.com/DaniAlencarrr/Athletix/pkg/errors"
)

const alreadyOnboarded = "onboarding already completed"

// OnboardingRepository implements repository.OnboardingRepository.
type OnboardingRepository struct {
	db database.DBTX
}

// NewOnboardingRepository creates an onboarding repository.
func NewOnboardingRepository(db database.DBTX) *OnboardingRepository {
	return &OnboardingRepository{db: db}
}

// Complete writes the submission atomically. The account update only matches
// rows that have not completed onboarding yet, so of two concurrent
// submissions exactly one commits and the other gets Conflict.
func (r *OnboardingRepository) Complete(ctx context.Context, accountID string, sub domain.Submission) (account *domain.Account, err error) {
	if _, perr := uuid.Parse(accountID); perr != nil {
		return nil, apperrors.NotFound("account", accountID)
	}
	birthDate, err := sub.Base().BirthDateValue()
	if err != nil {
		return nil, apperrors.InvalidInput(err.Error())
	}

	ctx, end := database.TraceQuery(ctx, "CompleteOnboarding", "onboarding transaction")
	defer func() { end(err) }()

	now := time.Now().UTC()
	err = database.InTx(ctx, r.db, func(tx pgx.Tx) error {
		a, err := markCompleted(ctx, tx, accountID, sub, birthDate, now)
		if err != nil {
			return err
		}
		if err := insertProfile(ctx, tx, accountID, sub, now); err != nil {
			return err
		}
		if err := insertAddress(ctx, tx, sub.Base().Address(accountID), now); err != nil {
			return err
		}
		account = a
		return nil
	})
	if err != nil {
		return nil, translateTxError(err)
	}
	return account, nil
}

func markCompleted(ctx context.Context, tx pgx.Tx, accountID string, sub domain.Submission, birthDate, now time.Time) (*domain.Account, error) {
	query := `
		UPDATE accounts
		SET role = $2::account_role, birth_date = $3, bio = $4, onboarding_completed = TRUE, updated_at = $5
		WHERE id = $1 AND onboarding_completed = FALSE
		RETURNING ` + accountColumns

	a, err := scanAccount(tx.QueryRow(ctx, query, accountID, sub.Role().String(), birthDate, sub.Base().Bio, now))
	if err == nil {
		return a, nil
	}
	if !isNoRows(err) {
		return nil, fmt.Errorf("mark onboarding completed: %w", err)
	}

	var exists bool
	if err := tx.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM accounts WHERE id = $1)`, accountID).Scan(&exists); err != nil {
		return nil, fmt.Errorf("check account: %w", err)
	}
	if !exists {
		return nil, apperrors.NotFound("account", accountID)
	}
	return nil, apperrors.Conflict(alreadyOnboarded)
}

func insertProfile(ctx context.Context, tx pgx.Tx, accountID string, sub domain.Submission, now time.Time) error {
	switch s := sub.(type) {
	case *domain.CoachSubmission:
		p := s.Profile(accountID)
		_, err := tx.Exec(ctx, `
			INSERT INTO coach_profiles (id, account_id, experience, hourly_rate, certifications, created_at)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			uuid.NewString(), p.AccountID, p.Experience, p.HourlyRate, p.Certifications, now)
		if err != nil {
			return fmt.Errorf("insert coach profile: %w", err)
		}
	case *domain.AthleteSubmission:
		p := s.Profile(accountID)
		_, err := tx.Exec(ctx, `
			INSERT INTO athlete_profiles (id, account_id, sport, height_cm, weight_kg, injury_history, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			uuid.NewString(), p.AccountID, p.Sport, p.HeightCM, p.WeightKG, p.InjuryHistory, now)
		if err != nil {
			return fmt.Errorf("insert athlete profile: %w", err)
		}
	default:
		return fmt.Errorf("unsupported submission type %T", sub)
	}
	return nil
}

func insertAddress(ctx context.Context, tx pgx.Tx, a domain.Address, now time.Time) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO addresses (id, account_id, street, city, state, zip_code, country, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		uuid.NewString(), a.AccountID, a.Street, a.City, a.State, a.ZipCode, a.Country, now)
	if err != nil {
		return fmt.Errorf("insert address: %w", err)
	}
	return nil
}

// translateTxError maps a failed transaction to the error kinds callers act
// on. AppErrors raised inside the transaction pass through.
func translateTxError(err error) error {
	var appErr *apperrors.AppError
	switch {
	case errors.As(err, &appErr):
		return err
	case database.IsUniqueViolation(err):
		return apperrors.Conflict(alreadyOnboarded)
	default:
		return storeError("complete onboarding", err)
	}
}
