package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/DaniAlencarrr/Athletix/internal/domain"
	"github.com/DaniAlencarrr/Athletix/pkg/database"
	apperrors "github.com/DaniAlencarrr/Athletix/pkg/errors"
)

const accountColumns = `id, name, email, password, role::text, onboarding_completed, birth_date, bio, created_at, updated_at`

// AccountRepository implements repository.AccountRepository on PostgreSQL.
type AccountRepository struct {
	db database.DBTX
}

// NewAccountRepository creates an account repository.
func NewAccountRepository(db database.DBTX) *AccountRepository {
	return &AccountRepository{db: db}
}

// Create inserts a new account. ID and timestamps are filled in when empty.
func (r *AccountRepository) Create(ctx context.Context, a *domain.Account) (err error) {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	a.CreatedAt, a.UpdatedAt = now, now

	query := `
		INSERT INTO accounts (id, name, email, password, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	ctx, end := database.TraceQuery(ctx, "CreateAccount", query)
	defer func() { end(err) }()

	var password *string
	if a.Password != "" {
		password = &a.Password
	}

	if _, err = r.db.Exec(ctx, query, a.ID, a.Name, a.Email, password, a.CreatedAt, a.UpdatedAt); err != nil {
		if database.IsUniqueViolation(err) {
			return apperrors.AlreadyExists("account", "email", a.Email)
		}
		return storeError("insert account", err)
	}
	return nil
}

// GetByID returns the account with the given ID.
func (r *AccountRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, apperrors.NotFound("account", id)
	}
	return r.getOne(ctx, "GetAccountByID", `SELECT `+accountColumns+` FROM accounts WHERE id = $1`, id)
}

// GetByEmail returns the account registered with email.
func (r *AccountRepository) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	return r.getOne(ctx, "GetAccountByEmail", `SELECT `+accountColumns+` FROM accounts WHERE email = $1`, email)
}

// GetStatus returns the onboarding state of an account.
func (r *AccountRepository) GetStatus(ctx context.Context, id string) (st *domain.OnboardingStatus, err error) {
	if _, perr := uuid.Parse(id); perr != nil {
		return nil, apperrors.NotFound("account", id)
	}

	query := `SELECT id, role::text, onboarding_completed FROM accounts WHERE id = $1`
	ctx, end := database.TraceQuery(ctx, "GetOnboardingStatus", query)
	defer func() { end(err) }()

	var (
		s    domain.OnboardingStatus
		role *string
	)
	if err = r.db.QueryRow(ctx, query, id).Scan(&s.AccountID, &role, &s.Completed); err != nil {
		if isNoRows(err) {
			return nil, apperrors.NotFound("account", id)
		}
		return nil, storeError("get onboarding status", err)
	}
	s.Role = toRole(role)
	return &s, nil
}

// UpdatePassword replaces the stored credential.
func (r *AccountRepository) UpdatePassword(ctx context.Context, id, hash string) (err error) {
	query := `UPDATE accounts SET password = $1, updated_at = $2 WHERE id = $3`
	ctx, end := database.TraceQuery(ctx, "UpdateAccountPassword", query)
	defer func() { end(err) }()

	ct, err := r.db.Exec(ctx, query, hash, time.Now().UTC(), id)
	if err != nil {
		return storeError("update password", err)
	}
	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("account", id)
	}
	return nil
}

func (r *AccountRepository) getOne(ctx context.Context, op, query string, arg any) (a *domain.Account, err error) {
	ctx, end := database.TraceQuery(ctx, op, query)
	defer func() { end(err) }()

	a, err = scanAccount(r.db.QueryRow(ctx, query, arg))
	if err != nil {
		if isNoRows(err) {
			return nil, apperrors.NotFound("account", "")
		}
		return nil, storeError("get account", err)
	}
	return a, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (*domain.Account, error) {
	var (
		a        domain.Account
		password *string
		role     *string
	)
	if err := row.Scan(
		&a.ID,
		&a.Name,
		&a.Email,
		&password,
		&role,
		&a.OnboardingCompleted,
		&a.BirthDate,
		&a.Bio,
		&a.CreatedAt,
		&a.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if password != nil {
		a.Password = *password
	}
	a.Role = toRole(role)
	return &a, nil
}

func toRole(s *string) *domain.Role {
	if s == nil {
		return nil
	}
	r, ok := domain.ParseRole(*s)
	if !ok {
		return nil
	}
	return &r
}
