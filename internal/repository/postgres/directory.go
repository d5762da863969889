package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/DaniAlencarrr/Athletix/internal/domain"
	"github.com/DaniAlencarrr/Athletix/pkg/database"
	apperrors "github.com/DaniAlencarrr/Athletix/pkg/errors"
	"github.com/DaniAlencarrr/Athletix/pkg/pagination"
	"github.com/DaniAlencarrr/Athletix/pkg/slug"
)

const (
	coachDirectoryQuery = `
		SELECT a.id, a.name, a.bio, a.created_at,
		       p.id, p.experience, p.hourly_rate, p.certifications, p.created_at,
		       ad.id, ad.street, ad.city, ad.state, ad.zip_code, ad.country, ad.created_at
		FROM accounts a
		JOIN coach_profiles p ON p.account_id = a.id
		JOIN addresses ad ON ad.account_id = a.id
		WHERE a.role = 'coach' AND a.onboarding_completed`

	athleteDirectoryQuery = `
		SELECT a.id, a.name, a.bio, a.created_at,
		       p.id, p.sport, p.height_cm, p.weight_kg, p.injury_history, p.created_at,
		       ad.id, ad.street, ad.city, ad.state, ad.zip_code, ad.country, ad.created_at
		FROM accounts a
		JOIN athlete_profiles p ON p.account_id = a.id
		JOIN addresses ad ON ad.account_id = a.id
		WHERE a.role = 'athlete' AND a.onboarding_completed`

	countDirectoryQuery = `
		SELECT COUNT(*) FROM accounts
		WHERE role = $1::account_role AND onboarding_completed`
)

// DirectoryRepository implements repository.DirectoryRepository.
type DirectoryRepository struct {
	db database.DBTX
}

// NewDirectoryRepository creates a directory repository.
func NewDirectoryRepository(db database.DBTX) *DirectoryRepository {
	return &DirectoryRepository{db: db}
}

// List returns one page of the directory for role.
func (r *DirectoryRepository) List(ctx context.Context, role domain.Role, page pagination.Params) (entries []domain.DirectoryEntry, total int, err error) {
	base, err := directoryQuery(role)
	if err != nil {
		return nil, 0, err
	}

	ctx, end := database.TraceQuery(ctx, "ListDirectory", base)
	defer func() { end(err) }()

	if err = r.db.QueryRow(ctx, countDirectoryQuery, role.String()).Scan(&total); err != nil {
		return nil, 0, storeError("count directory", err)
	}
	if total == 0 {
		return nil, 0, nil
	}

	rows, err := r.db.Query(ctx, base+` ORDER BY a.name ASC, a.id ASC LIMIT $1 OFFSET $2`, page.PerPage, page.Offset())
	if err != nil {
		return nil, 0, storeError("list directory", err)
	}
	defer rows.Close()

	for rows.Next() {
		e, err := scanEntry(rows, role)
		if err != nil {
			return nil, 0, storeError("scan directory entry", err)
		}
		entries = append(entries, *e)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, storeError("iterate directory", err)
	}
	return entries, total, nil
}

// FindByName matches phrase against accent-folded names, case-insensitively.
func (r *DirectoryRepository) FindByName(ctx context.Context, role domain.Role, phrase string) (e *domain.DirectoryEntry, err error) {
	base, err := directoryQuery(role)
	if err != nil {
		return nil, err
	}
	query := base + ` AND unaccent(a.name) ILIKE $1 ORDER BY a.name ASC, a.id ASC LIMIT 1`

	ctx, end := database.TraceQuery(ctx, "FindDirectoryEntry", query)
	defer func() { end(err) }()

	e, err = scanEntry(r.db.QueryRow(ctx, query, "%"+escapeLike(phrase)+"%"), role)
	if err != nil {
		if isNoRows(err) {
			return nil, apperrors.NotFound(role.String(), phrase)
		}
		return nil, storeError("find directory entry", err)
	}
	return e, nil
}

func directoryQuery(role domain.Role) (string, error) {
	switch role {
	case domain.RoleCoach:
		return coachDirectoryQuery, nil
	case domain.RoleAthlete:
		return athleteDirectoryQuery, nil
	default:
		return "", fmt.Errorf("unknown role %q", role)
	}
}

func scanEntry(row pgx.Row, role domain.Role) (*domain.DirectoryEntry, error) {
	e := domain.DirectoryEntry{Role: role, Address: &domain.Address{}}
	head := []any{&e.ID, &e.Name, &e.Bio, &e.CreatedAt}
	addr := []any{&e.Address.ID, &e.Address.Street, &e.Address.City, &e.Address.State,
		&e.Address.ZipCode, &e.Address.Country, &e.Address.CreatedAt}

	var profile []any
	switch role {
	case domain.RoleCoach:
		e.Coach = &domain.CoachProfile{}
		c := e.Coach
		profile = []any{&c.ID, &c.Experience, &c.HourlyRate, &c.Certifications, &c.CreatedAt}
	case domain.RoleAthlete:
		e.Athlete = &domain.AthleteProfile{}
		a := e.Athlete
		profile = []any{&a.ID, &a.Sport, &a.HeightCM, &a.WeightKG, &a.InjuryHistory, &a.CreatedAt}
	}

	dest := append(append(head, profile...), addr...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}

	e.Slug = slug.Generate(e.Name)
	if e.Coach != nil {
		e.Coach.AccountID = e.ID
	}
	if e.Athlete != nil {
		e.Athlete.AccountID = e.ID
	}
	e.Address.AccountID = e.ID
	return &e, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
