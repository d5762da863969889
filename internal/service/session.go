package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/DaniAlencarrr/Athletix/internal/auth"
	"github.com/DaniAlencarrr/Athletix/internal/domain"
	"github.com/DaniAlencarrr/Athletix/internal/event"
	"github.com/DaniAlencarrr/Athletix/internal/repository"
	apperrors "github.com/DaniAlencarrr/Athletix/pkg/errors"
	"github.com/DaniAlencarrr/Athletix/pkg/validator"
)

// RegisterInput holds the parameters for creating an account.
type RegisterInput struct {
	Name     string `json:"name" validate:"required,min=1,max=120"`
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// LoginInput holds an email and password pair.
type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Session is a signed token together with the account it was issued for.
type Session struct {
	Account   *domain.Account `json:"account"`
	Token     string          `json:"token"`
	ExpiresAt time.Time       `json:"expires_at"`
	Claims    *auth.Claims    `json:"-"`
}

// SessionService implements registration, login and session token
// enrichment.
type SessionService struct {
	accounts repository.AccountRepository
	verifier *auth.Verifier
	tokens   *auth.TokenManager
	producer *event.Producer
	logger   *slog.Logger
}

// NewSessionService creates a session service.
func NewSessionService(
	accounts repository.AccountRepository,
	verifier *auth.Verifier,
	tokens *auth.TokenManager,
	producer *event.Producer,
	logger *slog.Logger,
) *SessionService {
	return &SessionService{
		accounts: accounts,
		verifier: verifier,
		tokens:   tokens,
		producer: producer,
		logger:   logger,
	}
}

// Register creates an account without a role and signs a session for it.
func (s *SessionService) Register(ctx context.Context, input RegisterInput) (*Session, error) {
	input.Email = domain.NormalizeEmail(input.Email)
	if err := validator.Validate(input); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	account := &domain.Account{
		Name:     input.Name,
		Email:    input.Email,
		Password: hash,
	}
	if err := s.accounts.Create(ctx, account); err != nil {
		return nil, err
	}

	if err := s.producer.PublishAccountRegistered(ctx, account); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish account.registered event",
			slog.String("account_id", account.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "account registered", slog.String("account_id", account.ID))

	return s.Issue(account)
}

// Login verifies the credentials and signs a session. Unknown emails,
// missing credentials and wrong passwords all yield the same
// InvalidCredentials error.
func (s *SessionService) Login(ctx context.Context, input LoginInput) (*Session, error) {
	input.Email = domain.NormalizeEmail(input.Email)
	if err := validator.Validate(input); err != nil {
		return nil, apperrors.InvalidCredentials()
	}

	res, err := s.verifier.Check(ctx, input.Email, input.Password)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) || errors.Is(err, apperrors.ErrInvalidCredentials) {
			s.logger.InfoContext(ctx, "login rejected")
			return nil, apperrors.InvalidCredentials()
		}
		return nil, err
	}

	if res.Legacy {
		s.upgradeCredential(ctx, res.Account.ID, input.Password)
	}

	s.logger.InfoContext(ctx, "account logged in", slog.String("account_id", res.Account.ID))

	return s.Issue(res.Account)
}

// upgradeCredential replaces a legacy credential with a bcrypt hash. Failure
// leaves the legacy value in place for the next login.
func (s *SessionService) upgradeCredential(ctx context.Context, accountID, password string) {
	hash, err := auth.HashPassword(password)
	if err == nil {
		err = s.accounts.UpdatePassword(ctx, accountID, hash)
	}
	if err != nil {
		s.logger.WarnContext(ctx, "legacy credential upgrade failed",
			slog.String("account_id", accountID),
			slog.String("error", err.Error()),
		)
		return
	}
	s.logger.InfoContext(ctx, "legacy credential upgraded", slog.String("account_id", accountID))
}

// Issue signs a fresh session for the account.
func (s *SessionService) Issue(account *domain.Account) (*Session, error) {
	token, claims, err := s.tokens.Issue(account)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return &Session{
		Account:   account.Public(),
		Token:     token,
		ExpiresAt: claims.ExpiresAt.Time,
		Claims:    claims,
	}, nil
}

// Authenticate parses a session token.
func (s *SessionService) Authenticate(token string) (*auth.Claims, error) {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return nil, apperrors.Unauthorized("invalid or expired session")
	}
	return claims, nil
}

// Enrich back-fills the role and onboarding flags when either is missing.
// changed is true when the returned claims differ from the input and a new
// token should be issued. When the account no longer exists the claims are
// returned unchanged and without error.
func (s *SessionService) Enrich(ctx context.Context, claims *auth.Claims) (enriched *auth.Claims, changed bool, err error) {
	if claims.Enriched() {
		return claims, false, nil
	}

	account, err := s.accounts.GetByID(ctx, claims.AccountID())
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			s.logger.WarnContext(ctx, "session subject no longer exists",
				slog.String("account_id", claims.AccountID()),
			)
			return claims, false, nil
		}
		return claims, false, fmt.Errorf("enrich session: %w", err)
	}

	next := *claims
	next.Apply(account)
	return &next, !sameFlags(claims, &next), nil
}

// Update re-fetches the account and re-issues its session regardless of the
// flags currently carried.
func (s *SessionService) Update(ctx context.Context, accountID string) (*Session, error) {
	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	return s.Issue(account)
}

// Resign signs claims again with a fresh expiry.
func (s *SessionService) Resign(claims *auth.Claims) (string, error) {
	token, err := s.tokens.Sign(claims)
	if err != nil {
		return "", apperrors.Internal(err)
	}
	return token, nil
}

// TTL is the lifetime of issued sessions.
func (s *SessionService) TTL() time.Duration {
	return s.tokens.TTL()
}

func sameFlags(a, b *auth.Claims) bool {
	sameRole := (a.Role == nil && b.Role == nil) || (a.Role != nil && b.Role != nil && *a.Role == *b.Role)
	sameDone := (a.OnboardingCompleted == nil && b.OnboardingCompleted == nil) ||
		(a.OnboardingCompleted != nil && b.OnboardingCompleted != nil && *a.OnboardingCompleted == *b.OnboardingCompleted)
	return sameRole && sameDone
}
