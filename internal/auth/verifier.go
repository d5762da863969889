package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/DaniAlencarrr/Athletix/internal/domain"
	apperrors "github.com/DaniAlencarrr/Athletix/pkg/errors"
)

// BcryptCost is the work factor for new password hashes.
const BcryptCost = 12

// dummyHash is compared against when no account matches so unknown emails
// take as long as wrong passwords.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("athletix-timing-equaliser"), BcryptCost)

// AccountFinder looks accounts up by normalised email.
type AccountFinder interface {
	GetByEmail(ctx context.Context, email string) (*domain.Account, error)
}

// Verification is the outcome of a successful credential check.
type Verification struct {
	// Account has its credential cleared.
	Account *domain.Account
	// Legacy is set when the stored credential should be re-hashed.
	Legacy bool
}

// Verifier checks email and password pairs against stored credentials.
type Verifier struct {
	accounts AccountFinder
	legacy   *LegacyCipher
	logger   *slog.Logger
}

// NewVerifier creates a verifier. legacy may be nil.
func NewVerifier(accounts AccountFinder, legacy *LegacyCipher, logger *slog.Logger) *Verifier {
	return &Verifier{accounts: accounts, legacy: legacy, logger: logger}
}

// Verify authenticates the pair. It returns ErrNotFound when the email is
// unknown or has no credential, and ErrInvalidCredentials on a mismatch.
func (v *Verifier) Verify(ctx context.Context, email, password string) (*domain.Account, error) {
	res, err := v.Check(ctx, email, password)
	if err != nil {
		return nil, err
	}
	return res.Account, nil
}

// Check is Verify plus whether the stored credential is in the legacy format.
func (v *Verifier) Check(ctx context.Context, email, password string) (*Verification, error) {
	email = domain.NormalizeEmail(email)

	account, err := v.accounts.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		}
		return nil, err
	}
	if !account.HasCredential() {
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		return nil, fmt.Errorf("account %s has no credential: %w", account.ID, apperrors.ErrNotFound)
	}

	legacy := IsLegacy(account.Password)
	if !v.matches(ctx, account, password) {
		return nil, apperrors.InvalidCredentials()
	}

	return &Verification{Account: account.Public(), Legacy: legacy}, nil
}

func (v *Verifier) matches(ctx context.Context, account *domain.Account, password string) bool {
	stored := account.Password
	switch {
	case isBcrypt(stored):
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(password)) == nil
	case IsLegacy(stored):
		plain, err := v.legacy.Decrypt(stored)
		if err != nil {
			v.logger.WarnContext(ctx, "legacy credential unreadable",
				slog.String("account_id", account.ID),
				slog.String("reason", err.Error()),
			)
			return false
		}
		return subtle.ConstantTimeCompare([]byte(plain), []byte(password)) == 1
	default:
		return false
	}
}

func isBcrypt(stored string) bool {
	return strings.HasPrefix(stored, "$2a$") ||
		strings.HasPrefix(stored, "$2b$") ||
		strings.HasPrefix(stored, "$2y$")
}

// HashPassword hashes password with bcrypt at BcryptCost.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}
