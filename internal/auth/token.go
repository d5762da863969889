package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/DaniAlencarrr/Athletix/internal/domain"
)

// ErrInvalidToken is returned for any token that fails parsing or
// verification.
var ErrInvalidToken = errors.New("invalid session token")

// Claims is the payload of a session token. Role and OnboardingCompleted are
// nil when unknown; an explicit JSON null decodes the same way.
type Claims struct {
	Email               string       `json:"email"`
	Name                string       `json:"name"`
	Role                *domain.Role `json:"role"`
	OnboardingCompleted *bool        `json:"onboarding_completed"`
	jwt.RegisteredClaims
}

// AccountID returns the subject.
func (c *Claims) AccountID() string {
	return c.Subject
}

// Enriched reports whether both onboarding flags are present.
func (c *Claims) Enriched() bool {
	return c.Role != nil && c.OnboardingCompleted != nil
}

// Apply copies the account's identity and onboarding state into c. A missing
// role stays nil.
func (c *Claims) Apply(a *domain.Account) {
	c.Subject = a.ID
	c.Email = a.Email
	c.Name = a.Name
	c.Role = nil
	if a.Role != nil {
		r := *a.Role
		c.Role = &r
	}
	completed := a.OnboardingCompleted
	c.OnboardingCompleted = &completed
}

// TokenManager signs and verifies HS256 session tokens.
type TokenManager struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenManager creates a manager signing with secret.
func NewTokenManager(secret, issuer string, ttl time.Duration) *TokenManager {
	return &TokenManager{
		secret: []byte(secret),
		issuer: issuer,
		ttl:    ttl,
		now:    time.Now,
	}
}

// TTL is the lifetime of issued tokens.
func (m *TokenManager) TTL() time.Duration {
	return m.ttl
}

// Issue builds claims from the account and signs them.
func (m *TokenManager) Issue(a *domain.Account) (string, *Claims, error) {
	claims := &Claims{}
	claims.Apply(a)
	token, err := m.Sign(claims)
	if err != nil {
		return "", nil, err
	}
	return token, claims, nil
}

// Sign stamps claims with a fresh issue time, expiry and ID, then signs
// them.
func (m *TokenManager) Sign(claims *Claims) (string, error) {
	now := m.now().UTC()
	claims.Issuer = m.issuer
	claims.IssuedAt = jwt.NewNumericDate(now)
	claims.NotBefore = nil
	claims.ExpiresAt = jwt.NewNumericDate(now.Add(m.ttl))

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return signed, nil
}

// Parse verifies the signature, algorithm, issuer and expiry of token.
func (m *TokenManager) Parse(token string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(m.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if !parsed.Valid || claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
