package domain

import (
	"strings"
	"time"
)

// Role distinguishes the two kinds of account. An account has no role until
// onboarding completes.
type Role string

const (
	RoleCoach   Role = "coach"
	RoleAthlete Role = "athlete"
)

// ValidRoles returns every assignable role.
func ValidRoles() []Role {
	return []Role{RoleCoach, RoleAthlete}
}

// ParseRole converts s to a Role.
func ParseRole(s string) (Role, bool) {
	switch r := Role(strings.ToLower(strings.TrimSpace(s))); r {
	case RoleCoach, RoleAthlete:
		return r, true
	}
	return "", false
}

func (r Role) String() string { return string(r) }

// RolePtr returns a pointer to r.
func RolePtr(r Role) *Role { return &r }

// Account is a registered person. Password holds the stored credential and
// never leaves the service.
type Account struct {
	ID                  string     `json:"id"`
	Name                string     `json:"name"`
	Email               string     `json:"email"`
	Password            string     `json:"-"`
	Role                *Role      `json:"role"`
	OnboardingCompleted bool       `json:"onboarding_completed"`
	BirthDate           *time.Time `json:"birth_date,omitempty"`
	Bio                 *string    `json:"bio,omitempty"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

// HasCredential reports whether the account can log in with a password.
func (a *Account) HasCredential() bool {
	return a.Password != ""
}

// Public returns a copy of the account with the credential cleared.
func (a *Account) Public() *Account {
	c := *a
	c.Password = ""
	return &c
}

// NormalizeEmail lower-cases and trims an address so lookups are exact.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// OnboardingStatus is the subset of an account the access gate needs.
type OnboardingStatus struct {
	AccountID string `json:"account_id"`
	Role      *Role  `json:"role"`
	Completed bool   `json:"completed"`
}

// Status projects the account's onboarding state.
func (a *Account) Status() OnboardingStatus {
	return OnboardingStatus{AccountID: a.ID, Role: a.Role, Completed: a.OnboardingCompleted}
}
