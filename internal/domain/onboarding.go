package domain

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/DaniAlencarrr/Athletix/pkg/validator"
)

// MinimumAge is the youngest age, in years, allowed to onboard.
const MinimumAge = 13

// Submission is a completed onboarding form. It is either a
// *CoachSubmission or an *AthleteSubmission.
type Submission interface {
	Role() Role
	Base() *OnboardingBase
	submission()
}

// OnboardingBase holds the answers shared by both roles.
type OnboardingBase struct {
	BirthDate string `json:"birthDate" validate:"required,isodate,notfuture,minage=13"`
	Bio       string `json:"bio" validate:"required,min=10"`
	Street    string `json:"street" validate:"required"`
	City      string `json:"city" validate:"required"`
	State     string `json:"state" validate:"required"`
	ZipCode   string `json:"zipCode" validate:"required,min=8"`
	Country   string `json:"country" validate:"required"`
}

// BirthDateValue parses BirthDate as a calendar date.
func (b *OnboardingBase) BirthDateValue() (time.Time, error) {
	return validator.ParseDate(b.BirthDate)
}

// Address builds the address row for accountID.
func (b *OnboardingBase) Address(accountID string) Address {
	return Address{
		AccountID: accountID,
		Street:    strings.TrimSpace(b.Street),
		City:      strings.TrimSpace(b.City),
		State:     strings.TrimSpace(b.State),
		ZipCode:   strings.TrimSpace(b.ZipCode),
		Country:   strings.TrimSpace(b.Country),
	}
}

// CoachSubmission is the coach variant.
type CoachSubmission struct {
	OnboardingBase
	Experience     string   `json:"experience" validate:"required,min=10"`
	HourlyRate     *float64 `json:"hourlyRate" validate:"required,gte=0"`
	Certifications string   `json:"certifications" validate:"required"`
}

func (s *CoachSubmission) Role() Role            { return RoleCoach }
func (s *CoachSubmission) Base() *OnboardingBase { return &s.OnboardingBase }
func (*CoachSubmission) submission()             {}

// Profile builds the coach profile row for accountID.
func (s *CoachSubmission) Profile(accountID string) CoachProfile {
	rate := 0.0
	if s.HourlyRate != nil {
		rate = math.Round(*s.HourlyRate*100) / 100
	}
	return CoachProfile{
		AccountID:      accountID,
		Experience:     strings.TrimSpace(s.Experience),
		HourlyRate:     rate,
		Certifications: strings.TrimSpace(s.Certifications),
	}
}

// AthleteSubmission is the athlete variant. Height is in centimetres and
// weight in kilograms.
type AthleteSubmission struct {
	OnboardingBase
	Sport         string   `json:"sport" validate:"required"`
	Height        *float64 `json:"height" validate:"required,min=100,max=250"`
	Weight        *float64 `json:"weight" validate:"required,min=30,max=300"`
	InjuryHistory *string  `json:"injuryHistory,omitempty"`
}

func (s *AthleteSubmission) Role() Role            { return RoleAthlete }
func (s *AthleteSubmission) Base() *OnboardingBase { return &s.OnboardingBase }
func (*AthleteSubmission) submission()             {}

// Profile builds the athlete profile row for accountID. An empty injury
// history is stored as NULL.
func (s *AthleteSubmission) Profile(accountID string) AthleteProfile {
	p := AthleteProfile{AccountID: accountID, Sport: strings.TrimSpace(s.Sport)}
	if s.Height != nil {
		p.HeightCM = int(math.Round(*s.Height))
	}
	if s.Weight != nil {
		p.WeightKG = int(math.Round(*s.Weight))
	}
	if s.InjuryHistory != nil {
		if h := strings.TrimSpace(*s.InjuryHistory); h != "" {
			p.InjuryHistory = &h
		}
	}
	return p
}

// SubmissionEnvelope carries the discriminator of a raw submission.
type SubmissionEnvelope struct {
	UserType string `json:"userType"`
}

// DecodeSubmission selects the variant named by userType and decodes raw
// into it. An unknown or missing tag is a field error on userType; malformed
// JSON is returned as a plain decoding error.
func DecodeSubmission(raw []byte) (Submission, error) {
	var env SubmissionEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("decode submission: %w", err)
	}

	var sub Submission
	switch Role(env.UserType) {
	case RoleCoach:
		sub = &CoachSubmission{}
	case RoleAthlete:
		sub = &AthleteSubmission{}
	default:
		return nil, validator.NewFieldError("userType", "must be one of: coach athlete")
	}

	if err := json.Unmarshal(raw, sub); err != nil {
		return nil, fmt.Errorf("decode %s submission: %w", env.UserType, err)
	}
	return sub, nil
}

// ValidateSubmission checks every field of the submission.
func ValidateSubmission(sub Submission) error {
	return validator.Validate(sub)
}
