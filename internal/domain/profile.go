package domain

import "time"

// Address is the single postal address stored per onboarded account.
type Address struct {
	ID        string    `json:"id"`
	AccountID string    `json:"account_id"`
	Street    string    `json:"street"`
	City      string    `json:"city"`
	State     string    `json:"state"`
	ZipCode   string    `json:"zip_code"`
	Country   string    `json:"country"`
	CreatedAt time.Time `json:"created_at"`
}

// CoachProfile holds the coach-specific onboarding answers.
type CoachProfile struct {
	ID             string    `json:"id"`
	AccountID      string    `json:"account_id"`
	Experience     string    `json:"experience"`
	HourlyRate     float64   `json:"hourly_rate"`
	Certifications string    `json:"certifications"`
	CreatedAt      time.Time `json:"created_at"`
}

// AthleteProfile holds the athlete-specific onboarding answers.
type AthleteProfile struct {
	ID            string    `json:"id"`
	AccountID     string    `json:"account_id"`
	Sport         string    `json:"sport"`
	HeightCM      int       `json:"height_cm"`
	WeightKG      int       `json:"weight_kg"`
	InjuryHistory *string   `json:"injury_history,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// DirectoryEntry is a publicly listed coach or athlete. Exactly one of Coach
// and Athlete is set, matching Role.
type DirectoryEntry struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Slug      string          `json:"slug"`
	Role      Role            `json:"role"`
	Bio       *string         `json:"bio,omitempty"`
	Coach     *CoachProfile   `json:"coach,omitempty"`
	Athlete   *AthleteProfile `json:"athlete,omitempty"`
	Address   *Address        `json:"address,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}
