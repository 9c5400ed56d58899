package models

import (
	"fmt"
	"time"
)

// Bounds for the numeric preference fields.
const (
	MinStudyBlockMinutes = 30
	MaxStudyBlockMinutes = 180
	MinBreakMinutes      = 5
	MaxBreakMinutes      = 30
)

// MemoryPrefs holds per-user scheduling preferences. There is one record per
// user id; saving overwrites it.
type MemoryPrefs struct {
	UserID            string  `json:"user_id" yaml:"user_id" toml:"user_id"`
	SleepStart        string  `json:"sleep_start" yaml:"sleep_start" toml:"sleep_start"`
	SleepEnd          string  `json:"sleep_end" yaml:"sleep_end" toml:"sleep_end"`
	BreakMinutes      int     `json:"break_minutes" yaml:"break_minutes" toml:"break_minutes"`
	StudyBlockMinutes int     `json:"study_block_minutes" yaml:"study_block_minutes" toml:"study_block_minutes"`
	Dietary           *string `json:"dietary" yaml:"dietary" toml:"dietary,omitempty"`
}

// DefaultMemoryPrefs returns the preferences used until the server answers.
func DefaultMemoryPrefs(userID string) MemoryPrefs {
	return MemoryPrefs{
		UserID:            userID,
		SleepStart:        "23:00",
		SleepEnd:          "07:00",
		BreakMinutes:      15,
		StudyBlockMinutes: 90,
	}
}

// DietaryString returns the dietary preference or "" when unset.
func (p MemoryPrefs) DietaryString() string {
	if p.Dietary == nil {
		return ""
	}
	return *p.Dietary
}

// SetDietary sets the dietary preference. An empty string clears it.
func (p *MemoryPrefs) SetDietary(s string) {
	if s == "" {
		p.Dietary = nil
		return
	}
	p.Dietary = &s
}

// Equal reports whether two preference records hold the same values.
func (p MemoryPrefs) Equal(o MemoryPrefs) bool {
	return p.UserID == o.UserID &&
		p.SleepStart == o.SleepStart &&
		p.SleepEnd == o.SleepEnd &&
		p.BreakMinutes == o.BreakMinutes &&
		p.StudyBlockMinutes == o.StudyBlockMinutes &&
		p.DietaryString() == o.DietaryString()
}

// Validate checks the clock fields and numeric bounds.
func (p MemoryPrefs) Validate() error {
	if p.UserID == "" {
		return fmt.Errorf("user_id is required")
	}
	if _, err := time.Parse("15:04", p.SleepStart); err != nil {
		return fmt.Errorf("sleep_start must be HH:MM: %q", p.SleepStart)
	}
	if _, err := time.Parse("15:04", p.SleepEnd); err != nil {
		return fmt.Errorf("sleep_end must be HH:MM: %q", p.SleepEnd)
	}
	if p.StudyBlockMinutes < MinStudyBlockMinutes || p.StudyBlockMinutes > MaxStudyBlockMinutes {
		return fmt.Errorf("study_block_minutes must be between %d and %d, got %d",
			MinStudyBlockMinutes, MaxStudyBlockMinutes, p.StudyBlockMinutes)
	}
	if p.BreakMinutes < MinBreakMinutes || p.BreakMinutes > MaxBreakMinutes {
		return fmt.Errorf("break_minutes must be between %d and %d, got %d",
			MinBreakMinutes, MaxBreakMinutes, p.BreakMinutes)
	}
	return nil
}
