package models

import (
	"time"

	"github.com/pokrok-app/pokrok/internal/constants"
)

// Habit represents a recurring practice to track
type Habit struct {
	ID           string              `json:"id"`
	Name         string              `json:"name"`
	Frequency    constants.Frequency `json:"frequency"`
	SelectedDays DayTokens           `json:"selected_days"`
	AlwaysShow   bool                `json:"always_show"`
	StartDate    string              `json:"start_date,omitempty"` // YYYY-MM-DD format
	XPReward     int                 `json:"xp_reward,omitempty"`
	Completions  map[string]bool     `json:"habit_completions,omitempty"` // keyed by YYYY-MM-DD
	CreatedAt    time.Time           `json:"created_at"`
	ArchivedAt   *time.Time          `json:"archived_at,omitempty"`
	DeletedAt    *time.Time          `json:"deleted_at,omitempty"`
}

// Schedule returns the recurrence view of the habit.
func (h Habit) Schedule() Schedule {
	return Schedule{
		Frequency:    h.Frequency.Normalized(),
		SelectedDays: h.SelectedDays,
		StartDate:    h.StartDate,
		CreatedAt:    h.CreatedAt,
	}
}

// CompletedOn reports whether the habit is marked complete for the date key.
func (h Habit) CompletedOn(day string) bool {
	return h.Completions[day]
}

// Active reports whether the habit is neither archived nor deleted.
func (h Habit) Active() bool {
	return h.ArchivedAt == nil && h.DeletedAt == nil
}

// HabitCompletion is a single day's completion record as stored
type HabitCompletion struct {
	HabitID     string    `json:"habit_id"`
	Day         string    `json:"day"` // YYYY-MM-DD format
	CompletedAt time.Time `json:"completed_at"`
}
