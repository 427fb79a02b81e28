package models

import (
	"time"

	"github.com/pokrok-app/pokrok/internal/constants"
)

// Step is a discrete task with an optional due date. A step with a frequency repeats.
type Step struct {
	ID            string              `json:"id"`
	Title         string              `json:"title"`
	Date          string              `json:"date,omitempty"` // YYYY-MM-DD format
	Completed     bool                `json:"completed"`
	CompletedAt   *time.Time          `json:"completed_at,omitempty"`
	Frequency     constants.Frequency `json:"frequency,omitempty"`
	SelectedDays  DayTokens           `json:"selected_days,omitempty"`
	GoalID        string              `json:"goal_id,omitempty"`
	IsImportant   bool                `json:"is_important"`
	IsUrgent      bool                `json:"is_urgent"`
	EstimatedTime int                 `json:"estimated_time,omitempty"` // minutes
	CreatedAt     time.Time           `json:"created_at"`
	DeletedAt     *time.Time          `json:"deleted_at,omitempty"`
}

// Repeating reports whether the step recurs.
func (s Step) Repeating() bool {
	return s.Frequency.Normalized() != ""
}

// Schedule returns the recurrence view of the step. One-off steps are
// scheduled on their own date only; repeating steps start on their date,
// falling back to creation.
func (s Step) Schedule() Schedule {
	if !s.Repeating() {
		return Schedule{Once: s.Date}
	}
	return Schedule{
		Frequency:    s.Frequency.Normalized(),
		SelectedDays: s.SelectedDays,
		StartDate:    s.Date,
		CreatedAt:    s.CreatedAt,
	}
}
