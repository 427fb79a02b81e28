// Package recurrence decides when habits and steps are due and derives
// completion statistics, streaks and ordering from plain records.
//
// Every function is a pure query over the records and reference dates it is
// given. Nothing here performs I/O or mutates its inputs, so an Engine can be
// shared freely between goroutines.
package recurrence

import (
	"time"

	"github.com/pokrok-app/pokrok/internal/constants"
	"github.com/pokrok-app/pokrok/internal/models"
	"github.com/pokrok-app/pokrok/internal/utils"
)

// Recurring is anything with a recurrence schedule. models.Habit and
// models.Step both satisfy it.
type Recurring interface {
	Schedule() models.Schedule
}

// Engine evaluates schedules against calendar days in a fixed location.
type Engine struct {
	loc      *time.Location
	ordinals constants.OrdinalMode
}

// Option configures an Engine.
type Option func(*Engine)

// WithLocation sets the location whose calendar days are evaluated.
func WithLocation(loc *time.Location) Option {
	return func(e *Engine) {
		if loc != nil {
			e.loc = loc
		}
	}
}

// WithOrdinalMatching selects how monthly "{ordinal}_{weekday}" tokens match.
// Unknown modes fall back to strict matching.
func WithOrdinalMatching(mode constants.OrdinalMode) Option {
	return func(e *Engine) {
		if mode == constants.OrdinalWeekdayOnly {
			e.ordinals = mode
		}
	}
}

// New creates an Engine. The default evaluates days in time.Local with strict
// ordinal matching.
func New(opts ...Option) *Engine {
	e := &Engine{
		loc:      time.Local,
		ordinals: constants.OrdinalStrict,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Location returns the location the engine evaluates days in.
func (e *Engine) Location() *time.Location {
	return e.loc
}

// OrdinalMatching returns the configured ordinal matching mode.
func (e *Engine) OrdinalMatching() constants.OrdinalMode {
	return e.ordinals
}

// Day normalizes a caller-supplied reference date to midnight of its calendar day.
func (e *Engine) Day(t time.Time) time.Time {
	return utils.CalendarDay(t, e.loc)
}

// ParseDay parses a YYYY-MM-DD key into a midnight-anchored day.
func (e *Engine) ParseDay(key string) (time.Time, bool) {
	day, err := utils.ParseDateInLocation(key, e.loc)
	if err != nil {
		return time.Time{}, false
	}
	return day, true
}

// effectiveStart returns the first day the schedule can be due on.
// ok is false when a start date is present but malformed.
func (e *Engine) effectiveStart(s models.Schedule) (start time.Time, set bool, ok bool) {
	if s.StartDate != "" {
		day, valid := e.ParseDay(s.StartDate)
		if !valid {
			return time.Time{}, false, false
		}
		return day, true, true
	}
	if !s.CreatedAt.IsZero() {
		return utils.LocalDay(s.CreatedAt, e.loc), true, true
	}
	return time.Time{}, false, true
}
