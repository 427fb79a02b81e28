package recurrence

import (
	"time"

	"github.com/pokrok-app/pokrok/internal/constants"
	"github.com/pokrok-app/pokrok/internal/models"
	"github.com/pokrok-app/pokrok/internal/utils"
)

// CompletionFunc reports whether an item is already completed for a day.
type CompletionFunc func(day time.Time) bool

// HabitCompletedOn reports whether the habit is marked complete on date.
func (e *Engine) HabitCompletedOn(h models.Habit, date time.Time) bool {
	return h.CompletedOn(utils.DateKey(e.Day(date)))
}

// StepCompletedOn reports whether the step counts as completed for date.
//
// One-off steps are completed on their own date when their flag is set.
// Repeating steps are attributed to the local day of CompletedAt; a set flag
// without a timestamp cannot be tied to any occurrence and counts as not
// completed.
func (e *Engine) StepCompletedOn(s models.Step, date time.Time) bool {
	if !s.Completed {
		return false
	}
	day := e.Day(date)
	if !s.Repeating() {
		due, ok := e.ParseDay(s.Date)
		return ok && due.Equal(day)
	}
	if s.CompletedAt == nil {
		return false
	}
	return utils.LocalDay(*s.CompletedAt, e.loc).Equal(day)
}

// NextOccurrence returns the earliest day on or after from on which item is
// scheduled and completed reports false. Repeating items are searched at most
// constants.MaxOccurrenceScanDays days ahead. A nil completed treats every
// occurrence as open.
func (e *Engine) NextOccurrence(item Recurring, from time.Time, completed CompletionFunc) (time.Time, bool) {
	if completed == nil {
		completed = func(time.Time) bool { return false }
	}
	s := item.Schedule()
	day := e.Day(from)

	if s.Frequency.Normalized() == "" {
		due, ok := e.ParseDay(s.Once)
		if !ok || due.Before(day) || completed(due) {
			return time.Time{}, false
		}
		return due, true
	}

	scheduled := e.matcher(s)
	for i := 0; i < constants.MaxOccurrenceScanDays; i++ {
		if scheduled(day) && !completed(day) {
			return day, true
		}
		day = utils.AddDays(day, 1)
	}
	return time.Time{}, false
}

// NextHabitOccurrence finds the next scheduled day the habit is not yet completed on.
func (e *Engine) NextHabitOccurrence(h models.Habit, from time.Time) (time.Time, bool) {
	return e.NextOccurrence(h, from, func(day time.Time) bool {
		return e.HabitCompletedOn(h, day)
	})
}

// NextStepOccurrence finds the next open occurrence of a step.
func (e *Engine) NextStepOccurrence(s models.Step, from time.Time) (time.Time, bool) {
	return e.NextOccurrence(s, from, func(day time.Time) bool {
		return e.StepCompletedOn(s, day)
	})
}
