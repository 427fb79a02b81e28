package recurrence

import (
	"strconv"
	"strings"
	"time"

	"github.com/pokrok-app/pokrok/internal/constants"
	"github.com/pokrok-app/pokrok/internal/logger"
	"github.com/pokrok-app/pokrok/internal/models"
	"github.com/pokrok-app/pokrok/internal/utils"
)

// IsScheduledForDay reports whether item is due on date's calendar day.
// Malformed schedules are never due.
func (e *Engine) IsScheduledForDay(item Recurring, date time.Time) bool {
	return e.matcher(item.Schedule())(e.Day(date))
}

// VisibleOn reports whether a habit should be displayed on date: scheduled
// habits plus those flagged always-show. Visibility never affects progress.
func (e *Engine) VisibleOn(h models.Habit, date time.Time) bool {
	return h.AlwaysShow || e.IsScheduledForDay(h, date)
}

// matcher resolves the parts of s that do not depend on the day once, so
// range scans parse the start date a single time. A malformed schedule
// yields a matcher that never matches.
func (e *Engine) matcher(s models.Schedule) func(day time.Time) bool {
	never := func(time.Time) bool { return false }
	s.Frequency = s.Frequency.Normalized()

	if s.Frequency == "" {
		once, ok := e.ParseDay(s.Once)
		if s.Once == "" || !ok {
			return never
		}
		return once.Equal
	}

	start, set, ok := e.effectiveStart(s)
	if !ok {
		logger.Debug("Unparseable start date, treating as unscheduled", "start_date", s.StartDate)
		return never
	}
	return func(day time.Time) bool {
		if set && day.Before(start) {
			return false
		}
		return e.matches(s, day)
	}
}

// matches applies the frequency rule without the start bound.
func (e *Engine) matches(s models.Schedule, day time.Time) bool {
	switch s.Frequency {
	case constants.FrequencyDaily:
		return true
	case constants.FrequencyWeekly, constants.FrequencyCustom:
		return s.SelectedDays.Contains(utils.WeekdayName(day))
	case constants.FrequencyMonthly:
		return e.matchesMonthly(s.SelectedDays, day)
	default:
		return false
	}
}

// matchesMonthly checks day-of-month tokens ("15") and ordinal weekday tokens
// ("first_monday", "last_friday"). A day-of-month that does not exist in a
// month (31 in April) is skipped, not moved.
func (e *Engine) matchesMonthly(tokens models.DayTokens, day time.Time) bool {
	weekday := utils.WeekdayName(day)
	for _, token := range tokens.Normalized() {
		if n, err := strconv.Atoi(token); err == nil {
			if n == day.Day() {
				return true
			}
			continue
		}

		ordinal, wd, found := strings.Cut(token, constants.OrdinalSeparator)
		if !found || wd != weekday {
			continue
		}
		if e.ordinals == constants.OrdinalWeekdayOnly {
			return true
		}
		occurrence, known := constants.OrdinalIndex[ordinal]
		if known && isNthWeekdayOfMonth(day, day.Weekday(), occurrence) {
			return true
		}
	}
	return false
}

// isNthWeekdayOfMonth checks if the given date is the nth occurrence of a weekday in its month
// occurrence: -1 for last, 1 for first, 2 for second, etc.
func isNthWeekdayOfMonth(date time.Time, weekday time.Weekday, occurrence int) bool {
	if date.Weekday() != weekday {
		return false
	}

	if occurrence == -1 {
		// Last occurrence when the same weekday a week later falls in the next month
		return date.AddDate(0, 0, 7).Month() != date.Month()
	}

	if occurrence < 1 || occurrence > 5 {
		return false
	}
	return (date.Day()-1)/7+1 == occurrence
}
