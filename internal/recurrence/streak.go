package recurrence

import (
	"slices"
	"time"

	"github.com/pokrok-app/pokrok/internal/models"
	"github.com/pokrok-app/pokrok/internal/utils"
)

// ComputeStreak counts consecutive active days ending at today. A day is
// active when any habit is marked complete on it or any step is completed
// for it. Returns 0 when today itself has no activity.
func (e *Engine) ComputeStreak(habits []models.Habit, steps []models.Step, today time.Time) int {
	active := e.activeDays(habits, steps)

	// Each iteration consumes one distinct active day, so the walk ends
	// after at most len(active)+1 steps.
	streak := 0
	day := e.Day(today)
	for active[utils.DateKey(day)] {
		streak++
		day = utils.AddDays(day, -1)
	}
	return streak
}

// LongestStreak returns the longest run of consecutive active days in the history.
func (e *Engine) LongestStreak(habits []models.Habit, steps []models.Step) int {
	active := e.activeDays(habits, steps)

	days := make([]time.Time, 0, len(active))
	for key := range active {
		if day, ok := e.ParseDay(key); ok {
			days = append(days, day)
		}
	}
	slices.SortFunc(days, func(a, b time.Time) int { return a.Compare(b) })

	longest, run := 0, 0
	for i, day := range days {
		if i > 0 && utils.DaysBetween(days[i-1], day) == 1 {
			run++
		} else {
			run = 1
		}
		longest = max(longest, run)
	}
	return longest
}

// activeDays collects the date keys with at least one completion.
func (e *Engine) activeDays(habits []models.Habit, steps []models.Step) map[string]bool {
	active := make(map[string]bool)
	for _, h := range habits {
		for key, done := range h.Completions {
			if !done {
				continue
			}
			if day, ok := e.ParseDay(key); ok {
				active[utils.DateKey(day)] = true
			}
		}
	}
	for _, s := range steps {
		if !s.Completed {
			continue
		}
		if s.Repeating() {
			if s.CompletedAt != nil {
				active[utils.DateKey(utils.LocalDay(*s.CompletedAt, e.loc))] = true
			}
			continue
		}
		if day, ok := e.ParseDay(s.Date); ok {
			active[utils.DateKey(day)] = true
		}
	}
	return active
}
