package recurrence

import (
	"time"

	"github.com/pokrok-app/pokrok/internal/logger"
	"github.com/pokrok-app/pokrok/internal/models"
	"github.com/pokrok-app/pokrok/internal/utils"
)

// DayClass classifies a day by how much of its scheduled work was completed.
type DayClass string

const (
	DayNoActivity DayClass = "no-activity"
	DayPerfect    DayClass = "perfect"
	DayFailed     DayClass = "failed"
	DayPartial    DayClass = "partial"
	DayFuture     DayClass = "future"
)

// Counts holds the numerators and denominators of a completion rate.
// Rates are always derived from summed counts, never averaged.
type Counts struct {
	ScheduledHabits int `json:"scheduled_habits"`
	CompletedHabits int `json:"completed_habits"`
	TotalSteps      int `json:"total_steps"`
	CompletedSteps  int `json:"completed_steps"`
	XP              int `json:"xp"`
}

// Total is the number of scheduled habit occurrences plus steps.
func (c Counts) Total() int {
	return c.ScheduledHabits + c.TotalSteps
}

// Completed is the number of completed habit occurrences plus completed steps.
func (c Counts) Completed() int {
	return c.CompletedHabits + c.CompletedSteps
}

// Rate is the rounded completion percentage.
func (c Counts) Rate() int {
	return CompletionRate(c.Completed(), c.Total())
}

// Add returns the element-wise sum of c and o.
func (c Counts) Add(o Counts) Counts {
	return Counts{
		ScheduledHabits: c.ScheduledHabits + o.ScheduledHabits,
		CompletedHabits: c.CompletedHabits + o.CompletedHabits,
		TotalSteps:      c.TotalSteps + o.TotalSteps,
		CompletedSteps:  c.CompletedSteps + o.CompletedSteps,
		XP:              c.XP + o.XP,
	}
}

// DayStats is one calendar day of the per-day breakdown.
type DayStats struct {
	Date string `json:"date"` // YYYY-MM-DD
	Counts
}

// Stats aggregates an inclusive date range.
type Stats struct {
	Start string     `json:"start"`
	End   string     `json:"end"`
	Days  []DayStats `json:"days"`
	Counts
}

// CompletionRate returns round(100 * completed / total) with ties rounded up,
// or 0 when total is not positive. The result is always within [0, 100].
func CompletionRate(completed, total int) int {
	if total <= 0 {
		return 0
	}
	completed = max(0, min(completed, total))
	return (200*completed + total) / (2 * total)
}

// ComputeStats aggregates habits and steps over [start, end]. A start after
// end yields empty stats. Records with malformed dates are skipped.
func (e *Engine) ComputeStats(habits []models.Habit, steps []models.Step, start, end time.Time) Stats {
	first, last := e.Day(start), e.Day(end)
	stats := Stats{
		Start: utils.DateKey(first),
		End:   utils.DateKey(last),
	}

	n := utils.DaysBetween(first, last) + 1
	if n <= 0 {
		return stats
	}

	days := make([]time.Time, n)
	index := make(map[string]int, n)
	stats.Days = make([]DayStats, n)
	for i := 0; i < n; i++ {
		days[i] = utils.AddDays(first, i)
		key := utils.DateKey(days[i])
		index[key] = i
		stats.Days[i].Date = key
	}

	for _, h := range habits {
		scheduled := e.matcher(h.Schedule())
		for i, day := range days {
			if !scheduled(day) {
				continue
			}
			d := &stats.Days[i]
			d.ScheduledHabits++
			if h.Completions[d.Date] {
				d.CompletedHabits++
				d.XP += h.XPReward
			}
		}
	}

	for _, s := range steps {
		if s.Date == "" {
			continue
		}
		due, ok := e.ParseDay(s.Date)
		if !ok {
			logger.Debug("Skipping step with malformed date", "step", s.ID, "date", s.Date)
			continue
		}
		i, inRange := index[utils.DateKey(due)]
		if !inRange {
			continue
		}
		// Repeating steps are counted once, on their start date, and only
		// completed there when CompletedAt falls on that day.
		stats.Days[i].TotalSteps++
		if e.StepCompletedOn(s, days[i]) {
			stats.Days[i].CompletedSteps++
		}
	}

	for _, d := range stats.Days {
		stats.Counts = stats.Counts.Add(d.Counts)
	}
	return stats
}

// Classify labels a day relative to today. Days after today are always
// DayFuture. Perfect and failed compare exact counts so rounding can never
// promote a nearly complete day to perfect.
func (e *Engine) Classify(d DayStats, today time.Time) DayClass {
	if day, ok := e.ParseDay(d.Date); ok && day.After(e.Day(today)) {
		return DayFuture
	}
	total, completed := d.Total(), d.Completed()
	switch {
	case total == 0:
		return DayNoActivity
	case completed >= total:
		return DayPerfect
	case completed == 0:
		return DayFailed
	default:
		return DayPartial
	}
}

// Summary counts days per classification.
type Summary struct {
	Perfect    int `json:"perfect"`
	Partial    int `json:"partial"`
	Failed     int `json:"failed"`
	NoActivity int `json:"no_activity"`
	Future     int `json:"future"`
}

// Summarize classifies each day and tallies the result.
func (e *Engine) Summarize(days []DayStats, today time.Time) Summary {
	var s Summary
	for _, d := range days {
		switch e.Classify(d, today) {
		case DayPerfect:
			s.Perfect++
		case DayPartial:
			s.Partial++
		case DayFailed:
			s.Failed++
		case DayNoActivity:
			s.NoActivity++
		case DayFuture:
			s.Future++
		}
	}
	return s
}
