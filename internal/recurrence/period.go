package recurrence

import (
	"fmt"
	"time"

	"github.com/pokrok-app/pokrok/internal/constants"
	"github.com/pokrok-app/pokrok/internal/utils"
)

// Period names a reporting window around a reference day.
type Period string

const (
	PeriodDay   Period = "day"
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
	PeriodYear  Period = "year"
	PeriodAll   Period = "all"
)

// PeriodStats is a roll-up of consecutive days sharing a key.
type PeriodStats struct {
	Key   string `json:"key"`
	Start string `json:"start"`
	End   string `json:"end"`
	Days  int    `json:"days"`
	Counts
}

// PeriodRange returns the inclusive bounds of the calendar period containing ref.
// Weeks start on Sunday. PeriodAll needs the account creation time and is
// served by AllTimeRange.
func (e *Engine) PeriodRange(p Period, ref time.Time) (time.Time, time.Time, error) {
	day := e.Day(ref)
	switch p {
	case PeriodDay:
		return day, day, nil
	case PeriodWeek:
		start := utils.WeekStart(day)
		return start, utils.AddDays(start, 6), nil
	case PeriodMonth:
		start := utils.MonthStart(day)
		return start, start.AddDate(0, 1, -1), nil
	case PeriodYear:
		start := time.Date(day.Year(), time.January, 1, 0, 0, 0, 0, e.loc)
		return start, time.Date(day.Year(), time.December, 31, 0, 0, 0, 0, e.loc), nil
	default:
		return time.Time{}, time.Time{}, fmt.Errorf("unsupported period %q", p)
	}
}

// AllTimeRange clamps an all-time window to the account creation day. A
// creation time after today collapses the range to today.
func (e *Engine) AllTimeRange(accountCreated, today time.Time) (time.Time, time.Time) {
	end := e.Day(today)
	if accountCreated.IsZero() {
		return end, end
	}
	start := utils.LocalDay(accountCreated, e.loc)
	if start.After(end) {
		start = end
	}
	return start, end
}

// RollupWeekly groups days by their Sunday week start.
func (e *Engine) RollupWeekly(days []DayStats) []PeriodStats {
	return e.rollup(days, func(d time.Time) string {
		return utils.DateKey(utils.WeekStart(d))
	})
}

// RollupMonthly groups days by calendar month (YYYY-MM).
func (e *Engine) RollupMonthly(days []DayStats) []PeriodStats {
	return e.rollup(days, func(d time.Time) string {
		return d.Format(constants.MonthFormat)
	})
}

// RollupYearly groups days by calendar year (YYYY).
func (e *Engine) RollupYearly(days []DayStats) []PeriodStats {
	return e.rollup(days, func(d time.Time) string {
		return d.Format(constants.YearFormat)
	})
}

// rollup sums counts of ordered days into groups, preserving first-seen order.
func (e *Engine) rollup(days []DayStats, keyOf func(time.Time) string) []PeriodStats {
	var out []PeriodStats
	index := make(map[string]int)
	for _, d := range days {
		day, ok := e.ParseDay(d.Date)
		if !ok {
			continue
		}
		key := keyOf(day)
		i, seen := index[key]
		if !seen {
			i = len(out)
			index[key] = i
			out = append(out, PeriodStats{Key: key, Start: d.Date})
		}
		p := &out[i]
		p.End = d.Date
		p.Days++
		p.Counts = p.Counts.Add(d.Counts)
	}
	return out
}
