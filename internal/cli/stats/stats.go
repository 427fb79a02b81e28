package stats

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/pokrok-app/pokrok/internal/cli"
	"github.com/pokrok-app/pokrok/internal/recurrence"
	"github.com/pokrok-app/pokrok/internal/storage"
	"github.com/pokrok-app/pokrok/internal/utils"
)

type StatsCmd struct {
	Period string `help:"Period to report." enum:"day,week,month,year,all" default:"week"`
	Date   string `help:"Any date inside the period in YYYY-MM-DD format (default: today)."`
	Rollup string `help:"Group the daily breakdown." enum:"none,week,month,year" default:"none"`
	JSON   bool   `name:"json" help:"Print machine-readable JSON."`
}

// Report is the JSON form of the stats output.
type Report struct {
	recurrence.Stats
	Rate    int                      `json:"completion_rate"`
	Summary recurrence.Summary       `json:"summary"`
	Rollup  []recurrence.PeriodStats `json:"rollup,omitempty"`
}

func (c *StatsCmd) Run(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}

	report, err := c.build(ctx)
	if err != nil {
		return err
	}

	if c.JSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}
	c.print(ctx, report)
	return nil
}

func (c *StatsCmd) build(ctx *cli.Context) (Report, error) {
	day, err := ctx.DateOrToday(c.Date)
	if err != nil {
		return Report{}, err
	}
	start, end, err := periodRange(ctx, recurrence.Period(c.Period), day)
	if err != nil {
		return Report{}, err
	}

	habits, err := ctx.Store.GetAllHabits(false, false)
	if err != nil {
		return Report{}, err
	}
	steps, err := ctx.Store.GetAllSteps(false)
	if err != nil {
		return Report{}, err
	}

	s := ctx.Engine.ComputeStats(habits, steps, start, end)
	report := Report{
		Stats:   s,
		Rate:    s.Rate(),
		Summary: ctx.Engine.Summarize(s.Days, ctx.Today()),
	}
	switch c.Rollup {
	case "week":
		report.Rollup = ctx.Engine.RollupWeekly(s.Days)
	case "month":
		report.Rollup = ctx.Engine.RollupMonthly(s.Days)
	case "year":
		report.Rollup = ctx.Engine.RollupYearly(s.Days)
	}
	return report, nil
}

// periodRange resolves the bounds for p, reading the account creation
// time for all-time reports.
func periodRange(ctx *cli.Context, p recurrence.Period, day time.Time) (time.Time, time.Time, error) {
	if p != recurrence.PeriodAll {
		return ctx.Engine.PeriodRange(p, day)
	}
	created, err := ctx.Store.GetAccountCreatedAt()
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return time.Time{}, time.Time{}, err
	}
	start, end := ctx.Engine.AllTimeRange(created, day)
	return start, end, nil
}

func (c *StatsCmd) print(ctx *cli.Context, r Report) {
	title := fmt.Sprintf("Stats %s", r.Start)
	if r.End != r.Start {
		title += " to " + r.End
	}
	fmt.Println(cli.HeadingStyle.Render(title))
	fmt.Println()
	fmt.Printf("Habits:     %d/%d\n", r.CompletedHabits, r.ScheduledHabits)
	fmt.Printf("Steps:      %d/%d\n", r.CompletedSteps, r.TotalSteps)
	fmt.Printf("Completion: %d%%\n", r.Rate)
	fmt.Printf("XP:         %d\n", r.XP)

	if len(r.Rollup) > 0 {
		fmt.Println()
		for _, p := range r.Rollup {
			fmt.Printf("%-10s %3d%%  (%d/%d)  %s\n", p.Key, p.Rate(), p.Completed(), p.Total(),
				cli.MutedStyle.Render(fmt.Sprintf("%s..%s", p.Start, p.End)))
		}
		return
	}

	if len(r.Days) <= 1 {
		return
	}
	fmt.Println()
	today := ctx.Today()
	for _, d := range r.Days {
		class := ctx.Engine.Classify(d, today)
		fmt.Printf("%s %-9s %3d%%  %s\n", d.Date, weekdayShort(ctx, d.Date), d.Rate(), cli.RenderClass(class))
	}
	fmt.Println()
	fmt.Printf("Perfect %d, partial %d, failed %d, no activity %d\n",
		r.Summary.Perfect, r.Summary.Partial, r.Summary.Failed, r.Summary.NoActivity)
}

func weekdayShort(ctx *cli.Context, key string) string {
	day, ok := ctx.Engine.ParseDay(key)
	if !ok {
		return ""
	}
	return day.Weekday().String()[:3]
}

type StreakCmd struct {
	Date string `help:"Count the streak ending on this date in YYYY-MM-DD format (default: today)."`
}

func (c *StreakCmd) Run(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}

	day, err := ctx.DateOrToday(c.Date)
	if err != nil {
		return err
	}
	habits, err := ctx.Store.GetAllHabits(true, false)
	if err != nil {
		return err
	}
	steps, err := ctx.Store.GetAllSteps(false)
	if err != nil {
		return err
	}

	current := ctx.Engine.ComputeStreak(habits, steps, day)
	longest := ctx.Engine.LongestStreak(habits, steps)
	fmt.Printf("Current streak: %d day(s) as of %s\n", current, utils.DateKey(day))
	fmt.Printf("Longest streak: %d day(s)\n", longest)
	return nil
}
