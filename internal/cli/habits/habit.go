package habits

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/pokrok-app/pokrok/internal/cli"
	"github.com/pokrok-app/pokrok/internal/constants"
	apperrors "github.com/pokrok-app/pokrok/internal/errors"
	"github.com/pokrok-app/pokrok/internal/models"
	"github.com/pokrok-app/pokrok/internal/storage"
	"github.com/pokrok-app/pokrok/internal/utils"
)

type HabitCmd struct {
	Add     HabitAddCmd     `cmd:"" help:"Add a new habit."`
	List    HabitListCmd    `cmd:"" help:"List habits."`
	Mark    HabitMarkCmd    `cmd:"" help:"Toggle a habit's completion for a day."`
	Today   HabitTodayCmd   `cmd:"" help:"Show the habits for a day."`
	Next    HabitNextCmd    `cmd:"" help:"Show the next open occurrence of a habit."`
	Archive HabitArchiveCmd `cmd:"" help:"Archive or unarchive a habit."`
	Delete  HabitDeleteCmd  `cmd:"" help:"Delete a habit (soft delete)."`
	Restore HabitRestoreCmd `cmd:"" help:"Restore a deleted habit."`
}

func findHabit(ctx *cli.Context, name string) (models.Habit, error) {
	habit, err := ctx.Store.GetHabitByName(name)
	if errors.Is(err, storage.ErrNotFound) {
		return models.Habit{}, apperrors.WithHint(fmt.Errorf("habit %q: %w", name, err),
			"run 'pokrok habit list' to see habit names")
	}
	return habit, err
}

type HabitAddCmd struct {
	Name       string `arg:"" help:"Habit name."`
	Frequency  string `help:"daily, weekly, custom or monthly." default:"daily"`
	Days       string `help:"Selected days: weekdays (mon,thu) or, for monthly, 1-31 and ordinals (first_monday)."`
	Start      string `help:"Start date in YYYY-MM-DD format (default: creation day)."`
	AlwaysShow bool   `help:"Show the habit every day, even when not scheduled."`
	XP         int    `name:"xp" help:"XP awarded per completion." default:"1"`
}

func (c *HabitAddCmd) Run(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}

	if _, err := ctx.Store.GetHabitByName(c.Name); err == nil {
		return fmt.Errorf("habit with name %q already exists", c.Name)
	}

	freq, err := cli.ParseFrequency(c.Frequency)
	if err != nil {
		return err
	}
	if freq == "" {
		return errors.New("habits need a frequency")
	}
	days, err := cli.ParseDays(c.Days, freq)
	if err != nil {
		return err
	}
	if c.Start != "" && !utils.ValidateDate(c.Start) {
		return fmt.Errorf("invalid start date: %s (expected YYYY-MM-DD)", c.Start)
	}
	if c.XP < 0 {
		return errors.New("--xp cannot be negative")
	}

	habit := models.Habit{
		ID:           uuid.New().String(),
		Name:         c.Name,
		Frequency:    freq,
		SelectedDays: days,
		AlwaysShow:   c.AlwaysShow,
		StartDate:    c.Start,
		XPReward:     c.XP,
		CreatedAt:    time.Now(),
	}
	if err := ctx.Store.AddHabit(habit); err != nil {
		return err
	}

	fmt.Printf("Added habit: %s (%s)\n", c.Name, cli.FormatSchedule(freq, days))
	return nil
}

type HabitListCmd struct {
	Archived bool `help:"Include archived habits."`
	Deleted  bool `help:"Include deleted habits."`
}

func (c *HabitListCmd) Run(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}

	habits, err := ctx.Store.GetAllHabits(c.Archived, c.Deleted)
	if err != nil {
		return err
	}
	if len(habits) == 0 {
		fmt.Println("No habits found.")
		return nil
	}

	for _, habit := range habits {
		status := ""
		if habit.DeletedAt != nil {
			status = " [DELETED]"
		} else if habit.ArchivedAt != nil {
			status = " [ARCHIVED]"
		}
		fmt.Printf("%s%s - %s\n", habit.Name, status,
			cli.MutedStyle.Render(cli.FormatSchedule(habit.Frequency, habit.SelectedDays)))
	}
	return nil
}

type HabitMarkCmd struct {
	Name string `arg:"" help:"Habit name."`
	Date string `help:"Date in YYYY-MM-DD format (default: today)."`
}

func (c *HabitMarkCmd) Run(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}

	habit, err := findHabit(ctx, c.Name)
	if err != nil {
		return err
	}
	day, err := ctx.DateOrToday(c.Date)
	if err != nil {
		return err
	}
	key := utils.DateKey(day)

	if ctx.Engine.HabitCompletedOn(habit, day) {
		if err := ctx.Store.DeleteHabitCompletion(habit.ID, key); err != nil {
			return err
		}
		fmt.Printf("Unmarked habit %q for %s\n", c.Name, key)
		return nil
	}

	completion := models.HabitCompletion{
		HabitID:     habit.ID,
		Day:         key,
		CompletedAt: ctx.CompletionTime(day),
	}
	if err := ctx.Store.SetHabitCompletion(completion); err != nil {
		return err
	}
	fmt.Printf("Marked habit %q for %s\n", c.Name, key)
	if !ctx.Engine.IsScheduledForDay(habit, day) {
		fmt.Println(cli.MutedStyle.Render("  (not scheduled that day, so it does not count toward progress)"))
	}
	return nil
}

type HabitTodayCmd struct {
	Date string `help:"Date in YYYY-MM-DD format (default: today)."`
}

func (c *HabitTodayCmd) Run(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}

	day, err := ctx.DateOrToday(c.Date)
	if err != nil {
		return err
	}
	habits, err := ctx.Store.GetAllHabits(false, false)
	if err != nil {
		return err
	}

	fmt.Println(cli.HeadingStyle.Render(fmt.Sprintf("Habits for %s:", utils.DateKey(day))))
	fmt.Println()

	scheduled, completed, shown := 0, 0, 0
	for _, habit := range habits {
		if !ctx.Engine.VisibleOn(habit, day) {
			continue
		}
		shown++
		done := ctx.Engine.HabitCompletedOn(habit, day)
		status := "[ ]"
		if done {
			status = "[x]"
		}
		suffix := ""
		if ctx.Engine.IsScheduledForDay(habit, day) {
			scheduled++
			if done {
				completed++
			}
		} else {
			suffix = cli.MutedStyle.Render(" (optional)")
		}
		fmt.Printf("%s %s%s\n", status, habit.Name, suffix)
	}

	if shown == 0 {
		fmt.Println("No habits scheduled.")
		return nil
	}
	fmt.Printf("\nCompleted: %d/%d\n", completed, scheduled)
	return nil
}

type HabitNextCmd struct {
	Name string `arg:"" help:"Habit name."`
	From string `help:"Search from this date in YYYY-MM-DD format (default: today)."`
}

func (c *HabitNextCmd) Run(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}

	habit, err := findHabit(ctx, c.Name)
	if err != nil {
		return err
	}
	from, err := ctx.DateOrToday(c.From)
	if err != nil {
		return err
	}

	next, ok := ctx.Engine.NextHabitOccurrence(habit, from)
	if !ok {
		fmt.Printf("No open occurrence of %q within %d days.\n", c.Name, constants.MaxOccurrenceScanDays)
		return nil
	}
	fmt.Printf("Next: %s (%s)\n", utils.DateKey(next), next.Weekday())
	return nil
}

type HabitArchiveCmd struct {
	Name      string `arg:"" help:"Habit name."`
	Unarchive bool   `help:"Return an archived habit to the active list."`
}

func (c *HabitArchiveCmd) Run(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}

	habit, err := findHabit(ctx, c.Name)
	if err != nil {
		return err
	}

	if c.Unarchive {
		if err := ctx.Store.UnarchiveHabit(habit.ID); err != nil {
			return err
		}
		fmt.Printf("Unarchived habit: %s\n", c.Name)
		return nil
	}

	if err := ctx.Store.ArchiveHabit(habit.ID); err != nil {
		return err
	}
	fmt.Printf("Archived habit: %s\n", c.Name)
	return nil
}

type HabitDeleteCmd struct {
	Name string `arg:"" help:"Habit name."`
}

func (c *HabitDeleteCmd) Run(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}

	habit, err := findHabit(ctx, c.Name)
	if err != nil {
		return err
	}
	if err := ctx.Store.DeleteHabit(habit.ID); err != nil {
		return err
	}

	fmt.Printf("Deleted habit: %s\n", c.Name)
	fmt.Println("You can restore it with 'pokrok habit restore'")
	return nil
}

type HabitRestoreCmd struct {
	Name string `arg:"" help:"Habit name."`
}

func (c *HabitRestoreCmd) Run(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}

	habits, err := ctx.Store.GetAllHabits(true, true)
	if err != nil {
		return err
	}

	// Most recently deleted wins when several deleted habits share a name
	var target *models.Habit
	for i := range habits {
		h := &habits[i]
		if h.Name != c.Name || h.DeletedAt == nil {
			continue
		}
		if target == nil || h.DeletedAt.After(*target.DeletedAt) {
			target = h
		}
	}
	if target == nil {
		return fmt.Errorf("no deleted habit named %q", c.Name)
	}

	if err := ctx.Store.RestoreHabit(target.ID); err != nil {
		return err
	}
	fmt.Printf("Restored habit: %s\n", c.Name)
	return nil
}
