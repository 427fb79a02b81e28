package steps

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pokrok-app/pokrok/internal/cli"
	"github.com/pokrok-app/pokrok/internal/constants"
	"github.com/pokrok-app/pokrok/internal/models"
	"github.com/pokrok-app/pokrok/internal/recurrence"
	"github.com/pokrok-app/pokrok/internal/storage"
	"github.com/pokrok-app/pokrok/internal/utils"
)

type StepCmd struct {
	Add    StepAddCmd    `cmd:"" help:"Add a step."`
	List   StepListCmd   `cmd:"" help:"List open steps in agenda order."`
	Done   StepDoneCmd   `cmd:"" help:"Toggle a step's completion."`
	Next   StepNextCmd   `cmd:"" help:"Show the next open occurrence of a step."`
	Delete StepDeleteCmd `cmd:"" help:"Delete a step (soft delete)."`
}

// findStep resolves a full step ID or a unique prefix of one.
func findStep(ctx *cli.Context, id string) (models.Step, error) {
	step, err := ctx.Store.GetStep(id)
	if err == nil || !errors.Is(err, storage.ErrNotFound) {
		return step, err
	}

	all, err := ctx.Store.GetAllSteps(false)
	if err != nil {
		return models.Step{}, err
	}
	var matches []models.Step
	for _, s := range all {
		if strings.HasPrefix(s.ID, id) {
			matches = append(matches, s)
		}
	}
	switch len(matches) {
	case 0:
		return models.Step{}, fmt.Errorf("step %q: %w", id, storage.ErrNotFound)
	case 1:
		return matches[0], nil
	default:
		return models.Step{}, fmt.Errorf("step ID prefix %q is ambiguous (%d matches)", id, len(matches))
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

type StepAddCmd struct {
	Title     string `arg:"" help:"Step title."`
	Date      string `help:"Due date in YYYY-MM-DD format. Repeating steps start on this day (default: today)."`
	Frequency string `help:"Repeat daily, weekly, custom or monthly. Omit for a one-off step."`
	Days      string `help:"Selected days for weekly, custom or monthly steps."`
	Goal      string `help:"Goal ID the step belongs to."`
	Important bool   `help:"Mark the step important."`
	Urgent    bool   `help:"Mark the step urgent."`
	Estimate  int    `help:"Estimated time in minutes."`
}

func (c *StepAddCmd) Run(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}

	freq, err := cli.ParseFrequency(c.Frequency)
	if err != nil {
		return err
	}
	var days models.DayTokens
	if freq != "" {
		if days, err = cli.ParseDays(c.Days, freq); err != nil {
			return err
		}
	} else if c.Days != "" {
		return errors.New("--days needs --frequency")
	}

	date := c.Date
	if date != "" && !utils.ValidateDate(date) {
		return fmt.Errorf("invalid date format: %s (expected YYYY-MM-DD)", date)
	}
	if date == "" && freq != "" {
		date = utils.DateKey(ctx.Today())
	}
	if c.Estimate < 0 {
		return errors.New("--estimate cannot be negative")
	}

	step := models.Step{
		ID:            uuid.New().String(),
		Title:         c.Title,
		Date:          date,
		Frequency:     freq,
		SelectedDays:  days,
		GoalID:        c.Goal,
		IsImportant:   c.Important,
		IsUrgent:      c.Urgent,
		EstimatedTime: c.Estimate,
		CreatedAt:     time.Now(),
	}
	if err := ctx.Store.AddStep(step); err != nil {
		return err
	}

	fmt.Printf("Added step %s: %s\n", shortID(step.ID), c.Title)
	return nil
}

type StepListCmd struct {
	Date string `help:"List relative to this date in YYYY-MM-DD format (default: today)."`
	All  bool   `help:"Include completed one-off steps."`
}

func (c *StepListCmd) Run(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}

	day, err := ctx.DateOrToday(c.Date)
	if err != nil {
		return err
	}
	all, err := ctx.Store.GetAllSteps(false)
	if err != nil {
		return err
	}

	var steps []models.Step
	for _, s := range all {
		if !s.Repeating() && s.Completed && !c.All {
			continue
		}
		steps = append(steps, s)
	}
	if len(steps) == 0 {
		fmt.Println("No steps found.")
		return nil
	}

	ctx.Engine.SortForAgenda(steps, day, nil)

	current := recurrence.DueBucket(-1)
	for _, s := range steps {
		if bucket := ctx.Engine.DueBucket(s, day); bucket != current {
			if current >= 0 {
				fmt.Println()
			}
			fmt.Println(cli.HeadingStyle.Render(strings.ToUpper(bucket.String())))
			current = bucket
		}
		fmt.Println(formatStep(ctx, s, day))
	}
	return nil
}

func formatStep(ctx *cli.Context, s models.Step, day time.Time) string {
	status := "[ ]"
	if ctx.Engine.StepCompletedOn(s, day) || (!s.Repeating() && s.Completed) {
		status = "[x]"
	}

	var flags []string
	if s.IsImportant {
		flags = append(flags, "!")
	}
	if s.IsUrgent {
		flags = append(flags, "urgent")
	}

	line := fmt.Sprintf("  %s %s %s", status, cli.MutedStyle.Render(shortID(s.ID)), s.Title)
	if len(flags) > 0 {
		line += " (" + strings.Join(flags, ", ") + ")"
	}
	switch {
	case s.Repeating():
		line += cli.MutedStyle.Render(" - " + cli.FormatSchedule(s.Frequency, s.SelectedDays))
	case s.Date != "":
		line += cli.MutedStyle.Render(" - " + s.Date)
	}
	if s.EstimatedTime > 0 {
		line += cli.MutedStyle.Render(fmt.Sprintf(" [%dm]", s.EstimatedTime))
	}
	return line
}

type StepDoneCmd struct {
	ID   string `arg:"" help:"Step ID or unique prefix."`
	Date string `help:"Occurrence date for repeating steps in YYYY-MM-DD format (default: today)."`
}

func (c *StepDoneCmd) Run(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}

	step, err := findStep(ctx, c.ID)
	if err != nil {
		return err
	}
	day, err := ctx.DateOrToday(c.Date)
	if err != nil {
		return err
	}

	var done bool
	if step.Repeating() {
		// A repeating step holds one completion, attributed to the day of CompletedAt
		done = !ctx.Engine.StepCompletedOn(step, day)
	} else {
		done = !step.Completed
	}

	step.Completed = done
	step.CompletedAt = nil
	if done {
		at := ctx.CompletionTime(day)
		step.CompletedAt = &at
	}
	if err := ctx.Store.UpdateStep(step); err != nil {
		return err
	}

	if done {
		fmt.Printf("Completed step: %s\n", step.Title)
	} else {
		fmt.Printf("Reopened step: %s\n", step.Title)
	}
	return nil
}

type StepNextCmd struct {
	ID   string `arg:"" help:"Step ID or unique prefix."`
	From string `help:"Search from this date in YYYY-MM-DD format (default: today)."`
}

func (c *StepNextCmd) Run(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}

	step, err := findStep(ctx, c.ID)
	if err != nil {
		return err
	}
	from, err := ctx.DateOrToday(c.From)
	if err != nil {
		return err
	}

	next, ok := ctx.Engine.NextStepOccurrence(step, from)
	if !ok {
		if step.Repeating() {
			fmt.Printf("No open occurrence within %d days.\n", constants.MaxOccurrenceScanDays)
		} else {
			fmt.Println("No open occurrence.")
		}
		return nil
	}
	fmt.Printf("Next: %s (%s)\n", utils.DateKey(next), next.Weekday())
	return nil
}

type StepDeleteCmd struct {
	ID string `arg:"" help:"Step ID or unique prefix."`
}

func (c *StepDeleteCmd) Run(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}

	step, err := findStep(ctx, c.ID)
	if err != nil {
		return err
	}
	if err := ctx.Store.DeleteStep(step.ID); err != nil {
		return err
	}
	fmt.Printf("Deleted step: %s\n", step.Title)
	return nil
}
