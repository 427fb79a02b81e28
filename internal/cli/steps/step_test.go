package steps

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/pokrok-app/pokrok/internal/cli"
	"github.com/pokrok-app/pokrok/internal/constants"
	"github.com/pokrok-app/pokrok/internal/models"
	"github.com/pokrok-app/pokrok/internal/recurrence"
	"github.com/pokrok-app/pokrok/internal/storage"
	"github.com/pokrok-app/pokrok/internal/storage/sqlite"
)

var now = time.Date(2024, 5, 8, 9, 30, 0, 0, time.UTC)

func setupTestContext(t *testing.T) *cli.Context {
	t.Helper()
	store := sqlite.NewStore(filepath.Join(t.TempDir(), "test.db"))
	if err := store.Init(); err != nil {
		t.Fatalf("failed to initialize store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	return &cli.Context{
		Store:  store,
		Engine: recurrence.New(recurrence.WithLocation(time.UTC)),
		Now:    func() time.Time { return now },
	}
}

func onlyStep(t *testing.T, ctx *cli.Context) models.Step {
	t.Helper()
	steps, err := ctx.Store.GetAllSteps(false)
	if err != nil {
		t.Fatalf("GetAllSteps() error = %v", err)
	}
	if len(steps) != 1 {
		t.Fatalf("got %d steps, want 1", len(steps))
	}
	return steps[0]
}

func TestStepAddCmd_RepeatingDefaultsToToday(t *testing.T) {
	ctx := setupTestContext(t)

	cmd := &StepAddCmd{Title: "Water plants", Frequency: "custom", Days: "mon,thu", Important: true}
	if err := cmd.Run(ctx); err != nil {
		t.Fatalf("StepAddCmd.Run() error = %v", err)
	}

	step := onlyStep(t, ctx)
	if step.Date != "2024-05-08" {
		t.Errorf("Date = %q, want today", step.Date)
	}
	if step.Frequency != constants.FrequencyCustom || !step.IsImportant {
		t.Errorf("step = %+v", step)
	}
}

func TestStepAddCmd_Invalid(t *testing.T) {
	tests := []struct {
		name string
		cmd  StepAddCmd
	}{
		{name: "bad date", cmd: StepAddCmd{Title: "a", Date: "2024-13-01"}},
		{name: "days without frequency", cmd: StepAddCmd{Title: "a", Days: "mon"}},
		{name: "weekly without days", cmd: StepAddCmd{Title: "a", Frequency: "weekly"}},
		{name: "negative estimate", cmd: StepAddCmd{Title: "a", Estimate: -5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := setupTestContext(t)
			if err := tt.cmd.Run(ctx); err == nil {
				t.Error("StepAddCmd.Run() expected an error")
			}
		})
	}
}

func TestStepDoneCmd_OneOff(t *testing.T) {
	ctx := setupTestContext(t)
	if err := (&StepAddCmd{Title: "File taxes", Date: "2024-05-10"}).Run(ctx); err != nil {
		t.Fatalf("StepAddCmd.Run() error = %v", err)
	}
	id := onlyStep(t, ctx).ID

	if err := (&StepDoneCmd{ID: id[:6]}).Run(ctx); err != nil {
		t.Fatalf("StepDoneCmd.Run() error = %v", err)
	}
	step := onlyStep(t, ctx)
	if !step.Completed || step.CompletedAt == nil || !step.CompletedAt.Equal(now) {
		t.Errorf("after done: Completed=%v CompletedAt=%v", step.Completed, step.CompletedAt)
	}

	if err := (&StepDoneCmd{ID: id}).Run(ctx); err != nil {
		t.Fatalf("StepDoneCmd.Run() error = %v", err)
	}
	step = onlyStep(t, ctx)
	if step.Completed || step.CompletedAt != nil {
		t.Errorf("after toggle: Completed=%v CompletedAt=%v", step.Completed, step.CompletedAt)
	}
}

func TestStepDoneCmd_RepeatingAttributesToDay(t *testing.T) {
	ctx := setupTestContext(t)
	if err := (&StepAddCmd{Title: "Stretch", Date: "2024-05-01", Frequency: "daily"}).Run(ctx); err != nil {
		t.Fatalf("StepAddCmd.Run() error = %v", err)
	}
	id := onlyStep(t, ctx).ID

	if err := (&StepDoneCmd{ID: id, Date: "2024-05-06"}).Run(ctx); err != nil {
		t.Fatalf("StepDoneCmd.Run() error = %v", err)
	}
	step := onlyStep(t, ctx)
	may6 := time.Date(2024, 5, 6, 0, 0, 0, 0, time.UTC)
	if !ctx.Engine.StepCompletedOn(step, may6) {
		t.Errorf("step should count as completed on 2024-05-06, CompletedAt=%v", step.CompletedAt)
	}
	if ctx.Engine.StepCompletedOn(step, now) {
		t.Error("step should not count as completed today")
	}

	// Completing today moves the single completion to today
	if err := (&StepDoneCmd{ID: id}).Run(ctx); err != nil {
		t.Fatalf("StepDoneCmd.Run() error = %v", err)
	}
	step = onlyStep(t, ctx)
	if !ctx.Engine.StepCompletedOn(step, now) {
		t.Errorf("step should count as completed today, CompletedAt=%v", step.CompletedAt)
	}

	if err := (&StepDoneCmd{ID: id}).Run(ctx); err != nil {
		t.Fatalf("StepDoneCmd.Run() error = %v", err)
	}
	if step = onlyStep(t, ctx); step.Completed {
		t.Error("second done today should reopen the step")
	}
}

func TestStepListNextDelete(t *testing.T) {
	ctx := setupTestContext(t)
	for _, cmd := range []StepAddCmd{
		{Title: "Overdue", Date: "2024-05-01"},
		{Title: "Undated", Urgent: true},
		{Title: "Weekly", Frequency: "weekly", Days: "fri"},
	} {
		if err := cmd.Run(ctx); err != nil {
			t.Fatalf("StepAddCmd.Run(%q) error = %v", cmd.Title, err)
		}
	}

	if err := (&StepListCmd{}).Run(ctx); err != nil {
		t.Errorf("StepListCmd.Run() error = %v", err)
	}
	if err := (&StepListCmd{Date: "8 May"}).Run(ctx); err == nil {
		t.Error("StepListCmd with a malformed date should fail")
	}

	steps, _ := ctx.Store.GetAllSteps(false)
	for _, s := range steps {
		if err := (&StepNextCmd{ID: s.ID}).Run(ctx); err != nil {
			t.Errorf("StepNextCmd.Run(%q) error = %v", s.Title, err)
		}
	}

	if err := (&StepDeleteCmd{ID: steps[0].ID}).Run(ctx); err != nil {
		t.Fatalf("StepDeleteCmd.Run() error = %v", err)
	}
	if _, err := ctx.Store.GetStep(steps[0].ID); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("GetStep() after delete error = %v, want ErrNotFound", err)
	}
	if err := (&StepDeleteCmd{ID: "nope"}).Run(ctx); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("StepDeleteCmd unknown ID error = %v, want ErrNotFound", err)
	}
}
