package system

import (
	"testing"

	"github.com/pokrok-app/pokrok/internal/constants"
	"github.com/pokrok-app/pokrok/internal/models"
)

func TestValidateCmd(t *testing.T) {
	ctx, _ := setupTestContext(t)
	if err := ctx.Store.Init(); err != nil {
		t.Fatalf("failed to initialize store: %v", err)
	}
	if err := ctx.Store.AddHabit(models.Habit{ID: "h1", Name: "Read", Frequency: constants.FrequencyDaily}); err != nil {
		t.Fatalf("AddHabit() error = %v", err)
	}
	if err := ctx.Store.AddStep(models.Step{ID: "s1", Title: "Call", Date: "2024-05-08"}); err != nil {
		t.Fatalf("AddStep() error = %v", err)
	}

	if err := (&ValidateCmd{}).Run(ctx); err != nil {
		t.Errorf("validate failed on clean data: %v", err)
	}

	if err := ctx.Store.AddStep(models.Step{
		ID: "s2", Title: "Review", Date: "2024-05-01",
		Frequency: constants.FrequencyMonthly, SelectedDays: models.DayTokens{"fifth_friday"},
	}); err != nil {
		t.Fatalf("AddStep() error = %v", err)
	}
	if err := (&ValidateCmd{}).Run(ctx); err == nil {
		t.Error("validate should report the unknown monthly token")
	}
}
