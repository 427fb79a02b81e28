package system

import (
	"testing"

	"github.com/pokrok-app/pokrok/internal/constants"
	"github.com/pokrok-app/pokrok/internal/models"
	"github.com/pokrok-app/pokrok/internal/storage/sqlite"
)

func TestDoctorCmd_HealthyDB(t *testing.T) {
	ctx, _ := setupTestContext(t)
	if err := ctx.Store.Init(); err != nil {
		t.Fatalf("failed to initialize store: %v", err)
	}
	if err := ctx.Store.AddHabit(models.Habit{
		ID: "h1", Name: "Run", Frequency: constants.FrequencyMonthly,
		SelectedDays: models.DayTokens{"1", "last_friday"},
	}); err != nil {
		t.Fatalf("AddHabit() error = %v", err)
	}

	if err := (&DoctorCmd{}).Run(ctx); err != nil {
		t.Errorf("doctor command failed on healthy database: %v", err)
	}
}

func TestDoctorCmd_Uninitialized(t *testing.T) {
	ctx, _ := setupTestContext(t)

	if err := (&DoctorCmd{}).Run(ctx); err == nil {
		t.Error("doctor should fail when the database does not exist")
	}
}

func TestDoctorCmd_NewerSchema(t *testing.T) {
	ctx, _ := setupTestContext(t)
	if err := ctx.Store.Init(); err != nil {
		t.Fatalf("failed to initialize store: %v", err)
	}
	db := ctx.Store.(*sqlite.Store).GetDB()
	if _, err := db.Exec("UPDATE schema_version SET version = 999"); err != nil {
		t.Fatalf("failed to bump schema version: %v", err)
	}

	if err := checkSchemaVersion(ctx); err == nil {
		t.Error("checkSchemaVersion() should reject a newer schema")
	}
}

func TestDoctorCmd_BrokenHabit(t *testing.T) {
	ctx, _ := setupTestContext(t)
	if err := ctx.Store.Init(); err != nil {
		t.Fatalf("failed to initialize store: %v", err)
	}
	if err := ctx.Store.AddHabit(models.Habit{ID: "h1", Name: "Swim", Frequency: constants.FrequencyWeekly}); err != nil {
		t.Fatalf("AddHabit() error = %v", err)
	}

	if err := (&DoctorCmd{}).Run(ctx); err == nil {
		t.Error("doctor should fail for a weekly habit without days")
	}
}
