package system

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/pokrok-app/pokrok/internal/cli"
	"github.com/pokrok-app/pokrok/internal/constants"
	"github.com/pokrok-app/pokrok/internal/keyring"
	"github.com/pokrok-app/pokrok/internal/storage/postgres"
	"github.com/pokrok-app/pokrok/internal/utils"
	"github.com/pokrok-app/pokrok/internal/validation"
)

type DoctorCmd struct{}

type check struct {
	name string
	// needsDB checks are skipped when the database cannot be loaded
	needsDB bool
	// warnOnly failures do not fail the run
	warnOnly bool
	run      func(ctx *cli.Context) error
}

var checks = []check{
	{name: "Schema version", needsDB: true, run: checkSchemaVersion},
	{name: "Timezone", run: checkTimezone},
	{name: "Habit integrity", needsDB: true, run: checkHabitsIntegrity},
	{name: "Step integrity", needsDB: true, run: checkStepsIntegrity},
	{name: "Keyring", warnOnly: true, run: checkKeyring},
}

func (cmd *DoctorCmd) Run(ctx *cli.Context) error {
	fmt.Println("Running diagnostics...")
	fmt.Println()

	hasError := false
	dbReachable := true

	if err := ctx.Store.Load(); err != nil {
		fmt.Printf("❌ Database reachable: FAIL\n")
		fmt.Printf("   Error: %v\n", err)
		hasError = true
		dbReachable = false
	} else {
		fmt.Printf("✓ Database reachable: OK\n")
	}

	for _, c := range checks {
		if c.needsDB && !dbReachable {
			fmt.Printf("⊘ %s: SKIPPED (database not reachable)\n", c.name)
			continue
		}
		err := c.run(ctx)
		switch {
		case err == nil:
			fmt.Printf("✓ %s: OK\n", c.name)
		case c.warnOnly:
			fmt.Printf("⚠ %s: WARNING\n", c.name)
			fmt.Printf("   %v\n", err)
		default:
			fmt.Printf("❌ %s: FAIL\n", c.name)
			fmt.Printf("   Error: %v\n", err)
			hasError = true
		}
	}

	fmt.Println()
	if hasError {
		fmt.Println("Diagnostics completed with errors.")
		return errors.New("one or more health checks failed")
	}
	fmt.Println("All diagnostics passed!")
	return nil
}

func checkSchemaVersion(ctx *cli.Context) error {
	current, latest, err := ctx.Store.SchemaStatus()
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	if current > latest {
		return fmt.Errorf("database schema version (%d) is newer than supported version (%d)", current, latest)
	}
	if current < latest {
		return fmt.Errorf("migrations incomplete: current version %d, latest version %d (run 'pokrok migrate')", current, latest)
	}
	return nil
}

func checkTimezone(ctx *cli.Context) error {
	if !utils.ValidateTimezone(ctx.Config.Timezone) {
		return fmt.Errorf("configured timezone %q cannot be loaded", ctx.Config.Timezone)
	}
	now := time.Now()
	if now.Year() < 2020 || now.Year() > 2100 {
		return fmt.Errorf("system time appears incorrect: %s", now.Format(time.RFC3339))
	}
	return nil
}

func checkHabitsIntegrity(ctx *cli.Context) error {
	habits, err := ctx.Store.GetAllHabits(true, false)
	if err != nil {
		return fmt.Errorf("failed to load habits: %w", err)
	}
	return conflictsError(validation.New().ValidateHabits(habits))
}

func checkStepsIntegrity(ctx *cli.Context) error {
	steps, err := ctx.Store.GetAllSteps(false)
	if err != nil {
		return fmt.Errorf("failed to load steps: %w", err)
	}
	return conflictsError(validation.New().ValidateSteps(steps))
}

func conflictsError(result validation.ValidationResult) error {
	if !result.HasConflicts() {
		return nil
	}
	descriptions := make([]string, len(result.Conflicts))
	for i, c := range result.Conflicts {
		descriptions[i] = c.Description
	}
	return fmt.Errorf("found %d problem(s):\n   - %s", len(descriptions), strings.Join(descriptions, "\n   - "))
}

func checkKeyring(ctx *cli.Context) error {
	if _, ok := ctx.Store.(*postgres.Store); !ok {
		return nil
	}
	if os.Getenv(constants.EnvDBConnection) != "" {
		return nil
	}
	if !keyring.IsAvailable() {
		return errors.New("OS keyring is not available; use " + constants.EnvDBConnection + " or .pgpass")
	}
	if _, err := keyring.GetConnectionString(); errors.Is(err, keyring.ErrNotFound) {
		return errors.New("no connection string stored in keyring (see 'pokrok keyring set')")
	}
	return nil
}
