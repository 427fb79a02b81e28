package system

import (
	"errors"
	"fmt"

	"github.com/pokrok-app/pokrok/internal/cli"
	"github.com/pokrok-app/pokrok/internal/validation"
)

type ValidateCmd struct{}

func (c *ValidateCmd) Run(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
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

	v := validation.New()
	result := v.ValidateHabits(habits)
	result.Conflicts = append(result.Conflicts, v.ValidateSteps(steps).Conflicts...)

	fmt.Print(result.FormatReport())
	if result.HasConflicts() {
		return errors.New("validation found conflicts")
	}
	fmt.Println()
	return nil
}
