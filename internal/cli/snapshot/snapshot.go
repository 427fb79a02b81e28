package snapshot

import (
	"fmt"

	"github.com/pokrok-app/pokrok/internal/cli"
	"github.com/pokrok-app/pokrok/internal/storage"
)

type SnapshotCmd struct {
	Export ExportCmd `cmd:"" help:"Write habits and steps to a JSON snapshot."`
	Import ImportCmd `cmd:"" help:"Load habits and steps from a JSON snapshot."`
}

type ExportCmd struct {
	File string `arg:"" help:"Destination file." type:"path"`
}

func (c *ExportCmd) Run(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}

	snap, err := storage.ExportSnapshot(ctx.Store, c.File)
	if err != nil {
		return fmt.Errorf("export failed: %w", err)
	}
	fmt.Printf("Exported %d habits and %d steps to %s\n", len(snap.Habits), len(snap.Steps), c.File)
	return nil
}

type ImportCmd struct {
	File string `arg:"" help:"Snapshot file to import." type:"existingfile"`
}

func (c *ImportCmd) Run(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}

	snap, err := storage.ReadSnapshot(c.File)
	if err != nil {
		return err
	}
	ctx.PerformAutomaticBackup()
	result, err := storage.ImportSnapshot(ctx.Store, snap)
	if err != nil {
		return fmt.Errorf("import failed: %w", err)
	}
	fmt.Printf("Imported %d habits, %d completions and %d steps\n", result.Habits, result.Completions, result.Steps)
	return nil
}
