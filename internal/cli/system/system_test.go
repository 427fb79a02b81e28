package system

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/pokrok-app/pokrok/internal/cli"
	"github.com/pokrok-app/pokrok/internal/config"
	"github.com/pokrok-app/pokrok/internal/recurrence"
	"github.com/pokrok-app/pokrok/internal/storage/sqlite"
)

func setupTestContext(t *testing.T) (*cli.Context, string) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	store := sqlite.NewStore(dbPath)
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("failed to close store: %v", err)
		}
	})

	cfg := config.Default()
	cfg.DB = dbPath
	cfg.Timezone = "UTC"

	ctx := &cli.Context{
		Store:  store,
		Engine: recurrence.New(recurrence.WithLocation(time.UTC)),
		Config: cfg,
	}
	return ctx, dbPath
}
