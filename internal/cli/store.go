package cli

import (
	"errors"
	"os"

	"github.com/pokrok-app/pokrok/internal/backup"
	"github.com/pokrok-app/pokrok/internal/logger"
	"github.com/pokrok-app/pokrok/internal/storage"
	"github.com/pokrok-app/pokrok/internal/storage/postgres"
	"github.com/pokrok-app/pokrok/internal/storage/sqlite"
)

// OpenStore returns the provider for db, a SQLite path or PostgreSQL
// connection string. The store is not loaded.
func OpenStore(db string) (storage.Provider, error) {
	conn, err := storage.ResolveConnectionString(db)
	if err != nil {
		return nil, err
	}
	if !storage.IsPostgres(conn) {
		return sqlite.NewStore(conn), nil
	}
	// Passwords are allowed here: they came from the environment or the keyring
	if err := postgres.ValidateConnString(conn); err != nil && !errors.Is(err, storage.ErrEmbeddedCredentials) {
		return nil, err
	}
	return postgres.New(conn), nil
}

// PerformAutomaticBackup backs up a SQLite database before a destructive
// operation. Failures are logged and never interrupt the command.
func (c *Context) PerformAutomaticBackup() {
	s, ok := c.Store.(*sqlite.Store)
	if !ok {
		return
	}
	if _, err := os.Stat(s.GetConfigPath()); err != nil {
		return
	}
	path, err := backup.NewManager(s.GetConfigPath()).Create()
	if err != nil {
		logger.Warn("Automatic backup failed", "error", err)
		return
	}
	logger.Info("Created automatic backup", "path", path)
}
