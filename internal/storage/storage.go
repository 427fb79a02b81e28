package storage

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/pokrok-app/pokrok/internal/constants"
	"github.com/pokrok-app/pokrok/internal/keyring"
	"github.com/pokrok-app/pokrok/internal/logger"
)

// ErrEmbeddedCredentials is returned for PostgreSQL connection strings that carry a password.
var ErrEmbeddedCredentials = errors.New("connection string must not contain a password")

// IsPostgres reports whether db names a PostgreSQL database (URL or key=value DSN)
// rather than a SQLite file path.
func IsPostgres(db string) bool {
	if strings.HasPrefix(db, "postgres://") || strings.HasPrefix(db, "postgresql://") {
		return true
	}
	for _, part := range strings.Fields(db) {
		if key, _, ok := strings.Cut(part, "="); ok && strings.EqualFold(key, "host") {
			return true
		}
	}
	return false
}

// HasEmbeddedCredentials reports whether a PostgreSQL connection string contains a password.
func HasEmbeddedCredentials(connStr string) bool {
	if strings.HasPrefix(connStr, "postgres://") || strings.HasPrefix(connStr, "postgresql://") {
		u, err := url.Parse(connStr)
		if err != nil {
			return false
		}
		if _, ok := u.User.Password(); ok {
			return true
		}
		return u.Query().Get("password") != ""
	}
	for _, part := range strings.Fields(connStr) {
		if key, _, ok := strings.Cut(part, "="); ok && strings.EqualFold(strings.TrimSpace(key), "password") {
			return true
		}
	}
	return false
}

// ResolveConnectionString picks the database to open. POKROK_DB_CONNECTION
// always wins. A configured PostgreSQL target must be password-free and is
// replaced by the keyring entry when one exists. Anything else is a SQLite path.
func ResolveConnectionString(db string) (string, error) {
	if conn := os.Getenv(constants.EnvDBConnection); conn != "" {
		return conn, nil
	}
	if !IsPostgres(db) {
		return db, nil
	}
	if HasEmbeddedCredentials(db) {
		return "", fmt.Errorf("%w: use %s or 'pokrok keyring set' instead", ErrEmbeddedCredentials, constants.EnvDBConnection)
	}

	conn, err := keyring.GetConnectionString()
	switch {
	case err == nil:
		return conn, nil
	case errors.Is(err, keyring.ErrNotFound):
	default:
		logger.Warn("Keyring lookup failed, using configured connection string", "error", err)
	}
	return db, nil
}
