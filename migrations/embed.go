// Package migrations embeds the numbered schema files for each supported database.
package migrations

import (
	"embed"
	"io/fs"
)

//go:embed sqlite/*.sql postgres/*.sql
var FS embed.FS

// SQLite returns the SQLite migration files rooted at their directory.
func SQLite() fs.FS { return sub("sqlite") }

// Postgres returns the PostgreSQL migration files rooted at their directory.
func Postgres() fs.FS { return sub("postgres") }

func sub(dir string) fs.FS {
	fsys, err := fs.Sub(FS, dir)
	if err != nil {
		// dir is a compile-time embedded directory
		panic(err)
	}
	return fsys
}
