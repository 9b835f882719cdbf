// Package sqlite provides the default, zero-setup session.Store backend:
// a local SQLite file, exactly the role sqlite_service.go plays for the
// slug interpreter's own persistence layer.
package sqlite

import (
	"github.com/arcanetools/cellweave/internal/session"

	_ "github.com/mattn/go-sqlite3"
)

// New opens (and, if necessary, creates) a SQLite-backed session.Store at
// the given file path.
func New(path string) (session.Store, error) {
	return session.NewSQLStore("sqlite3", path)
}
