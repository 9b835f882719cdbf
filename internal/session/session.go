// Package session defines the host-side persistence boundary for the
// engine: it stores and restores the source text behind a sheet's cells,
// never a parsed AST or a computed value, so an engine-internal format
// change never requires a migration.
package session

import "context"

// SessionRow is one persisted (cell id, source) pair, tagged with the
// sheet it belongs to and when it was last written. This is the
// persistence-layer sibling of sheet.SessionRow, which carries neither a
// sheet name nor a timestamp since a bare Sheet has no notion of either;
// the CLI is what zips the two together on save and apart on load.
type SessionRow struct {
	Sheet         string
	CellID        string
	Source        string
	UpdatedAtUnix int64
}

// Store persists and restores named sheets' cell sources. Implementations
// are expected to treat Save as a full replacement of a sheet's rows, not
// an incremental merge — the engine is the source of truth for what a
// sheet currently contains, the store just remembers it across restarts.
type Store interface {
	Save(ctx context.Context, sheet string, rows []SessionRow) error
	Load(ctx context.Context, sheet string) ([]SessionRow, error)
	ListSheets(ctx context.Context) ([]string, error)
	Close() error
}
