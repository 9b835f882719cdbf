package session

import (
	"context"
	"database/sql"
	"fmt"
)

const schema = `
CREATE TABLE IF NOT EXISTS sheets (
	sheet           VARCHAR(255) NOT NULL,
	cell_id         VARCHAR(255) NOT NULL,
	source          TEXT NOT NULL,
	updated_at_unix INTEGER NOT NULL,
	PRIMARY KEY (sheet, cell_id)
)`

// SQLStore is the database/sql-backed Store shared by the sqlite and
// mysql backends (internal/session/sqlite, internal/session/mysql); the
// only thing that differs between those two packages is which driver
// they blank-import and which name they pass to sql.Open, mirroring the
// pack's sqlite_service.go/mysql_service.go split.
type SQLStore struct {
	db *sql.DB
}

// NewSQLStore opens a database/sql connection with driverName and dsn,
// verifies it, and ensures the sheets table exists.
func NewSQLStore(driverName, dsn string) (*SQLStore, error) {
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("session: open %s: %w", driverName, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("session: ping %s: %w", driverName, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("session: create schema: %w", err)
	}
	return &SQLStore{db: db}, nil
}

// Save replaces every row belonging to sheet with rows, atomically.
func (s *SQLStore) Save(ctx context.Context, sheet string, rows []SessionRow) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("session: begin save: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM sheets WHERE sheet = ?`, sheet); err != nil {
		return fmt.Errorf("session: clear %s: %w", sheet, err)
	}
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO sheets (sheet, cell_id, source, updated_at_unix) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("session: prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, row := range rows {
		if _, err := stmt.ExecContext(ctx, sheet, row.CellID, row.Source, row.UpdatedAtUnix); err != nil {
			return fmt.Errorf("session: insert %s/%s: %w", sheet, row.CellID, err)
		}
	}
	return tx.Commit()
}

// Load returns sheet's rows, ordered by ascending CellId.
func (s *SQLStore) Load(ctx context.Context, sheet string) ([]SessionRow, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT cell_id, source, updated_at_unix FROM sheets WHERE sheet = ? ORDER BY cell_id ASC`, sheet)
	if err != nil {
		return nil, fmt.Errorf("session: load %s: %w", sheet, err)
	}
	defer rows.Close()

	var out []SessionRow
	for rows.Next() {
		var r SessionRow
		r.Sheet = sheet
		if err := rows.Scan(&r.CellID, &r.Source, &r.UpdatedAtUnix); err != nil {
			return nil, fmt.Errorf("session: scan %s: %w", sheet, err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("session: load %s: %w", sheet, err)
	}
	return out, nil
}

// ListSheets returns every distinct sheet name with at least one saved row.
func (s *SQLStore) ListSheets(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT sheet FROM sheets ORDER BY sheet ASC`)
	if err != nil {
		return nil, fmt.Errorf("session: list sheets: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("session: list sheets: %w", err)
		}
		out = append(out, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("session: list sheets: %w", err)
	}
	return out, nil
}

func (s *SQLStore) Close() error {
	return s.db.Close()
}
