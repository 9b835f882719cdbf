// Package mysql provides the opt-in, shared/networked session.Store
// backend, mirroring mysql_service.go's role alongside sqlite_service.go
// in the slug interpreter pack.
package mysql

import (
	"github.com/arcanetools/cellweave/internal/session"

	_ "github.com/go-sql-driver/mysql"
)

// New opens a MySQL-backed session.Store using dsn (a standard
// go-sql-driver/mysql data source name, e.g.
// "user:pass@tcp(host:3306)/dbname").
func New(dsn string) (session.Store, error) {
	return session.NewSQLStore("mysql", dsn)
}
