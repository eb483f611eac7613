// Package dbx provides the minimal database/sql surface shared by SQL-backed
// client components. Both *sql.DB and *sql.Tx satisfy DBTX.
package dbx

import (
	"context"
	"database/sql"
)

// DBTX is the subset of database/sql used by the sqlite storage.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

var (
	_ DBTX = (*sql.DB)(nil)
	_ DBTX = (*sql.Tx)(nil)
)
