package store

import (
	"context"
	"database/sql"
)

// DBTX abstracts the query surface shared by *sql.DB and *sql.Tx. Store
// implementations hold a DBTX so the same code serves direct calls and the
// transactional paths used by review submission and sync import.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	PrepareContext(ctx context.Context, query string) (*sql.Stmt, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}
