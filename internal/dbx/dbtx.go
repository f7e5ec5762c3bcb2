// Package dbx provides a tiny DB abstraction shared by database-facing
// steps: a minimal interface (DBTX) implemented by both *sql.DB and *sql.Tx.
// Steps accept DBTX so tests can substitute a fake without a live engine.
package dbx

import (
	"context"
	"database/sql"
)

// DBTX is the subset of database/sql used by the provisioning and seeding
// steps. Both *sql.DB and *sql.Tx satisfy this interface.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

var (
	_ DBTX = (*sql.DB)(nil)
	_ DBTX = (*sql.Tx)(nil)
)
