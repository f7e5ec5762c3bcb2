package migration

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// GooseMigrator applies plain SQL migrations from a directory against the
// application database. goose keeps its own version table, so re-running is
// a no-op. Drift detection does not apply: SQL migrations are authored by
// hand, there is no declared model to diverge from.
type GooseMigrator struct {
	db  *sql.DB
	dir string
}

// NewGooseMigrator opens the application database (connection is lazy) and
// prepares goose for on-disk SQL migrations.
func NewGooseMigrator(dsn, dir string) (*GooseMigrator, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	goose.SetBaseFS(nil)
	if err := goose.SetDialect("postgres"); err != nil {
		return nil, fmt.Errorf("set dialect: %w", err)
	}
	return &GooseMigrator{db: db, dir: dir}, nil
}

func (m *GooseMigrator) Pending(ctx context.Context) (bool, error) {
	migrations, err := goose.CollectMigrations(m.dir, 0, math.MaxInt64)
	if err != nil {
		if errors.Is(err, goose.ErrNoMigrationFiles) {
			return false, nil
		}
		return false, fmt.Errorf("collect migrations: %w", err)
	}
	if len(migrations) == 0 {
		return false, nil
	}

	current, err := goose.GetDBVersionContext(ctx, m.db)
	if err != nil {
		return false, fmt.Errorf("read schema version: %w", err)
	}
	return migrations[len(migrations)-1].Version > current, nil
}

func (m *GooseMigrator) Apply(ctx context.Context) error {
	if err := goose.UpContext(ctx, m.db, m.dir); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

func (m *GooseMigrator) Drift(context.Context) (bool, error) { return false, nil }

func (m *GooseMigrator) Generate(context.Context) error { return nil }

// Close releases the database handle.
func (m *GooseMigrator) Close() error {
	return m.db.Close()
}
