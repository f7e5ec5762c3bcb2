// Package migration keeps the application schema current. Two migrators
// exist: the framework migrator drives the application's own migration
// commands, the native migrator applies a plain SQL directory with goose.
package migration

import (
	"context"

	"github.com/shopercenter/devup/internal/logging"
	"github.com/shopercenter/devup/internal/step"
)

// Migrator detects and applies schema changes.
type Migrator interface {
	// Pending reports whether unapplied migrations exist.
	Pending(ctx context.Context) (bool, error)

	// Apply applies all pending migrations.
	Apply(ctx context.Context) error

	// Drift reports whether declared models changed without a migration
	// file capturing the change.
	Drift(ctx context.Context) (bool, error)

	// Generate writes a new migration capturing the current drift.
	Generate(ctx context.Context) error
}

// Step applies pending migrations, then captures and applies model drift.
// Zero pending and zero drift are silent successes.
type Step struct {
	M   Migrator
	Log logging.Logger
}

func (s *Step) Name() string { return "schema migrations" }

func (s *Step) Run(ctx context.Context) (step.Result, error) {
	applied := false

	pending, err := s.M.Pending(ctx)
	if err != nil {
		return step.Failed("pending-migration check failed"), err
	}
	if pending {
		s.Log.Info(ctx, "applying pending migrations")
		if err := s.M.Apply(ctx); err != nil {
			return step.Failed("migration apply failed"), err
		}
		applied = true
	}

	drift, err := s.M.Drift(ctx)
	if err != nil {
		return step.Failed("drift check failed"), err
	}
	if drift {
		s.Log.Info(ctx, "model drift detected, generating migration")
		if err := s.M.Generate(ctx); err != nil {
			return step.Failed("migration generation failed"), err
		}
		if err := s.M.Apply(ctx); err != nil {
			return step.Failed("migration apply failed"), err
		}
		applied = true
	}

	if !applied {
		return step.Satisfied("no pending migrations, no model drift"), nil
	}
	return step.Applied("schema brought up to date"), nil
}
