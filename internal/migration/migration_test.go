package migration

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shopercenter/devup/internal/execx"
	"github.com/shopercenter/devup/internal/logging"
	"github.com/shopercenter/devup/internal/step"
)

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// fakeMigrator scripts Migrator outcomes and records which operations ran.
type fakeMigrator struct {
	pending bool
	drift   bool

	applies   int
	generates int

	pendingErr error
}

func (f *fakeMigrator) Pending(context.Context) (bool, error) { return f.pending, f.pendingErr }

func (f *fakeMigrator) Apply(context.Context) error {
	f.applies++
	f.pending = false
	return nil
}

func (f *fakeMigrator) Drift(context.Context) (bool, error) { return f.drift, nil }

func (f *fakeMigrator) Generate(context.Context) error {
	f.generates++
	f.drift = false
	return nil
}

func TestStep_NothingToDoIsSilentSuccess(t *testing.T) {
	m := &fakeMigrator{}
	s := &Step{M: m, Log: testLogger()}

	res, err := s.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, step.StatusSatisfied, res.Status)
	assert.Zero(t, m.applies, "no apply without pending migrations")
	assert.Zero(t, m.generates, "no generation without drift")
}

func TestStep_AppliesPendingMigrations(t *testing.T) {
	m := &fakeMigrator{pending: true}
	s := &Step{M: m, Log: testLogger()}

	res, err := s.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, step.StatusApplied, res.Status)
	assert.Equal(t, 1, m.applies)
	assert.Zero(t, m.generates)
}

func TestStep_CapturesAndAppliesDrift(t *testing.T) {
	m := &fakeMigrator{drift: true}
	s := &Step{M: m, Log: testLogger()}

	res, err := s.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, step.StatusApplied, res.Status)
	assert.Equal(t, 1, m.generates)
	assert.Equal(t, 1, m.applies)
}

func TestStep_CheckFailureIsFatal(t *testing.T) {
	m := &fakeMigrator{pendingErr: errors.New("cannot connect")}
	s := &Step{M: m, Log: testLogger()}

	res, err := s.Run(context.Background())
	require.Error(t, err)
	assert.Equal(t, step.StatusFailed, res.Status)
}

func newFrameworkMigrator(f *execx.FakeRunner) *FrameworkMigrator {
	return &FrameworkMigrator{
		Runner:     f,
		Python:     "/srv/app/.venv/bin/python",
		Manage:     "manage.py",
		ProjectDir: "/srv/app",
	}
}

func TestFrameworkMigrator_PendingFromExitStatus(t *testing.T) {
	f := &execx.FakeRunner{
		Results: map[string]execx.FakeResult{
			"/srv/app/.venv/bin/python manage.py migrate --check --noinput": {
				Err: &execx.ExitStatusError{Code: 1},
			},
		},
	}
	m := newFrameworkMigrator(f)

	pending, err := m.Pending(context.Background())
	require.NoError(t, err)
	assert.True(t, pending)
}

func TestFrameworkMigrator_NoPendingOnCleanExit(t *testing.T) {
	f := &execx.FakeRunner{}
	m := newFrameworkMigrator(f)

	pending, err := m.Pending(context.Background())
	require.NoError(t, err)
	assert.False(t, pending)
	assert.True(t, f.Ran("/srv/app/.venv/bin/python manage.py migrate --check --noinput"))
}

func TestFrameworkMigrator_NonExitErrorSurfaces(t *testing.T) {
	f := &execx.FakeRunner{
		Results: map[string]execx.FakeResult{
			"/srv/app/.venv/bin/python manage.py makemigrations --check --dry-run": {
				Err: errors.New("interpreter missing"),
			},
		},
	}
	m := newFrameworkMigrator(f)

	_, err := m.Drift(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "drift check")
}

func TestFrameworkMigrator_ApplyAndGenerateCommands(t *testing.T) {
	f := &execx.FakeRunner{}
	m := newFrameworkMigrator(f)

	require.NoError(t, m.Apply(context.Background()))
	require.NoError(t, m.Generate(context.Background()))

	assert.True(t, f.Ran("/srv/app/.venv/bin/python manage.py migrate --noinput"))
	assert.True(t, f.Ran("/srv/app/.venv/bin/python manage.py makemigrations --noinput"))
	assert.Equal(t, "/srv/app", f.Calls[0].Dir)
}
