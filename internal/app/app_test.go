package app

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shopercenter/devup/internal/config"
	"github.com/shopercenter/devup/internal/logging"
	"github.com/shopercenter/devup/internal/migration"
	"github.com/shopercenter/devup/internal/postgres"
	"github.com/shopercenter/devup/internal/seed"
)

func testApp(t *testing.T, mutate func(*config.Config)) *App {
	t.Helper()
	cfg := &config.Config{}
	cfg.LoadDefaults()
	if mutate != nil {
		mutate(cfg)
	}
	log := logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	a := New(cfg, log)
	t.Cleanup(func() { _ = a.Close() })
	return a
}

func TestSteps_OrderMatchesBootstrapSequence(t *testing.T) {
	a := testApp(t, nil)

	steps, err := a.Steps()
	require.NoError(t, err)

	names := make([]string, 0, len(steps))
	for _, s := range steps {
		names = append(names, s.Name())
	}
	assert.Equal(t, []string{
		"database engine",
		"engine readiness",
		"role and database",
		"runtime environment",
		"frontend assets",
		"schema migrations",
		"privileged accounts",
	}, names)
}

func TestSteps_SocketModeDefaults(t *testing.T) {
	a := testApp(t, nil)

	engine, ok := a.EngineStep().(*postgres.EngineStep)
	require.True(t, ok)
	assert.False(t, engine.Remote)

	dbStep, err := a.DatabaseStep()
	require.NoError(t, err)
	ensure, ok := dbStep.(*postgres.EnsureStep)
	require.True(t, ok)
	assert.IsType(t, &postgres.SocketProvisioner{}, ensure.Prov)
	assert.Equal(t, "shopercenter", ensure.Role)
	assert.Equal(t, "shopercenter", ensure.Database)
}

func TestSteps_RemoteModeUsesAdminConnection(t *testing.T) {
	a := testApp(t, func(cfg *config.Config) {
		cfg.DB.Host = "db.internal"
		cfg.DB.AdminPassword = "secret"
	})

	engine, ok := a.EngineStep().(*postgres.EngineStep)
	require.True(t, ok)
	assert.True(t, engine.Remote)

	dbStep, err := a.DatabaseStep()
	require.NoError(t, err)
	ensure := dbStep.(*postgres.EnsureStep)
	assert.IsType(t, &postgres.AdminProvisioner{}, ensure.Prov)
}

func TestSteps_FrameworkBackendsByDefault(t *testing.T) {
	a := testApp(t, func(cfg *config.Config) {
		cfg.Project.Dir = "/srv/app"
	})

	migrateStep, err := a.MigrateStep()
	require.NoError(t, err)
	m := migrateStep.(*migration.Step)
	fm, ok := m.M.(*migration.FrameworkMigrator)
	require.True(t, ok)
	assert.Equal(t, "/srv/app/.venv/bin/python", fm.Python)
	assert.Equal(t, "manage.py", fm.Manage)

	seedStep, err := a.SeedStep()
	require.NoError(t, err)
	s := seedStep.(*seed.Step)
	assert.IsType(t, &seed.FrameworkSeeder{}, s.Seeder)
	assert.Nil(t, s.Extra, "no superuser credentials were supplied")
}

func TestSteps_NativeBackendsWhenMigrationsDirSet(t *testing.T) {
	a := testApp(t, func(cfg *config.Config) {
		cfg.Project.MigrationsDir = "migrations"
		cfg.Project.UsersTable = "accounts"
	})

	migrateStep, err := a.MigrateStep()
	require.NoError(t, err)
	m := migrateStep.(*migration.Step)
	assert.IsType(t, &migration.GooseMigrator{}, m.M)

	seedStep, err := a.SeedStep()
	require.NoError(t, err)
	s := seedStep.(*seed.Step)
	native, ok := s.Seeder.(*seed.NativeSeeder)
	require.True(t, ok)
	assert.Equal(t, "accounts", native.Table)
}

func TestSeedStep_ExtraAccountFromConfig(t *testing.T) {
	a := testApp(t, func(cfg *config.Config) {
		cfg.Superuser.Username = "boss"
		cfg.Superuser.Password = "bosspass"
		cfg.Superuser.Email = "boss@example.com"
	})

	seedStep, err := a.SeedStep()
	require.NoError(t, err)
	s := seedStep.(*seed.Step)
	require.NotNil(t, s.Extra)
	assert.Equal(t, "boss", s.Extra.Username)
	assert.Equal(t, "boss@example.com", s.Extra.Email)
}

func TestLauncher_FromConfig(t *testing.T) {
	a := testApp(t, func(cfg *config.Config) {
		cfg.Project.Dir = "/srv/app"
		cfg.ServeAddr = "127.0.0.1:9000"
	})

	l := a.Launcher()
	assert.Equal(t, "/srv/app/.venv/bin/python", l.Python)
	assert.Equal(t, "manage.py", l.Manage)
	assert.Equal(t, "/srv/app", l.ProjectDir)
	assert.Equal(t, "127.0.0.1:9000", l.Addr)
}

func TestRunID_Distinct(t *testing.T) {
	a := testApp(t, nil)
	b := testApp(t, nil)
	assert.NotEmpty(t, a.RunID)
	assert.NotEqual(t, a.RunID, b.RunID)
}
