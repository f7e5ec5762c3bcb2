// Package app assembles the bootstrap sequence from configuration: which
// steps run, in what order, and against which backends (local socket vs
// remote engine, framework vs native SQL migrations).
package app

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/shopercenter/devup/internal/config"
	"github.com/shopercenter/devup/internal/execx"
	"github.com/shopercenter/devup/internal/frontend"
	"github.com/shopercenter/devup/internal/logging"
	"github.com/shopercenter/devup/internal/migration"
	"github.com/shopercenter/devup/internal/postgres"
	"github.com/shopercenter/devup/internal/pyenv"
	"github.com/shopercenter/devup/internal/seed"
	"github.com/shopercenter/devup/internal/serve"
	"github.com/shopercenter/devup/internal/step"
)

// App wires one bootstrap invocation together. Step builders are separate so
// subcommands can run a single phase of the sequence.
type App struct {
	Cfg    *config.Config
	Log    logging.Logger
	Runner execx.Runner
	RunID  string

	closers []func() error
}

// New builds an App running external commands on the host. Every log line of
// the invocation carries the generated run identifier.
func New(cfg *config.Config, log logging.Logger) *App {
	runID := uuid.NewString()
	return &App{
		Cfg:    cfg,
		Log:    log.With("run_id", runID),
		Runner: execx.NewOSRunner(),
		RunID:  runID,
	}
}

// Close releases database handles opened by step builders.
func (a *App) Close() error {
	var errs []error
	for _, c := range a.closers {
		if err := c(); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

// EngineStep installs and starts the local database engine. In remote mode
// the engine is not ours to manage and the step reports skipped.
func (a *App) EngineStep() step.Step {
	return &postgres.EngineStep{
		Runner: a.Runner,
		Log:    a.Log,
		Remote: a.Cfg.RemoteMode(),
	}
}

// ReadyStep polls the engine until it accepts connections.
func (a *App) ReadyStep() step.Step {
	return &postgres.WaitReadyStep{
		Runner: a.Runner,
		Log:    a.Log,
		Host:   a.Cfg.DB.Host,
		Port:   a.Cfg.DB.Port,
	}
}

// DatabaseStep ensures the application role and database exist. Socket mode
// provisions through the local superuser account; remote mode opens an
// administrative connection.
func (a *App) DatabaseStep() (step.Step, error) {
	var prov postgres.Provisioner
	if a.Cfg.RemoteMode() {
		db, err := sql.Open("pgx", a.Cfg.AdminDSN())
		if err != nil {
			return nil, fmt.Errorf("open admin connection: %w", err)
		}
		a.closers = append(a.closers, db.Close)
		prov = &postgres.AdminProvisioner{DB: db}
	} else {
		prov = &postgres.SocketProvisioner{Runner: a.Runner}
	}
	return &postgres.EnsureStep{
		Prov:     prov,
		Log:      a.Log,
		Role:     a.Cfg.DB.User,
		Password: a.Cfg.DB.Password,
		Database: a.Cfg.DB.Name,
	}, nil
}

// DepsStep ensures the isolated runtime environment and its dependencies.
func (a *App) DepsStep() step.Step {
	return &pyenv.EnsureStep{
		Runner:       a.Runner,
		Log:          a.Log,
		VenvDir:      a.Cfg.VenvPath(),
		PipBin:       a.Cfg.PipBin(),
		Requirements: a.Cfg.Project.Requirements,
		ProjectDir:   a.Cfg.Project.Dir,
	}
}

// AssetsStep builds frontend assets when the project ships any.
func (a *App) AssetsStep() step.Step {
	return &frontend.BuildStep{
		Runner:     a.Runner,
		Log:        a.Log,
		ProjectDir: a.Cfg.Project.Dir,
	}
}

// MigrateStep brings the schema up to date, through the framework's
// migration command or, when a migration directory is configured, by
// applying plain SQL migrations directly.
func (a *App) MigrateStep() (step.Step, error) {
	var m migration.Migrator
	if a.Cfg.NativeMigrations() {
		gm, err := migration.NewGooseMigrator(a.Cfg.AppDSN(), a.Cfg.MigrationsPath())
		if err != nil {
			return nil, fmt.Errorf("prepare migrations: %w", err)
		}
		a.closers = append(a.closers, gm.Close)
		m = gm
	} else {
		m = &migration.FrameworkMigrator{
			Runner:     a.Runner,
			Python:     a.Cfg.PythonBin(),
			Manage:     a.Cfg.Project.ManageScript,
			ProjectDir: a.Cfg.Project.Dir,
		}
	}
	return &migration.Step{M: m, Log: a.Log}, nil
}

// SeedStep ensures the privileged accounts exist. Account management goes
// through the framework unless native SQL migrations are in use, in which
// case accounts live in the configured table.
func (a *App) SeedStep() (step.Step, error) {
	var seeder seed.Seeder
	if a.Cfg.NativeMigrations() {
		db, err := sql.Open("pgx", a.Cfg.AppDSN())
		if err != nil {
			return nil, fmt.Errorf("open application connection: %w", err)
		}
		a.closers = append(a.closers, db.Close)
		seeder = &seed.NativeSeeder{DB: db, Table: a.Cfg.Project.UsersTable}
	} else {
		seeder = &seed.FrameworkSeeder{
			Runner:     a.Runner,
			Python:     a.Cfg.PythonBin(),
			Manage:     a.Cfg.Project.ManageScript,
			ProjectDir: a.Cfg.Project.Dir,
		}
	}

	s := &seed.Step{Seeder: seeder, Log: a.Log}
	if a.Cfg.SeedRequested() {
		s.Extra = &seed.Account{
			Username: a.Cfg.Superuser.Username,
			Password: a.Cfg.Superuser.Password,
			Email:    a.Cfg.Superuser.Email,
		}
	}
	return s, nil
}

// Launcher hands the terminal over to the development server.
func (a *App) Launcher() *serve.Launcher {
	return &serve.Launcher{
		Log:        a.Log,
		Python:     a.Cfg.PythonBin(),
		Manage:     a.Cfg.Project.ManageScript,
		ProjectDir: a.Cfg.Project.Dir,
		Addr:       a.Cfg.ServeAddr,
	}
}

// Steps builds the full bootstrap sequence in order.
func (a *App) Steps() ([]step.Step, error) {
	dbStep, err := a.DatabaseStep()
	if err != nil {
		return nil, err
	}
	migrateStep, err := a.MigrateStep()
	if err != nil {
		return nil, err
	}
	seedStep, err := a.SeedStep()
	if err != nil {
		return nil, err
	}
	return []step.Step{
		a.EngineStep(),
		a.ReadyStep(),
		dbStep,
		a.DepsStep(),
		a.AssetsStep(),
		migrateStep,
		seedStep,
	}, nil
}
