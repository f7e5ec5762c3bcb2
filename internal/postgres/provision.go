package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/shopercenter/devup/internal/common"
	"github.com/shopercenter/devup/internal/dbx"
	"github.com/shopercenter/devup/internal/execx"
	"github.com/shopercenter/devup/internal/logging"
	"github.com/shopercenter/devup/internal/step"
)

// Provisioner checks for and creates the application role and database.
// Creation reports common.ErrAlreadyExists when losing a check-then-create
// race; callers treat that as satisfied.
type Provisioner interface {
	// Ping confirms the engine accepts administrative connections. A
	// failure wraps common.ErrEngineNotReady.
	Ping(ctx context.Context) error

	RoleExists(ctx context.Context, role string) (bool, error)
	CreateRole(ctx context.Context, role, password string) error
	DatabaseExists(ctx context.Context, name string) (bool, error)
	CreateDatabase(ctx context.Context, name, owner string) error
}

// SocketProvisioner drives the local engine through the operating-system
// superuser account, the way local engine installs authenticate by default.
type SocketProvisioner struct {
	Runner execx.Runner
}

func (p *SocketProvisioner) psql(ctx context.Context, query string) (string, error) {
	return p.Runner.Output(ctx, execx.Command("sudo", "-u", "postgres", "psql", "-tAc", query))
}

func (p *SocketProvisioner) Ping(ctx context.Context) error {
	if _, err := p.psql(ctx, "SELECT 1"); err != nil {
		return fmt.Errorf("%w: %v", common.ErrEngineNotReady, err)
	}
	return nil
}

func (p *SocketProvisioner) RoleExists(ctx context.Context, role string) (bool, error) {
	out, err := p.psql(ctx, fmt.Sprintf("SELECT 1 FROM pg_roles WHERE rolname=%s", QuoteLiteral(role)))
	if err != nil {
		return false, fmt.Errorf("check role %s: %w", role, err)
	}
	return out == "1", nil
}

func (p *SocketProvisioner) CreateRole(ctx context.Context, role, password string) error {
	stmt := fmt.Sprintf("CREATE ROLE %s WITH LOGIN PASSWORD %s", QuoteIdent(role), QuoteLiteral(password))
	if _, err := p.psql(ctx, stmt); err != nil {
		return wrapDuplicate(err, fmt.Sprintf("create role %s", role))
	}
	return nil
}

func (p *SocketProvisioner) DatabaseExists(ctx context.Context, name string) (bool, error) {
	out, err := p.psql(ctx, fmt.Sprintf("SELECT 1 FROM pg_database WHERE datname=%s", QuoteLiteral(name)))
	if err != nil {
		return false, fmt.Errorf("check database %s: %w", name, err)
	}
	return out == "1", nil
}

func (p *SocketProvisioner) CreateDatabase(ctx context.Context, name, owner string) error {
	stmt := fmt.Sprintf("CREATE DATABASE %s OWNER %s", QuoteIdent(name), QuoteIdent(owner))
	if _, err := p.psql(ctx, stmt); err != nil {
		return wrapDuplicate(err, fmt.Sprintf("create database %s", name))
	}
	return nil
}

// AdminProvisioner drives a remote engine over an administrative connection.
type AdminProvisioner struct {
	DB dbx.DBTX
}

func (p *AdminProvisioner) Ping(ctx context.Context) error {
	var one int
	if err := p.DB.QueryRowContext(ctx, "SELECT 1").Scan(&one); err != nil {
		return fmt.Errorf("%w: %v", common.ErrEngineNotReady, err)
	}
	return nil
}

func (p *AdminProvisioner) RoleExists(ctx context.Context, role string) (bool, error) {
	var exists bool
	err := p.DB.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM pg_roles WHERE rolname=$1)", role).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check role %s: %w", role, err)
	}
	return exists, nil
}

func (p *AdminProvisioner) CreateRole(ctx context.Context, role, password string) error {
	stmt := fmt.Sprintf("CREATE ROLE %s WITH LOGIN PASSWORD %s", QuoteIdent(role), QuoteLiteral(password))
	if _, err := p.DB.ExecContext(ctx, stmt); err != nil {
		return wrapDuplicate(err, fmt.Sprintf("create role %s", role))
	}
	return nil
}

func (p *AdminProvisioner) DatabaseExists(ctx context.Context, name string) (bool, error) {
	var exists bool
	err := p.DB.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM pg_database WHERE datname=$1)", name).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check database %s: %w", name, err)
	}
	return exists, nil
}

func (p *AdminProvisioner) CreateDatabase(ctx context.Context, name, owner string) error {
	stmt := fmt.Sprintf("CREATE DATABASE %s OWNER %s", QuoteIdent(name), QuoteIdent(owner))
	if _, err := p.DB.ExecContext(ctx, stmt); err != nil {
		return wrapDuplicate(err, fmt.Sprintf("create database %s", name))
	}
	return nil
}

// wrapDuplicate maps the engine's duplicate-object errors to
// common.ErrAlreadyExists, covering both the SQLSTATE surfaced by the driver
// and the message printed by the psql client.
func wrapDuplicate(err error, op string) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// 42710 duplicate_object, 42P04 duplicate_database
		if pgErr.Code == "42710" || pgErr.Code == "42P04" {
			return fmt.Errorf("%s: %w", op, common.ErrAlreadyExists)
		}
	}
	if strings.Contains(err.Error(), "already exists") {
		return fmt.Errorf("%s: %w", op, common.ErrAlreadyExists)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// EnsureStep makes sure the application role and database exist, creating
// whichever is missing. Fatal if the engine is confirmed not ready here.
type EnsureStep struct {
	Prov     Provisioner
	Log      logging.Logger
	Role     string
	Password string
	Database string
}

func (s *EnsureStep) Name() string { return "role and database" }

func (s *EnsureStep) Run(ctx context.Context) (step.Result, error) {
	if err := s.Prov.Ping(ctx); err != nil {
		return step.Failed("engine not ready"), err
	}

	var created []string

	roleExists, err := s.Prov.RoleExists(ctx, s.Role)
	if err != nil {
		return step.Failed("role check failed"), err
	}
	if !roleExists {
		if err := s.Prov.CreateRole(ctx, s.Role, s.Password); err != nil && !errors.Is(err, common.ErrAlreadyExists) {
			return step.Failed("role creation failed"), err
		}
		created = append(created, "role "+s.Role)
		s.Log.Info(ctx, "role created", "role", s.Role)
	}

	dbExists, err := s.Prov.DatabaseExists(ctx, s.Database)
	if err != nil {
		return step.Failed("database check failed"), err
	}
	if !dbExists {
		if err := s.Prov.CreateDatabase(ctx, s.Database, s.Role); err != nil && !errors.Is(err, common.ErrAlreadyExists) {
			return step.Failed("database creation failed"), err
		}
		created = append(created, "database "+s.Database)
		s.Log.Info(ctx, "database created", "database", s.Database, "owner", s.Role)
	}

	if len(created) == 0 {
		return step.Satisfied("role and database already exist"), nil
	}
	return step.Applied("created " + strings.Join(created, ", ")), nil
}
