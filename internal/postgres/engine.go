// Package postgres provisions the database engine for the bootstrap: client
// presence, package installation, service startup, readiness probing, and
// role/database creation in socket or remote-admin mode.
package postgres

import (
	"context"
	"fmt"

	"github.com/shopercenter/devup/internal/common"
	"github.com/shopercenter/devup/internal/execx"
	"github.com/shopercenter/devup/internal/logging"
	"github.com/shopercenter/devup/internal/step"
)

// packageManagers lists the host package managers probed in order, with the
// commands that install the engine through each.
var packageManagers = []struct {
	binary   string
	commands []execx.Cmd
}{
	{"apt-get", []execx.Cmd{
		execx.Command("sudo", "apt-get", "update"),
		execx.Command("sudo", "apt-get", "install", "-y", "postgresql", "postgresql-contrib"),
	}},
	{"dnf", []execx.Cmd{
		execx.Command("sudo", "dnf", "install", "-y", "postgresql-server", "postgresql"),
	}},
	{"yum", []execx.Cmd{
		execx.Command("sudo", "yum", "install", "-y", "postgresql-server", "postgresql"),
	}},
	{"brew", []execx.Cmd{
		execx.Command("brew", "install", "postgresql"),
	}},
}

// serviceStarts lists service-supervision mechanisms tried in sequence until
// one succeeds. None of them failing fails the step; readiness is verified
// separately.
var serviceStarts = []execx.Cmd{
	execx.Command("sudo", "systemctl", "start", "postgresql"),
	execx.Command("sudo", "service", "postgresql", "start"),
	execx.Command("brew", "services", "start", "postgresql"),
}

// EngineStep makes sure the engine is installed and asked to start. In
// remote mode the engine lives elsewhere and the step is skipped.
type EngineStep struct {
	Runner execx.Runner
	Log    logging.Logger
	Remote bool
}

func (s *EngineStep) Name() string { return "database engine" }

func (s *EngineStep) Run(ctx context.Context) (step.Result, error) {
	if s.Remote {
		return step.Skipped("remote database host; engine not managed locally"), nil
	}

	installed := false
	if _, err := s.Runner.LookPath("psql"); err != nil {
		s.Log.Info(ctx, "engine client not found, installing")
		if err := s.install(ctx); err != nil {
			return step.Failed("engine installation failed"), err
		}
		installed = true
	}

	s.startService(ctx)

	if installed {
		return step.Applied("engine installed and service start requested"), nil
	}
	return step.Satisfied("engine client already present"), nil
}

func (s *EngineStep) install(ctx context.Context) error {
	for _, pm := range packageManagers {
		if _, err := s.Runner.LookPath(pm.binary); err != nil {
			continue
		}
		s.Log.Info(ctx, "installing engine", "package_manager", pm.binary)
		for _, cmd := range pm.commands {
			if err := s.Runner.Run(ctx, cmd); err != nil {
				return fmt.Errorf("install via %s: %w", pm.binary, err)
			}
		}
		return nil
	}
	return common.ErrNoPackageManager
}

func (s *EngineStep) startService(ctx context.Context) {
	for _, cmd := range serviceStarts {
		if err := s.Runner.Run(ctx, cmd); err != nil {
			s.Log.Debug(ctx, "service start attempt failed", "command", cmd.String(), "error", err)
			continue
		}
		s.Log.Info(ctx, "engine service start requested", "command", cmd.String())
		return
	}
	s.Log.Warn(ctx, "no service manager could start the engine; it may already be running")
}
