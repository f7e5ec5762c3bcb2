// Package pyenv manages the application's isolated runtime environment: the
// virtualenv directory and the declared dependency set.
package pyenv

import (
	"context"
	"fmt"

	"github.com/shopercenter/devup/internal/execx"
	"github.com/shopercenter/devup/internal/filex"
	"github.com/shopercenter/devup/internal/logging"
	"github.com/shopercenter/devup/internal/step"
)

// EnsureStep creates the isolated environment if its directory is absent and
// reinstalls the declared dependencies on every run. Dependency installation
// is deliberately not skipped: the manifest may have changed since the last
// bootstrap.
type EnsureStep struct {
	Runner       execx.Runner
	Log          logging.Logger
	VenvDir      string
	PipBin       string
	Requirements string
	ProjectDir   string
}

func (s *EnsureStep) Name() string { return "runtime environment" }

func (s *EnsureStep) Run(ctx context.Context) (step.Result, error) {
	created := false
	if !filex.DirExists(s.VenvDir) {
		s.Log.Info(ctx, "creating isolated environment", "dir", s.VenvDir)
		cmd := execx.Command("python3", "-m", "venv", s.VenvDir).InDir(s.ProjectDir)
		if err := s.Runner.Run(ctx, cmd); err != nil {
			return step.Failed("environment creation failed"), err
		}
		created = true
	}

	install := execx.Command(s.PipBin, "install", "-r", s.Requirements).InDir(s.ProjectDir)
	if err := s.Runner.Run(ctx, install); err != nil {
		return step.Failed("dependency installation failed"), fmt.Errorf("install dependencies: %w", err)
	}

	if created {
		return step.Applied("environment created, dependencies installed"), nil
	}
	return step.Applied("environment reused, dependencies reinstalled"), nil
}
