// Package frontend builds the application's compiled CSS when a frontend
// project descriptor is present.
package frontend

import (
	"context"
	"path/filepath"

	"github.com/shopercenter/devup/internal/execx"
	"github.com/shopercenter/devup/internal/filex"
	"github.com/shopercenter/devup/internal/logging"
	"github.com/shopercenter/devup/internal/step"
)

const descriptor = "package.json"

// BuildStep installs frontend dependencies and runs the CSS build. The step
// is best-effort: a development server can run with stale or missing
// compiled CSS, so failures are logged and swallowed by the runner.
type BuildStep struct {
	Runner     execx.Runner
	Log        logging.Logger
	ProjectDir string
	BuildTask  string
}

func (s *BuildStep) Name() string { return "frontend assets" }

func (s *BuildStep) BestEffort() bool { return true }

func (s *BuildStep) Run(ctx context.Context) (step.Result, error) {
	if !filex.FileExists(filepath.Join(s.ProjectDir, descriptor)) {
		return step.Skipped("no " + descriptor + " present"), nil
	}

	if err := s.Runner.Run(ctx, execx.Command("npm", "install").InDir(s.ProjectDir)); err != nil {
		return step.Failed("npm install failed"), err
	}

	task := s.BuildTask
	if task == "" {
		task = "build:css"
	}
	if err := s.Runner.Run(ctx, execx.Command("npm", "run", task).InDir(s.ProjectDir)); err != nil {
		return step.Failed("css build failed"), err
	}

	return step.Applied("frontend dependencies installed, css built"), nil
}
