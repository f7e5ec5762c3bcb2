// Package serve hands the terminal over to the application's development
// server. The launch replaces the bootstrapper process, so signals reach the
// server directly and no supervision loop is left behind.
package serve

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"syscall"

	"github.com/shopercenter/devup/internal/logging"
)

// ExecFunc replaces the current process image. It only returns on failure.
type ExecFunc func(argv0 string, argv []string, envv []string) error

// Launcher starts the framework development server in the foreground.
type Launcher struct {
	Log        logging.Logger
	Python     string
	Manage     string
	ProjectDir string
	Addr       string

	// Exec defaults to syscall.Exec.
	Exec ExecFunc

	// Chdir defaults to os.Chdir.
	Chdir func(dir string) error
}

// Launch changes into the project directory and replaces the process with
// the development server. On success it never returns.
func (l *Launcher) Launch(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	execFn := l.Exec
	if execFn == nil {
		execFn = syscall.Exec
	}
	chdir := l.Chdir
	if chdir == nil {
		chdir = os.Chdir
	}

	python, err := filepath.Abs(l.Python)
	if err != nil {
		return fmt.Errorf("resolve interpreter path: %w", err)
	}

	if l.ProjectDir != "" && l.ProjectDir != "." {
		if err := chdir(l.ProjectDir); err != nil {
			return fmt.Errorf("enter project directory: %w", err)
		}
	}

	argv := []string{python, l.Manage, "runserver", l.Addr}
	l.Log.Info(ctx, "starting development server", "addr", l.Addr)

	if err := execFn(python, argv, os.Environ()); err != nil {
		return fmt.Errorf("exec development server: %w", err)
	}
	return nil
}
