package migration

import (
	"context"
	"fmt"

	"github.com/shopercenter/devup/internal/execx"
)

// FrameworkMigrator shells out to the application's manage script. The
// check commands signal "work to do" through their exit status.
type FrameworkMigrator struct {
	Runner     execx.Runner
	Python     string
	Manage     string
	ProjectDir string
}

func (m *FrameworkMigrator) manage(args ...string) execx.Cmd {
	full := append([]string{m.Manage}, args...)
	return execx.Command(m.Python, full...).InDir(m.ProjectDir)
}

func (m *FrameworkMigrator) Pending(ctx context.Context) (bool, error) {
	_, err := m.Runner.Output(ctx, m.manage("migrate", "--check", "--noinput"))
	return checkResult(err, "pending-migration check")
}

func (m *FrameworkMigrator) Apply(ctx context.Context) error {
	return m.Runner.Run(ctx, m.manage("migrate", "--noinput"))
}

func (m *FrameworkMigrator) Drift(ctx context.Context) (bool, error) {
	_, err := m.Runner.Output(ctx, m.manage("makemigrations", "--check", "--dry-run"))
	return checkResult(err, "drift check")
}

func (m *FrameworkMigrator) Generate(ctx context.Context) error {
	return m.Runner.Run(ctx, m.manage("makemigrations", "--noinput"))
}

// checkResult interprets a check command's outcome: success means nothing to
// do, a non-zero exit means work to do, anything else is a real failure.
func checkResult(err error, op string) (bool, error) {
	if err == nil {
		return false, nil
	}
	if _, ok := execx.ExitCode(err); ok {
		return true, nil
	}
	return false, fmt.Errorf("%s: %w", op, err)
}
