package seed

import (
	"context"
	"fmt"

	"github.com/shopercenter/devup/internal/execx"
)

// FrameworkSeeder manages accounts through the application's manage script.
type FrameworkSeeder struct {
	Runner     execx.Runner
	Python     string
	Manage     string
	ProjectDir string
}

func (s *FrameworkSeeder) manage(args ...string) execx.Cmd {
	full := append([]string{s.Manage}, args...)
	return execx.Command(s.Python, full...).InDir(s.ProjectDir)
}

// AccountExists asks the application whether the account is present. The
// shell snippet exits 0 when it exists and 1 when it does not.
func (s *FrameworkSeeder) AccountExists(ctx context.Context, username string) (bool, error) {
	snippet := fmt.Sprintf(
		"import sys; from django.contrib.auth import get_user_model; "+
			"sys.exit(0 if get_user_model().objects.filter(username=%q).exists() else 1)",
		username)

	_, err := s.Runner.Output(ctx, s.manage("shell", "-c", snippet))
	if err == nil {
		return true, nil
	}
	if code, ok := execx.ExitCode(err); ok && code == 1 {
		return false, nil
	}
	return false, fmt.Errorf("account check for %s: %w", username, err)
}

func (s *FrameworkSeeder) CreateAccount(ctx context.Context, acc Account) error {
	cmd := s.manage("createsuperuser", "--noinput",
		"--username", acc.Username, "--email", acc.Email).
		WithEnv("DJANGO_SUPERUSER_PASSWORD=" + acc.Password)

	if err := s.Runner.Run(ctx, cmd); err != nil {
		return fmt.Errorf("create account %s: %w", acc.Username, err)
	}
	return nil
}
