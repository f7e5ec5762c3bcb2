// Package seed ensures the privileged application accounts exist: the
// optional environment-supplied superuser and the fixed fallback admin.
package seed

import (
	"context"

	"github.com/shopercenter/devup/internal/logging"
	"github.com/shopercenter/devup/internal/step"
)

// Fallback administrative credentials, created when absent so a development
// install is always reachable. Well-known by design; never expose such an
// install publicly.
const (
	FallbackUsername = "admin"
	FallbackPassword = "admin"
	FallbackEmail    = "admin@localhost"
)

// Account is a privileged application account to ensure.
type Account struct {
	Username string
	Password string
	Email    string
}

// Seeder checks for and creates privileged accounts.
type Seeder interface {
	AccountExists(ctx context.Context, username string) (bool, error)
	CreateAccount(ctx context.Context, acc Account) error
}

// Step creates the environment-supplied superuser when configured (errors
// ignored: it commonly already exists) and then ensures the fallback admin.
type Step struct {
	Seeder Seeder
	Log    logging.Logger

	// Extra is the optional environment-supplied account; nil when the
	// credentials were not provided.
	Extra *Account
}

func (s *Step) Name() string { return "privileged accounts" }

func (s *Step) Run(ctx context.Context) (step.Result, error) {
	created := false

	if s.Extra != nil {
		acc := *s.Extra
		if acc.Email == "" {
			acc.Email = acc.Username + "@localhost"
		}
		if err := s.Seeder.CreateAccount(ctx, acc); err != nil {
			s.Log.Warn(ctx, "superuser creation failed, ignoring",
				"username", acc.Username, "error", err)
		} else {
			s.Log.Info(ctx, "superuser created", "username", acc.Username)
			created = true
		}
	}

	exists, err := s.Seeder.AccountExists(ctx, FallbackUsername)
	if err != nil {
		return step.Failed("fallback admin check failed"), err
	}
	if !exists {
		fallback := Account{
			Username: FallbackUsername,
			Password: FallbackPassword,
			Email:    FallbackEmail,
		}
		if err := s.Seeder.CreateAccount(ctx, fallback); err != nil {
			return step.Failed("fallback admin creation failed"), err
		}
		s.Log.Info(ctx, "fallback admin created", "username", FallbackUsername)
		created = true
	}

	if !created {
		return step.Satisfied("privileged accounts already exist"), nil
	}
	return step.Applied("privileged accounts ensured"), nil
}
