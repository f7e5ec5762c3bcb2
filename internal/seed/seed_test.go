package seed

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/shopercenter/devup/internal/execx"
	"github.com/shopercenter/devup/internal/logging"
	"github.com/shopercenter/devup/internal/step"
)

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// fakeSeeder scripts account state and records creations.
type fakeSeeder struct {
	existing  map[string]bool
	created   []Account
	createErr map[string]error
}

func (f *fakeSeeder) AccountExists(_ context.Context, username string) (bool, error) {
	return f.existing[username], nil
}

func (f *fakeSeeder) CreateAccount(_ context.Context, acc Account) error {
	if err := f.createErr[acc.Username]; err != nil {
		return err
	}
	f.created = append(f.created, acc)
	f.existing[acc.Username] = true
	return nil
}

func TestStep_CreatesFallbackWhenAbsent(t *testing.T) {
	f := &fakeSeeder{existing: map[string]bool{}}
	s := &Step{Seeder: f, Log: testLogger()}

	res, err := s.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, step.StatusApplied, res.Status)
	require.Len(t, f.created, 1, "exactly one account must be created")
	assert.Equal(t, FallbackUsername, f.created[0].Username)
	assert.Equal(t, FallbackPassword, f.created[0].Password)
}

func TestStep_FallbackPresentIsSatisfied(t *testing.T) {
	f := &fakeSeeder{existing: map[string]bool{FallbackUsername: true}}
	s := &Step{Seeder: f, Log: testLogger()}

	res, err := s.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, step.StatusSatisfied, res.Status)
	assert.Empty(t, f.created, "no second account may be created")
}

func TestStep_SecondRunIsNoOp(t *testing.T) {
	f := &fakeSeeder{existing: map[string]bool{}}
	s := &Step{Seeder: f, Log: testLogger()}

	_, err := s.Run(context.Background())
	require.NoError(t, err)

	res, err := s.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, step.StatusSatisfied, res.Status)
	assert.Len(t, f.created, 1)
}

func TestStep_ExtraAccountCreated(t *testing.T) {
	f := &fakeSeeder{existing: map[string]bool{FallbackUsername: true}}
	s := &Step{
		Seeder: f, Log: testLogger(),
		Extra: &Account{Username: "ops", Password: "opspass"},
	}

	res, err := s.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, step.StatusApplied, res.Status)
	require.Len(t, f.created, 1)
	assert.Equal(t, "ops", f.created[0].Username)
	assert.Equal(t, "ops@localhost", f.created[0].Email, "email defaults from the username")
}

func TestStep_ExtraAccountFailureIsIgnored(t *testing.T) {
	f := &fakeSeeder{
		existing:  map[string]bool{FallbackUsername: true},
		createErr: map[string]error{"ops": errors.New("already exists")},
	}
	s := &Step{
		Seeder: f, Log: testLogger(),
		Extra: &Account{Username: "ops", Password: "opspass"},
	}

	res, err := s.Run(context.Background())
	require.NoError(t, err, "superuser creation errors are swallowed")
	assert.Equal(t, step.StatusSatisfied, res.Status)
}

func TestStep_FallbackFailureIsFatal(t *testing.T) {
	f := &fakeSeeder{
		existing:  map[string]bool{},
		createErr: map[string]error{FallbackUsername: errors.New("table missing")},
	}
	s := &Step{Seeder: f, Log: testLogger()}

	res, err := s.Run(context.Background())
	require.Error(t, err)
	assert.Equal(t, step.StatusFailed, res.Status)
}

func newFrameworkSeeder(f *execx.FakeRunner) *FrameworkSeeder {
	return &FrameworkSeeder{
		Runner:     f,
		Python:     "/srv/app/.venv/bin/python",
		Manage:     "manage.py",
		ProjectDir: "/srv/app",
	}
}

func TestFrameworkSeeder_AccountExistsExitCodes(t *testing.T) {
	f := &execx.FakeRunner{}
	s := newFrameworkSeeder(f)

	// Unscripted command exits 0: the account exists.
	exists, err := s.AccountExists(context.Background(), "admin")
	require.NoError(t, err)
	assert.True(t, exists)

	// Exit 1 means absent, not an error.
	f.Results = map[string]execx.FakeResult{
		f.Calls[0].String(): {Err: &execx.ExitStatusError{Code: 1}},
	}
	exists, err = s.AccountExists(context.Background(), "admin")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestFrameworkSeeder_CreateAccountPassesPasswordViaEnv(t *testing.T) {
	f := &execx.FakeRunner{}
	s := newFrameworkSeeder(f)

	err := s.CreateAccount(context.Background(), Account{
		Username: "admin", Password: "admin", Email: "admin@localhost",
	})
	require.NoError(t, err)

	require.Len(t, f.Calls, 1)
	call := f.Calls[0]
	assert.Equal(t,
		"/srv/app/.venv/bin/python manage.py createsuperuser --noinput --username admin --email admin@localhost",
		call.String())
	assert.Contains(t, call.Env, "DJANGO_SUPERUSER_PASSWORD=admin")
	assert.Equal(t, "/srv/app", call.Dir)
}

func TestHashPassword_VerifiableWithBcrypt(t *testing.T) {
	hash, err := HashPassword("admin")
	require.NoError(t, err)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("admin")))
	require.Error(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("wrong")))
}
