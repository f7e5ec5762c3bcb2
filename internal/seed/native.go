package seed

import (
	"context"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/shopercenter/devup/internal/dbx"
	"github.com/shopercenter/devup/internal/postgres"
)

// NativeSeeder manages accounts directly in the application database. It is
// used alongside native SQL migrations, whose account table stores a bcrypt
// password hash by convention: username, password_hash, email, is_admin.
type NativeSeeder struct {
	DB    dbx.DBTX
	Table string
}

func (s *NativeSeeder) AccountExists(ctx context.Context, username string) (bool, error) {
	query := fmt.Sprintf("SELECT EXISTS(SELECT 1 FROM %s WHERE username=$1)", postgres.QuoteIdent(s.Table))

	var exists bool
	if err := s.DB.QueryRowContext(ctx, query, username).Scan(&exists); err != nil {
		return false, fmt.Errorf("account check for %s: %w", username, err)
	}
	return exists, nil
}

func (s *NativeSeeder) CreateAccount(ctx context.Context, acc Account) error {
	hash, err := HashPassword(acc.Password)
	if err != nil {
		return err
	}

	query := fmt.Sprintf(
		"INSERT INTO %s (username, password_hash, email, is_admin, created_at) VALUES ($1, $2, $3, TRUE, NOW())",
		postgres.QuoteIdent(s.Table))

	if _, err := s.DB.ExecContext(ctx, query, acc.Username, hash, acc.Email); err != nil {
		return fmt.Errorf("create account %s: %w", acc.Username, err)
	}
	return nil
}

// HashPassword produces the bcrypt hash stored for native accounts.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}
