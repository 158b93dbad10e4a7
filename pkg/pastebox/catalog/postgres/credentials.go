package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// Credentials persists the single shared password hash in the catalog's
// database.
type Credentials struct {
	db DBTX
}

// PasswordHash returns the stored hash, or "" when no password is set yet.
func (c *Credentials) PasswordHash(ctx context.Context) (string, error) {
	var hash string
	err := c.db.QueryRow(ctx, `SELECT hash FROM credentials WHERE id = 1`).Scan(&hash)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get password hash: %w", err)
	}
	return hash, nil
}

// SetPasswordHash replaces the stored hash.
func (c *Credentials) SetPasswordHash(ctx context.Context, hash string) error {
	_, err := c.db.Exec(ctx, `
		INSERT INTO credentials (id, hash) VALUES (1, $1)
		ON CONFLICT (id) DO UPDATE SET hash = EXCLUDED.hash`, hash)
	if err != nil {
		return fmt.Errorf("set password hash: %w", err)
	}
	return nil
}
