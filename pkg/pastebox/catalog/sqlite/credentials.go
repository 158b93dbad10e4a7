package sqlite

import (
	"context"
	"database/sql"
	"fmt"
)

// Credentials persists the single shared password hash in the catalog's
// database. The hash is checked and replaced wholesale; there is no
// per-user identity.
type Credentials struct {
	db *sql.DB
}

// PasswordHash returns the stored hash, or "" when no password is set yet.
func (c *Credentials) PasswordHash(ctx context.Context) (string, error) {
	var hash string
	err := c.db.QueryRowContext(ctx, `SELECT hash FROM credentials WHERE id = 1`).Scan(&hash)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get password hash: %w", err)
	}
	return hash, nil
}

// SetPasswordHash replaces the stored hash.
func (c *Credentials) SetPasswordHash(ctx context.Context, hash string) error {
	_, err := c.db.ExecContext(ctx, `
		INSERT INTO credentials (id, hash) VALUES (1, ?)
		ON CONFLICT (id) DO UPDATE SET hash = excluded.hash`, hash)
	if err != nil {
		return fmt.Errorf("set password hash: %w", err)
	}
	return nil
}
