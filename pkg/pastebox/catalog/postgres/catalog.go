// Package postgres provides a pastebox.Catalog backed by PostgreSQL for
// deployments that already run one.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pastebox/pastebox/pkg/pastebox"
)

// DBTX is an interface that allows us to use either a database connection or a transaction
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// Schema is the DDL for the catalog's tables. BIGSERIAL assigns
// monotonically increasing identifiers; sequences never reuse values.
const Schema = `
CREATE TABLE IF NOT EXISTS items (
  id BIGSERIAL PRIMARY KEY,
  stored_name TEXT NOT NULL,
  display_name TEXT NOT NULL,
  content_type TEXT NOT NULL,
  size_bytes BIGINT NOT NULL,
  inline_content TEXT NOT NULL DEFAULT '',
  thumbnail_name TEXT NOT NULL DEFAULT '',
  created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_items_created_at ON items (created_at DESC, id DESC);

CREATE TABLE IF NOT EXISTS credentials (
  id INT PRIMARY KEY CHECK (id = 1),
  hash TEXT NOT NULL
);
`

// Catalog implements pastebox.Catalog using PostgreSQL
type Catalog struct {
	db DBTX
}

// New creates a new PostgreSQL catalog
func New(db DBTX) *Catalog {
	return &Catalog{db: db}
}

// NewWithPool creates a new PostgreSQL catalog with a connection pool
func NewWithPool(pool *pgxpool.Pool) *Catalog {
	return &Catalog{db: pool}
}

// EnsureSchema creates the catalog's tables when they do not exist yet.
func (c *Catalog) EnsureSchema(ctx context.Context) error {
	if _, err := c.db.Exec(ctx, Schema); err != nil {
		return c.handlePostgresError("ensure schema", err)
	}
	return nil
}

// Credentials returns a credential store sharing this catalog's database.
func (c *Catalog) Credentials() *Credentials {
	return &Credentials{db: c.db}
}

// Error handling helper
func (c *Catalog) handlePostgresError(operation string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			return fmt.Errorf("duplicate entry")
		case "23502": // not_null_violation
			return fmt.Errorf("required field %s is missing", pgErr.ColumnName)
		case "42P01": // undefined_table
			return fmt.Errorf("table does not exist - run EnsureSchema first")
		default:
			return fmt.Errorf("database error in %s: %s (code: %s)", operation, pgErr.Message, pgErr.Code)
		}
	}
	return fmt.Errorf("database error in %s: %w", operation, err)
}

func (c *Catalog) Insert(ctx context.Context, item *pastebox.Item) (int64, error) {
	createdAt := item.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	query := `
		INSERT INTO items (stored_name, display_name, content_type, size_bytes, inline_content, thumbnail_name, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`

	var id int64
	err := c.db.QueryRow(ctx, query,
		item.StoredName, item.DisplayName, item.ContentType, item.SizeBytes,
		item.InlineContent, item.ThumbnailName, createdAt).Scan(&id)
	if err != nil {
		return 0, c.handlePostgresError("insert item", err)
	}

	return id, nil
}

func (c *Catalog) GetByID(ctx context.Context, id int64) (*pastebox.Item, error) {
	query := `
		SELECT id, stored_name, display_name, content_type, size_bytes, inline_content, thumbnail_name, created_at
		FROM items WHERE id = $1`

	var item pastebox.Item
	err := c.db.QueryRow(ctx, query, id).Scan(
		&item.ID, &item.StoredName, &item.DisplayName, &item.ContentType,
		&item.SizeBytes, &item.InlineContent, &item.ThumbnailName, &item.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, pastebox.ErrItemNotFound
		}
		return nil, c.handlePostgresError("get item", err)
	}

	return &item, nil
}

func (c *Catalog) ListPage(ctx context.Context, page, pageSize int) ([]*pastebox.Item, int64, error) {
	if page < 1 {
		page = 1
	}
	offset := (page - 1) * pageSize

	query := `
		SELECT id, stored_name, display_name, content_type, size_bytes, inline_content, thumbnail_name, created_at
		FROM items ORDER BY created_at DESC, id DESC LIMIT $1 OFFSET $2`

	rows, err := c.db.Query(ctx, query, pageSize, offset)
	if err != nil {
		return nil, 0, c.handlePostgresError("list items", err)
	}
	defer rows.Close()

	items := []*pastebox.Item{}
	for rows.Next() {
		var item pastebox.Item
		if err := rows.Scan(
			&item.ID, &item.StoredName, &item.DisplayName, &item.ContentType,
			&item.SizeBytes, &item.InlineContent, &item.ThumbnailName, &item.CreatedAt); err != nil {
			return nil, 0, c.handlePostgresError("list items", err)
		}
		items = append(items, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, c.handlePostgresError("list items", err)
	}

	var total int64
	if err := c.db.QueryRow(ctx, `SELECT COUNT(*) FROM items`).Scan(&total); err != nil {
		return nil, 0, c.handlePostgresError("count items", err)
	}

	return items, total, nil
}

func (c *Catalog) Delete(ctx context.Context, id int64) error {
	if _, err := c.db.Exec(ctx, `DELETE FROM items WHERE id = $1`, id); err != nil {
		return c.handlePostgresError("delete item", err)
	}
	return nil
}

func (c *Catalog) DeleteAll(ctx context.Context) error {
	if _, err := c.db.Exec(ctx, `DELETE FROM items`); err != nil {
		return c.handlePostgresError("delete all items", err)
	}
	return nil
}

func (c *Catalog) AllBlobNames(ctx context.Context) ([]pastebox.BlobNames, error) {
	rows, err := c.db.Query(ctx, `SELECT stored_name, thumbnail_name FROM items`)
	if err != nil {
		return nil, c.handlePostgresError("snapshot blob names", err)
	}
	defer rows.Close()

	var names []pastebox.BlobNames
	for rows.Next() {
		var n pastebox.BlobNames
		if err := rows.Scan(&n.StoredName, &n.ThumbnailName); err != nil {
			return nil, c.handlePostgresError("snapshot blob names", err)
		}
		names = append(names, n)
	}
	return names, rows.Err()
}
