// Package sqlite provides a pastebox.Catalog backed by a local SQLite
// database, the natural fit for single-host deployments.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/pastebox/pastebox/pkg/pastebox"
)

const (
	busyTimeoutMS   = 5000
	maxOpenConns    = 1
	maxIdleConns    = 1
	connMaxLifetime = 5 * time.Minute
)

// timeLayout is a fixed-width RFC 3339 variant: fractional seconds are
// zero-padded to nine digits so the TEXT column's lexicographic order is
// chronological order, which ORDER BY created_at relies on.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

const schema = `
CREATE TABLE IF NOT EXISTS items (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  stored_name TEXT NOT NULL,
  display_name TEXT NOT NULL,
  content_type TEXT NOT NULL,
  size_bytes INTEGER NOT NULL,
  inline_content TEXT NOT NULL DEFAULT '',
  thumbnail_name TEXT NOT NULL DEFAULT '',
  created_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_items_created_at ON items(created_at DESC, id DESC);

CREATE TABLE IF NOT EXISTS credentials (
  id INTEGER PRIMARY KEY CHECK (id = 1),
  hash TEXT NOT NULL
);
`

// Catalog implements pastebox.Catalog on SQLite. AUTOINCREMENT guarantees
// monotonically increasing identifiers that are never reused, and SQLite's
// single-writer model serializes concurrent inserts.
type Catalog struct {
	db *sql.DB
}

// Open opens the SQLite database at path, creating the parent directory
// when needed, and bootstraps the schema.
func Open(path string) (*Catalog, error) {
	dsn, err := sqliteDSN(path)
	if err != nil {
		return nil, err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	if err := configureDB(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("bootstrap schema: %w", err)
	}

	return &Catalog{db: db}, nil
}

// Close closes the underlying database connection.
func (c *Catalog) Close() error {
	if c == nil || c.db == nil {
		return nil
	}
	return c.db.Close()
}

// Credentials returns a credential store sharing this catalog's database.
func (c *Catalog) Credentials() *Credentials {
	return &Credentials{db: c.db}
}

func (c *Catalog) Insert(ctx context.Context, item *pastebox.Item) (int64, error) {
	createdAt := item.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	res, err := c.db.ExecContext(ctx, `
		INSERT INTO items (stored_name, display_name, content_type, size_bytes, inline_content, thumbnail_name, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		item.StoredName, item.DisplayName, item.ContentType, item.SizeBytes,
		item.InlineContent, item.ThumbnailName, createdAt.UTC().Format(timeLayout))
	if err != nil {
		return 0, fmt.Errorf("insert item: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("insert item: %w", err)
	}
	return id, nil
}

func (c *Catalog) GetByID(ctx context.Context, id int64) (*pastebox.Item, error) {
	row := c.db.QueryRowContext(ctx, `
		SELECT id, stored_name, display_name, content_type, size_bytes, inline_content, thumbnail_name, created_at
		FROM items WHERE id = ?`, id)

	item, err := scanItem(row)
	if err == sql.ErrNoRows {
		return nil, pastebox.ErrItemNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}
	return item, nil
}

func (c *Catalog) ListPage(ctx context.Context, page, pageSize int) ([]*pastebox.Item, int64, error) {
	if page < 1 {
		page = 1
	}
	offset := (page - 1) * pageSize

	rows, err := c.db.QueryContext(ctx, `
		SELECT id, stored_name, display_name, content_type, size_bytes, inline_content, thumbnail_name, created_at
		FROM items ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`, pageSize, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()

	items := []*pastebox.Item{}
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("list items: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list items: %w", err)
	}

	var total int64
	if err := c.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM items`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count items: %w", err)
	}

	return items, total, nil
}

func (c *Catalog) Delete(ctx context.Context, id int64) error {
	if _, err := c.db.ExecContext(ctx, `DELETE FROM items WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	return nil
}

func (c *Catalog) DeleteAll(ctx context.Context) error {
	// The sqlite_sequence row for items is left alone so AUTOINCREMENT
	// keeps counting and identifiers are never reused.
	if _, err := c.db.ExecContext(ctx, `DELETE FROM items`); err != nil {
		return fmt.Errorf("delete all items: %w", err)
	}
	return nil
}

func (c *Catalog) AllBlobNames(ctx context.Context) ([]pastebox.BlobNames, error) {
	rows, err := c.db.QueryContext(ctx, `SELECT stored_name, thumbnail_name FROM items`)
	if err != nil {
		return nil, fmt.Errorf("snapshot blob names: %w", err)
	}
	defer rows.Close()

	var names []pastebox.BlobNames
	for rows.Next() {
		var n pastebox.BlobNames
		if err := rows.Scan(&n.StoredName, &n.ThumbnailName); err != nil {
			return nil, fmt.Errorf("snapshot blob names: %w", err)
		}
		names = append(names, n)
	}
	return names, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (*pastebox.Item, error) {
	var item pastebox.Item
	var createdAt string
	if err := row.Scan(&item.ID, &item.StoredName, &item.DisplayName, &item.ContentType,
		&item.SizeBytes, &item.InlineContent, &item.ThumbnailName, &createdAt); err != nil {
		return nil, err
	}
	ts, err := time.Parse(timeLayout, createdAt)
	if err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	item.CreatedAt = ts
	return &item, nil
}

func configureDB(db *sql.DB) error {
	// Tune connection pool for local usage. The pragmas ride in the DSN so
	// connections recycled after ConnMaxLifetime carry them too.
	db.SetMaxOpenConns(maxOpenConns)
	db.SetMaxIdleConns(maxIdleConns)
	db.SetConnMaxLifetime(connMaxLifetime)

	return nil
}

func sqliteDSN(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("db path is required")
	}
	u := url.URL{Scheme: "file", Path: path}
	u.RawQuery = fmt.Sprintf(
		"_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_pragma=foreign_keys(1)&_pragma=busy_timeout(%d)",
		busyTimeoutMS)
	return u.String(), nil
}
