package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// DB wraps a sql.DB with walkthrough-specific helpers.
type DB struct {
	*sql.DB
	path string
}

// Open creates or opens a SQLite database at the given path.
func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	sqlDB, err := sql.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	d := &DB{DB: sqlDB, path: path}
	if err := d.migrate(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return d, nil
}

// OpenMemory creates an in-memory SQLite database (useful for testing).
func OpenMemory() (*DB, error) {
	sqlDB, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("opening in-memory database: %w", err)
	}
	// Each connection to :memory: is a separate database.
	sqlDB.SetMaxOpenConns(1)

	d := &DB{DB: sqlDB, path: ":memory:"}
	if err := d.migrate(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return d, nil
}

// Path returns the database file path.
func (d *DB) Path() string { return d.path }

// migrate runs all schema migrations.
func (d *DB) migrate() error {
	_, err := d.Exec(schema)
	return err
}

const schema = `
CREATE TABLE IF NOT EXISTS narrative_cache (
    name TEXT PRIMARY KEY,
    etag TEXT NOT NULL,
    body BLOB NOT NULL,
    fetched_at DATETIME NOT NULL DEFAULT (datetime('now'))
);
`

// NarrativeCache stores remote data files with their ETag so the HTTP source
// can revalidate instead of downloading them again.
type NarrativeCache struct {
	db *DB
}

// NewNarrativeCache returns a cache backed by d.
func NewNarrativeCache(d *DB) *NarrativeCache {
	return &NarrativeCache{db: d}
}

// Lookup returns the cached ETag and body for name.
func (c *NarrativeCache) Lookup(ctx context.Context, name string) (string, []byte, bool, error) {
	var (
		etag string
		body []byte
	)
	err := c.db.QueryRowContext(ctx,
		`SELECT etag, body FROM narrative_cache WHERE name = ?`, name,
	).Scan(&etag, &body)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil, false, nil
	}
	if err != nil {
		return "", nil, false, fmt.Errorf("looking up %s: %w", name, err)
	}
	return etag, body, true, nil
}

// Store upserts the body for name.
func (c *NarrativeCache) Store(ctx context.Context, name, etag string, body []byte) error {
	if body == nil {
		body = []byte{}
	}
	_, err := c.db.ExecContext(ctx, `
		INSERT INTO narrative_cache (name, etag, body, fetched_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET etag = excluded.etag, body = excluded.body, fetched_at = excluded.fetched_at`,
		name, etag, body, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("storing %s: %w", name, err)
	}
	return nil
}

// Count returns the number of cached files.
func (c *NarrativeCache) Count(ctx context.Context) (int, error) {
	var n int
	if err := c.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM narrative_cache`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting cache entries: %w", err)
	}
	return n, nil
}
