// Package sqlite provides SQLite-based storage implementations for wpmirror services.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

// DB represents a SQLite database connection.
type DB struct {
	db   *sql.DB
	path string
}

// NewDB creates a new DB instance with the given path.
// Use ":memory:" for an in-memory database.
func NewDB(path string) *DB {
	return &DB{path: path}
}

// Open opens the database connection and creates the schema if needed.
func (db *DB) Open() error {
	conn, err := sql.Open("sqlite3", db.path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer at a time, so limit to one connection.
	// This also serializes RecordOutcome's read-latest + conditional-append
	// critical section without any application-level locking.
	conn.SetMaxOpenConns(1)

	// Verify connection
	if err := conn.Ping(); err != nil {
		conn.Close()
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	// Set busy timeout to wait 5 seconds before failing on lock contention.
	// This prevents immediate "database is locked" errors.
	if _, err := conn.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		conn.Close()
		return fmt.Errorf("failed to set busy timeout: %w", err)
	}

	// Enable WAL mode for file-based databases for better write performance.
	// Note: WAL mode is not supported for in-memory databases.
	if db.path != ":memory:" {
		if _, err := conn.Exec("PRAGMA journal_mode = WAL"); err != nil {
			conn.Close()
			return fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	db.db = conn

	// Create schema
	if err := db.createSchema(); err != nil {
		conn.Close()
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	if db.db != nil {
		return db.db.Close()
	}
	return nil
}

// BeginTx starts a transaction.
func (db *DB) BeginTx(ctx context.Context) (*sql.Tx, error) {
	return db.db.BeginTx(ctx, nil)
}

// QueryRowContext executes a query that returns a single row.
func (db *DB) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	return db.db.QueryRowContext(ctx, query, args...)
}

// QueryContext executes a query that returns rows.
func (db *DB) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return db.db.QueryContext(ctx, query, args...)
}

// ExecContext executes a statement that doesn't return rows.
func (db *DB) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return db.db.ExecContext(ctx, query, args...)
}

// Stats returns database statistics.
func (db *DB) Stats() sql.DBStats {
	return db.db.Stats()
}

// createSchema creates the database tables if they don't exist.
//
// Every content table is append-only and versioned: the pair
// (wp_id, version) is unique, rows are never updated or deleted, and the
// current view of an item is the row with the maximum version.
func (db *DB) createSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS posts (
			id INTEGER PRIMARY KEY,
			wp_id INTEGER NOT NULL,
			title TEXT NOT NULL DEFAULT '',
			content TEXT NOT NULL DEFAULT '',
			excerpt TEXT NOT NULL DEFAULT '',
			author_id INTEGER NOT NULL DEFAULT 0,
			date_created TEXT NOT NULL DEFAULT '',
			date_modified TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL DEFAULT '',
			content_hash TEXT NOT NULL,
			version INTEGER NOT NULL DEFAULT 1,
			created_at TEXT NOT NULL,
			UNIQUE(wp_id, version)
		);

		CREATE TABLE IF NOT EXISTS comments (
			id INTEGER PRIMARY KEY,
			wp_id INTEGER NOT NULL,
			post_id INTEGER NOT NULL DEFAULT 0,
			parent_id INTEGER NOT NULL DEFAULT 0,
			author_name TEXT NOT NULL DEFAULT '',
			author_email TEXT NOT NULL DEFAULT '',
			author_url TEXT NOT NULL DEFAULT '',
			content TEXT NOT NULL DEFAULT '',
			date_created TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL DEFAULT '',
			content_hash TEXT NOT NULL,
			version INTEGER NOT NULL DEFAULT 1,
			created_at TEXT NOT NULL,
			UNIQUE(wp_id, version)
		);

		CREATE TABLE IF NOT EXISTS pages (
			id INTEGER PRIMARY KEY,
			wp_id INTEGER NOT NULL,
			title TEXT NOT NULL DEFAULT '',
			content TEXT NOT NULL DEFAULT '',
			excerpt TEXT NOT NULL DEFAULT '',
			author_id INTEGER NOT NULL DEFAULT 0,
			date_created TEXT NOT NULL DEFAULT '',
			date_modified TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL DEFAULT '',
			content_hash TEXT NOT NULL,
			version INTEGER NOT NULL DEFAULT 1,
			created_at TEXT NOT NULL,
			UNIQUE(wp_id, version)
		);

		CREATE TABLE IF NOT EXISTS users (
			id INTEGER PRIMARY KEY,
			wp_id INTEGER NOT NULL,
			name TEXT NOT NULL DEFAULT '',
			url TEXT NOT NULL DEFAULT '',
			description TEXT NOT NULL DEFAULT '',
			link TEXT NOT NULL DEFAULT '',
			slug TEXT NOT NULL DEFAULT '',
			avatar_urls TEXT NOT NULL DEFAULT '',
			content_hash TEXT NOT NULL,
			version INTEGER NOT NULL DEFAULT 1,
			created_at TEXT NOT NULL,
			UNIQUE(wp_id, version)
		);

		CREATE TABLE IF NOT EXISTS categories (
			id INTEGER PRIMARY KEY,
			wp_id INTEGER NOT NULL,
			name TEXT NOT NULL DEFAULT '',
			description TEXT NOT NULL DEFAULT '',
			link TEXT NOT NULL DEFAULT '',
			slug TEXT NOT NULL DEFAULT '',
			taxonomy TEXT NOT NULL DEFAULT '',
			parent INTEGER NOT NULL DEFAULT 0,
			count INTEGER NOT NULL DEFAULT 0,
			content_hash TEXT NOT NULL,
			version INTEGER NOT NULL DEFAULT 1,
			created_at TEXT NOT NULL,
			UNIQUE(wp_id, version)
		);

		CREATE TABLE IF NOT EXISTS tags (
			id INTEGER PRIMARY KEY,
			wp_id INTEGER NOT NULL,
			name TEXT NOT NULL DEFAULT '',
			description TEXT NOT NULL DEFAULT '',
			link TEXT NOT NULL DEFAULT '',
			slug TEXT NOT NULL DEFAULT '',
			taxonomy TEXT NOT NULL DEFAULT '',
			parent INTEGER NOT NULL DEFAULT 0,
			count INTEGER NOT NULL DEFAULT 0,
			content_hash TEXT NOT NULL,
			version INTEGER NOT NULL DEFAULT 1,
			created_at TEXT NOT NULL,
			UNIQUE(wp_id, version)
		);

		CREATE TABLE IF NOT EXISTS archive_sessions (
			id TEXT PRIMARY KEY,
			content_type TEXT NOT NULL,
			items_processed INTEGER NOT NULL DEFAULT 0,
			items_new INTEGER NOT NULL DEFAULT 0,
			items_updated INTEGER NOT NULL DEFAULT 0,
			items_errors INTEGER NOT NULL DEFAULT 0,
			errors TEXT NOT NULL DEFAULT '[]',
			created_at TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_posts_wp_id ON posts(wp_id);
		CREATE INDEX IF NOT EXISTS idx_comments_wp_id ON comments(wp_id);
		CREATE INDEX IF NOT EXISTS idx_comments_post_id ON comments(post_id);
		CREATE INDEX IF NOT EXISTS idx_pages_wp_id ON pages(wp_id);
		CREATE INDEX IF NOT EXISTS idx_users_wp_id ON users(wp_id);
		CREATE INDEX IF NOT EXISTS idx_categories_wp_id ON categories(wp_id);
		CREATE INDEX IF NOT EXISTS idx_tags_wp_id ON tags(wp_id);
		CREATE INDEX IF NOT EXISTS idx_archive_sessions_created_at ON archive_sessions(created_at);
	`

	_, err := db.db.Exec(schema)
	return err
}
