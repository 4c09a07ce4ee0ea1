package db

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "github.com/glebarez/go-sqlite"
	"github.com/jmoiron/sqlx"
)

const driverName = "sqlite"

const userSchema = `
CREATE TABLE IF NOT EXISTS users (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	email TEXT UNIQUE NOT NULL,
	password TEXT NOT NULL,
	name TEXT NOT NULL,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
);`

const serverRequestSchema = `
CREATE TABLE IF NOT EXISTS server_requests (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id INTEGER NOT NULL,
	server_name TEXT NOT NULL,
	player_count INTEGER NOT NULL,
	amp_username TEXT NOT NULL,
	amp_password TEXT NOT NULL,
	status TEXT DEFAULT 'pending',
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (user_id) REFERENCES users(id)
);`

const serverRequestIndex = `
CREATE INDEX IF NOT EXISTS idx_server_requests_user_created
	ON server_requests (user_id, created_at DESC);`

// additiveColumns are applied with ALTER TABLE when missing from an existing table.
var additiveColumns = []struct {
	table, column, definition string
}{
	{"server_requests", "server_type", "TEXT NOT NULL DEFAULT 'java'"},
}

// Connect opens the SQLite database at path. The pool is limited to a
// single connection so writes are serialized by the handle itself; this
// also keeps ":memory:" databases alive across calls.
func Connect(path string) (*sqlx.DB, error) {
	if path != ":memory:" {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
		}
	}

	pool, err := sqlx.Open(driverName, path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}
	pool.SetMaxOpenConns(1)

	for _, pragma := range []string{"PRAGMA foreign_keys = ON", "PRAGMA busy_timeout = 5000"} {
		if _, err := pool.Exec(pragma); err != nil {
			pool.Close()
			return nil, fmt.Errorf("failed to apply %q: %w", pragma, err)
		}
	}

	slog.Info("Connected to database", "path", path)
	return pool, nil
}

// InitializeDB creates missing tables and applies additive column migrations.
// It is safe to run on every startup.
func InitializeDB(ctx context.Context, db *sqlx.DB) error {
	if _, err := db.ExecContext(ctx, userSchema); err != nil {
		return fmt.Errorf("failed to create users table: %w", err)
	}
	if _, err := db.ExecContext(ctx, serverRequestSchema); err != nil {
		return fmt.Errorf("failed to create server_requests table: %w", err)
	}

	for _, c := range additiveColumns {
		exists, err := columnExists(ctx, db, c.table, c.column)
		if err != nil {
			return err
		}
		if exists {
			continue
		}
		stmt := fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", c.table, c.column, c.definition)
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to add column %s.%s: %w", c.table, c.column, err)
		}
		slog.Info("Added column", "table", c.table, "column", c.column)
	}

	if _, err := db.ExecContext(ctx, serverRequestIndex); err != nil {
		return fmt.Errorf("failed to create server_requests index: %w", err)
	}

	slog.Info("Database initialized and schema verified")
	return nil
}

func columnExists(ctx context.Context, db *sqlx.DB, table, column string) (bool, error) {
	var columns []struct {
		CID        int     `db:"cid"`
		Name       string  `db:"name"`
		Type       string  `db:"type"`
		NotNull    int     `db:"notnull"`
		Default    *string `db:"dflt_value"`
		PrimaryKey int     `db:"pk"`
	}
	if err := db.SelectContext(ctx, &columns, fmt.Sprintf("PRAGMA table_info(%s)", table)); err != nil {
		return false, fmt.Errorf("failed to inspect table %s: %w", table, err)
	}
	for _, c := range columns {
		if c.Name == column {
			return true, nil
		}
	}
	return false, nil
}
