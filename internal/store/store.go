// Package store implements the embedded relational store (§4.5):
// projects, roles, sessions, worktrees, MCP server configs, an audit
// log, and instance-scoped counters, backed by modernc.org/sqlite (pure
// Go, no cgo) in WAL mode with a single-connection pool, following the
// same idiom as the store used elsewhere in this codebase's reference
// material.
package store

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	_ "modernc.org/sqlite"

	"github.com/thurbox/thurbox/internal/thurerr"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Store owns the database connection. All exported methods are safe
// for concurrent use; SQLite serializes writers through the
// single-connection pool.
type Store struct {
	db         *sql.DB
	instanceID string
}

// Open opens (creating parent directories and the file as needed) the
// database at path and enables WAL mode plus a busy timeout so
// cooperating processes wait rather than fail on lock contention.
func Open(path string, instanceID string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, thurerr.New(thurerr.StoreUnavailable, "create data directory", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, thurerr.New(thurerr.StoreUnavailable, "open database", err)
	}
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, thurerr.New(thurerr.StoreUnavailable, pragma, err)
		}
	}

	return &Store{db: db, instanceID: instanceID}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// Migrate applies embedded migrations that have not yet been recorded
// in schema_migrations, in filename order.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		filename TEXT PRIMARY KEY,
		applied_at TEXT NOT NULL DEFAULT (datetime('now'))
	)`); err != nil {
		return thurerr.New(thurerr.StoreUnavailable, "create schema_migrations", err)
	}

	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return thurerr.New(thurerr.StoreUnavailable, "read embedded migrations", err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()

		var count int
		if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM schema_migrations WHERE filename = ?", name).Scan(&count); err != nil {
			return thurerr.New(thurerr.StoreUnavailable, "check migration "+name, err)
		}
		if count > 0 {
			continue
		}

		data, err := migrationsFS.ReadFile("migrations/" + name)
		if err != nil {
			return thurerr.New(thurerr.StoreUnavailable, "read migration "+name, err)
		}
		if _, err := s.db.ExecContext(ctx, string(data)); err != nil {
			return thurerr.New(thurerr.StoreUnavailable, "apply migration "+name, err)
		}
		if _, err := s.db.ExecContext(ctx, "INSERT INTO schema_migrations (filename) VALUES (?)", name); err != nil {
			return thurerr.New(thurerr.StoreUnavailable, "record migration "+name, err)
		}
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func nullableTime(t *string) any {
	if t == nil {
		return nil
	}
	return *t
}

var errNoRows = sql.ErrNoRows

func wrapNotFound(kind, id string, err error) error {
	if err == sql.ErrNoRows {
		return thurerr.NotFoundErr(kind, id)
	}
	return fmt.Errorf("%s %s: %w", kind, id, err)
}
