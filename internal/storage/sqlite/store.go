// Package sqlite provides a SQLite-backed implementation of the save-system
// byte store.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/louisbranch/monsterkeep/internal/storage"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS save_records (
    key        TEXT PRIMARY KEY,
    value      BLOB NOT NULL,
    updated_at INTEGER NOT NULL
);
`

// pragmas applied at open time. WAL and busy_timeout keep concurrent
// autosave and manual-save writers from tripping over each other.
var pragmas = []string{
	"PRAGMA journal_mode = WAL;",
	"PRAGMA busy_timeout = 10000;",
	"PRAGMA synchronous = NORMAL;",
	"PRAGMA foreign_keys = ON;",
}

// Store provides a SQLite-backed byte store.
type Store struct {
	db    *sql.DB
	clock func() time.Time
}

// Open opens a SQLite-backed store at the provided path, creating the
// schema when missing.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	cleanPath := filepath.Clean(path)
	db, err := sql.Open("sqlite", cleanPath)
	if err != nil {
		return nil, fmt.Errorf("open storage db: %w", err)
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, err)
		}
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensure save_records table: %w", err)
	}

	return &Store{db: db, clock: time.Now}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Get fetches the bytes stored under key.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("storage is not configured")
	}

	var value []byte
	err := s.db.QueryRowContext(ctx,
		"SELECT value FROM save_records WHERE key = ?", key,
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select save record: %w", err)
	}
	return value, nil
}

// Set stores bytes under key, overwriting any previous value.
func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(key) == "" {
		return fmt.Errorf("storage key is required")
	}

	_, err := s.db.ExecContext(ctx, `
INSERT INTO save_records (key, value, updated_at) VALUES (?, ?, ?)
ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, s.clock().UTC().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("upsert save record: %w", err)
	}
	return nil
}

// Remove deletes the record under key. Removing an absent key is a no-op.
func (s *Store) Remove(ctx context.Context, key string) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("storage is not configured")
	}

	if _, err := s.db.ExecContext(ctx,
		"DELETE FROM save_records WHERE key = ?", key,
	); err != nil {
		return fmt.Errorf("delete save record: %w", err)
	}
	return nil
}

// List returns all keys with the given prefix in lexicographic order.
func (s *Store) List(ctx context.Context, prefix string) ([]string, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("storage is not configured")
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT key FROM save_records WHERE key LIKE ? || '%' ESCAPE '\\' ORDER BY key",
		escapeLike(prefix),
	)
	if err != nil {
		return nil, fmt.Errorf("select save keys: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("scan save key: %w", err)
		}
		keys = append(keys, key)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate save keys: %w", err)
	}
	return keys, nil
}

// escapeLike escapes LIKE wildcards so prefixes match literally.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "%", `\%`)
	s = strings.ReplaceAll(s, "_", `\_`)
	return s
}
