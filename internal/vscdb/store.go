// Package vscdb reads and writes the editor's per-workspace state.vscdb, a
// SQLite key/value store, and rebuilds the chat session index kept in it.
package vscdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"

	_ "modernc.org/sqlite"
)

// ChatIndexKey is where the editor keeps its chat session index.
const ChatIndexKey = "chat.ChatSessionStore.index"

var (
	ErrStoreMissing   = errors.New("vscdb: state.vscdb not found")
	ErrChatDirMissing = errors.New("vscdb: chat sessions directory not found")
	ErrItemNotFound   = errors.New("vscdb: item not found")
)

// Store wraps one workspace's state database via modernc.org/sqlite (pure
// Go, no CGO).
type Store struct {
	db   *sql.DB
	path string
}

// Open opens an existing state database. The file is never created here; a
// missing store is a caller problem, reported as ErrStoreMissing.
func Open(path string) (*Store, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrStoreMissing, path)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open state db: %w", err)
	}

	// One connection serializes access; the editor may hold the file too.
	db.SetMaxOpenConns(1)

	// Wait on a briefly-held editor lock instead of failing immediately.
	// Journal mode is left alone: the database belongs to the editor.
	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}

	return &Store{db: db, path: path}, nil
}

// Path returns the location of the underlying database file.
func (s *Store) Path() string {
	return s.path
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// UpsertItem writes one key/value pair into ItemTable, creating the table if
// the store predates it. Every other row is left untouched.
func (s *Store) UpsertItem(ctx context.Context, key, value string) error {
	if _, err := s.db.ExecContext(ctx,
		"CREATE TABLE IF NOT EXISTS ItemTable (key TEXT PRIMARY KEY, value TEXT)",
	); err != nil {
		return fmt.Errorf("ensure ItemTable: %w", err)
	}

	if _, err := s.db.ExecContext(ctx,
		"INSERT INTO ItemTable(key, value) VALUES(?, ?) ON CONFLICT(key) DO UPDATE SET value=excluded.value",
		key, value,
	); err != nil {
		return fmt.Errorf("upsert item %s: %w", key, err)
	}
	return nil
}

// GetItem reads one value from ItemTable.
func (s *Store) GetItem(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx,
		"SELECT value FROM ItemTable WHERE key = ?", key,
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("%w: %s", ErrItemNotFound, key)
	}
	if err != nil {
		return "", fmt.Errorf("get item %s: %w", key, err)
	}
	return value, nil
}
