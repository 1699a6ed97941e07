// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/jeranaias/orb-tui/internal/conversation"
)

// =============================================================================
// SCHEMA
// =============================================================================

// Schema creates the slot table.
const Schema = `
CREATE TABLE IF NOT EXISTS session_slots (
    scope      TEXT    NOT NULL,
    key        TEXT    NOT NULL,
    value      BLOB    NOT NULL,
    updated_at INTEGER NOT NULL,
    PRIMARY KEY (scope, key)
);

CREATE INDEX IF NOT EXISTS idx_session_slots_updated ON session_slots(updated_at);
`

// =============================================================================
// SESSION DB
// =============================================================================

// SessionDB keeps slots in a SQLite database.
type SessionDB struct {
	db   *sql.DB
	path string
	now  func() time.Time

	mu     sync.RWMutex
	closed bool
}

// OpenSessionDB opens (creating if needed) the database at path. Use
// ":memory:" for a throwaway database.
func OpenSessionDB(path string) (*SessionDB, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer at a time, and ":memory:" databases
	// are per connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA temp_store=MEMORY",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	if path != ":memory:" {
		// Chat history may contain anything the user typed.
		_ = os.Chmod(path, 0600)
	}

	return &SessionDB{db: db, path: path, now: time.Now}, nil
}

// Path returns the database location.
func (s *SessionDB) Path() string { return s.path }

func (s *SessionDB) handle() (*sql.DB, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrClosed
	}
	return s.db, nil
}

// Slot implements Backend.
func (s *SessionDB) Slot(scope, key string) (conversation.Slot, error) {
	if err := validatePair(scope, key); err != nil {
		return nil, err
	}
	return &DBSlot{db: s, scope: scope, key: key}, nil
}

// Scopes implements Backend.
func (s *SessionDB) Scopes() ([]ScopeInfo, error) {
	db, err := s.handle()
	if err != nil {
		return nil, err
	}

	rows, err := db.Query(`
		SELECT scope, COUNT(*), SUM(LENGTH(value)), MAX(updated_at)
		FROM session_slots
		GROUP BY scope
		ORDER BY MAX(updated_at) DESC, scope ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list scopes: %w", err)
	}
	defer rows.Close()

	infos := []ScopeInfo{}
	for rows.Next() {
		var (
			info    ScopeInfo
			updated int64
		)
		if err := rows.Scan(&info.Scope, &info.Slots, &info.Bytes, &updated); err != nil {
			return nil, fmt.Errorf("failed to scan scope: %w", err)
		}
		info.UpdatedAt = time.UnixMilli(updated)
		infos = append(infos, info)
	}
	return infos, rows.Err()
}

// DeleteScope implements Backend.
func (s *SessionDB) DeleteScope(scope string) error {
	db, err := s.handle()
	if err != nil {
		return err
	}
	if _, err := db.Exec("DELETE FROM session_slots WHERE scope = ?", scope); err != nil {
		return fmt.Errorf("failed to delete scope %s: %w", scope, err)
	}
	return nil
}

// PurgeOlderThan implements Backend.
func (s *SessionDB) PurgeOlderThan(age time.Duration, now time.Time) (int, error) {
	db, err := s.handle()
	if err != nil {
		return 0, err
	}
	cutoff := now.Add(-age).UnixMilli()

	tx, err := db.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	rows, err := tx.Query(
		"SELECT scope FROM session_slots GROUP BY scope HAVING MAX(updated_at) < ?", cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to find stale scopes: %w", err)
	}
	var stale []string
	for rows.Next() {
		var scope string
		if err := rows.Scan(&scope); err != nil {
			rows.Close()
			return 0, err
		}
		stale = append(stale, scope)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, err
	}

	for _, scope := range stale {
		if _, err := tx.Exec("DELETE FROM session_slots WHERE scope = ?", scope); err != nil {
			return 0, fmt.Errorf("failed to purge scope %s: %w", scope, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return len(stale), nil
}

// Close implements Backend.
func (s *SessionDB) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}

// =============================================================================
// DB SLOT
// =============================================================================

// DBSlot is one row of session_slots.
type DBSlot struct {
	db    *SessionDB
	scope string
	key   string
}

// Read implements conversation.Slot.
func (s *DBSlot) Read() ([]byte, error) {
	db, err := s.db.handle()
	if err != nil {
		return nil, err
	}
	var value []byte
	err = db.QueryRow(
		"SELECT value FROM session_slots WHERE scope = ? AND key = ?", s.scope, s.key,
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, conversation.ErrSlotEmpty
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read slot: %w", err)
	}
	return value, nil
}

// Write implements conversation.Slot.
func (s *DBSlot) Write(data []byte) error {
	db, err := s.db.handle()
	if err != nil {
		return err
	}
	_, err = db.Exec(`
		INSERT INTO session_slots (scope, key, value, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(scope, key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		s.scope, s.key, data, s.db.now().UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to write slot: %w", err)
	}
	return nil
}

// Clear implements conversation.Slot.
func (s *DBSlot) Clear() error {
	db, err := s.db.handle()
	if err != nil {
		return err
	}
	if _, err := db.Exec(
		"DELETE FROM session_slots WHERE scope = ? AND key = ?", s.scope, s.key,
	); err != nil {
		return fmt.Errorf("failed to clear slot: %w", err)
	}
	return nil
}
