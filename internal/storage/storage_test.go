// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jeranaias/orb-tui/internal/conversation"
)

// backendFactory builds a fresh backend for contract tests.
type backendFactory struct {
	name string
	open func(t *testing.T) Backend
}

func backends() []backendFactory {
	return []backendFactory{
		{"memory", func(t *testing.T) Backend {
			return NewMemoryBackend()
		}},
		{"file", func(t *testing.T) Backend {
			b, err := NewFileBackend(filepath.Join(t.TempDir(), "sessions"))
			require.NoError(t, err)
			return b
		}},
		{"sqlite", func(t *testing.T) Backend {
			db, err := OpenSessionDB(filepath.Join(t.TempDir(), "sessions.db"))
			require.NoError(t, err)
			t.Cleanup(func() { db.Close() })
			return db
		}},
	}
}

func TestBackend_SlotLifecycle(t *testing.T) {
	for _, bf := range backends() {
		t.Run(bf.name, func(t *testing.T) {
			b := bf.open(t)

			slot, err := b.Slot("tty-1", "chatHistory")
			require.NoError(t, err)

			_, err = slot.Read()
			assert.ErrorIs(t, err, conversation.ErrSlotEmpty)

			require.NoError(t, slot.Write([]byte(`[1]`)))
			require.NoError(t, slot.Write([]byte(`[1,2]`)))

			data, err := slot.Read()
			require.NoError(t, err)
			assert.Equal(t, `[1,2]`, string(data))

			require.NoError(t, slot.Clear())
			_, err = slot.Read()
			assert.ErrorIs(t, err, conversation.ErrSlotEmpty)

			// Clearing twice is fine.
			assert.NoError(t, slot.Clear())
		})
	}
}

func TestBackend_ScopesAreIsolated(t *testing.T) {
	for _, bf := range backends() {
		t.Run(bf.name, func(t *testing.T) {
			b := bf.open(t)

			a, err := b.Slot("tab-a", "chatHistory")
			require.NoError(t, err)
			c, err := b.Slot("tab-b", "chatHistory")
			require.NoError(t, err)

			require.NoError(t, a.Write([]byte("A")))

			_, err = c.Read()
			assert.ErrorIs(t, err, conversation.ErrSlotEmpty, "second scope must not see first scope's data")

			scopes, err := b.Scopes()
			require.NoError(t, err)
			require.Len(t, scopes, 1)
			assert.Equal(t, "tab-a", scopes[0].Scope)
			assert.Equal(t, 1, scopes[0].Slots)
			assert.EqualValues(t, 1, scopes[0].Bytes)

			require.NoError(t, b.DeleteScope("tab-a"))
			_, err = a.Read()
			assert.ErrorIs(t, err, conversation.ErrSlotEmpty)

			scopes, err = b.Scopes()
			require.NoError(t, err)
			assert.Empty(t, scopes)
		})
	}
}

func TestBackend_ConversationRoundTrip(t *testing.T) {
	for _, bf := range backends() {
		t.Run(bf.name, func(t *testing.T) {
			b := bf.open(t)
			slot, err := b.Slot("tty-7", "chatHistory")
			require.NoError(t, err)

			store := conversation.Open(slot, zap.NewNop())
			at := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
			require.NoError(t, store.Append(conversation.NewExchange("1", "hi", "Hello!", at)))
			require.NoError(t, store.Append(conversation.NewExchange("2", "bye", "Goodbye", at)))

			again, err := b.Slot("tty-7", "chatHistory")
			require.NoError(t, err)
			assert.Equal(t, store.All(), conversation.Open(again, zap.NewNop()).All())
		})
	}
}

func TestBackend_InvalidNames(t *testing.T) {
	for _, bf := range backends() {
		t.Run(bf.name, func(t *testing.T) {
			b := bf.open(t)
			for _, scope := range []string{"", "..", "a/b", "has space", string(make([]byte, MaxScopeLength+1))} {
				_, err := b.Slot(scope, "chatHistory")
				assert.ErrorIs(t, err, ErrInvalidScope, "scope %q", scope)
			}
			_, err := b.Slot("ok", "../escape")
			assert.ErrorIs(t, err, ErrInvalidScope)
		})
	}
}

func TestMemoryBackend_PurgeOlderThan(t *testing.T) {
	b := NewMemoryBackend()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	b.now = func() time.Time { return base.Add(-48 * time.Hour) }
	old, _ := b.Slot("old", "chatHistory")
	require.NoError(t, old.Write([]byte("x")))

	b.now = func() time.Time { return base.Add(-time.Hour) }
	fresh, _ := b.Slot("fresh", "chatHistory")
	require.NoError(t, fresh.Write([]byte("y")))

	removed, err := b.PurgeOlderThan(24*time.Hour, base)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	_, err = old.Read()
	assert.ErrorIs(t, err, conversation.ErrSlotEmpty)
	_, err = fresh.Read()
	assert.NoError(t, err)
}

func TestSessionDB_PurgeOlderThan(t *testing.T) {
	db, err := OpenSessionDB(filepath.Join(t.TempDir(), "s.db"))
	require.NoError(t, err)
	defer db.Close()

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	db.now = func() time.Time { return base.Add(-72 * time.Hour) }
	old, _ := db.Slot("old", "chatHistory")
	require.NoError(t, old.Write([]byte("x")))

	db.now = func() time.Time { return base }
	fresh, _ := db.Slot("fresh", "chatHistory")
	require.NoError(t, fresh.Write([]byte("y")))

	removed, err := db.PurgeOlderThan(24*time.Hour, base)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	scopes, err := db.Scopes()
	require.NoError(t, err)
	require.Len(t, scopes, 1)
	assert.Equal(t, "fresh", scopes[0].Scope)
	assert.True(t, scopes[0].UpdatedAt.Equal(base))
}

func TestSessionDB_ScopesNewestFirst(t *testing.T) {
	db, err := OpenSessionDB(filepath.Join(t.TempDir(), "s.db"))
	require.NoError(t, err)
	defer db.Close()

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	for i, scope := range []string{"first", "second", "third"} {
		db.now = func() time.Time { return base.Add(time.Duration(i) * time.Minute) }
		slot, _ := db.Slot(scope, "chatHistory")
		require.NoError(t, slot.Write([]byte(scope)))
	}

	scopes, err := db.Scopes()
	require.NoError(t, err)
	require.Len(t, scopes, 3)
	assert.Equal(t, "third", scopes[0].Scope)
	assert.Equal(t, "first", scopes[2].Scope)
}

func TestSessionDB_Closed(t *testing.T) {
	db, err := OpenSessionDB(filepath.Join(t.TempDir(), "s.db"))
	require.NoError(t, err)
	slot, _ := db.Slot("tty-1", "chatHistory")

	require.NoError(t, db.Close())
	require.NoError(t, db.Close(), "second Close must be a no-op")

	assert.True(t, errors.Is(slot.Write([]byte("x")), ErrClosed))
	_, err = slot.Read()
	assert.ErrorIs(t, err, ErrClosed)
	_, err = db.Scopes()
	assert.ErrorIs(t, err, ErrClosed)
}

func TestSessionDB_FilePermissions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "s.db")
	db, err := OpenSessionDB(path)
	require.NoError(t, err)
	defer db.Close()

	info, err := os.Stat(path)
	require.NoError(t, err)
	if perm := info.Mode().Perm(); perm&0077 != 0 && os.PathSeparator == '/' {
		t.Errorf("database permissions = %o, want owner-only", perm)
	}
}

func TestFileBackend_PurgeOlderThan(t *testing.T) {
	dir := t.TempDir()
	b, err := NewFileBackend(dir)
	require.NoError(t, err)

	old, _ := b.Slot("old", "chatHistory")
	require.NoError(t, old.Write([]byte("x")))
	fresh, _ := b.Slot("fresh", "chatHistory")
	require.NoError(t, fresh.Write([]byte("y")))

	now := time.Now()
	stale := now.Add(-30 * 24 * time.Hour)
	require.NoError(t, os.Chtimes(filepath.Join(dir, "old", "chatHistory.json"), stale, stale))

	removed, err := b.PurgeOlderThan(24*time.Hour, now)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	_, err = os.Stat(filepath.Join(dir, "old"))
	assert.True(t, os.IsNotExist(err), "stale scope directory should be removed")
	_, err = fresh.Read()
	assert.NoError(t, err)
}

func TestFileSlot_ClearRemovesEmptyScopeDir(t *testing.T) {
	dir := t.TempDir()
	b, err := NewFileBackend(dir)
	require.NoError(t, err)

	slot, _ := b.Slot("tty-3", "chatHistory")
	require.NoError(t, slot.Write([]byte("x")))
	require.NoError(t, slot.Clear())

	_, err = os.Stat(filepath.Join(dir, "tty-3"))
	assert.True(t, os.IsNotExist(err))
}

func TestNewMemorySlot(t *testing.T) {
	slot := NewMemorySlot()
	_, err := slot.Read()
	assert.ErrorIs(t, err, conversation.ErrSlotEmpty)

	data := []byte("abc")
	require.NoError(t, slot.Write(data))
	data[0] = 'z'

	got, err := slot.Read()
	require.NoError(t, err)
	assert.Equal(t, "abc", string(got), "slot must copy written bytes")
}
