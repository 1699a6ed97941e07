// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jeranaias/orb-tui/internal/conversation"
	"github.com/jeranaias/orb-tui/internal/util"
)

// FileBackend stores each slot as <dir>/<scope>/<key>.json.
type FileBackend struct {
	// BaseDir holds one directory per scope.
	// Default: ~/.orb/sessions/
	BaseDir string
}

// NewFileBackend creates a file backend rooted at dir.
func NewFileBackend(dir string) (*FileBackend, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create session directory: %w", err)
	}
	return &FileBackend{BaseDir: dir}, nil
}

// Slot implements Backend.
func (b *FileBackend) Slot(scope, key string) (conversation.Slot, error) {
	if err := validatePair(scope, key); err != nil {
		return nil, err
	}
	return &FileSlot{Path: filepath.Join(b.BaseDir, scope, key+".json")}, nil
}

// Scopes implements Backend.
func (b *FileBackend) Scopes() ([]ScopeInfo, error) {
	entries, err := os.ReadDir(b.BaseDir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []ScopeInfo{}, nil
		}
		return nil, err
	}

	infos := make([]ScopeInfo, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		info, ok := b.scopeInfo(entry.Name())
		if ok {
			infos = append(infos, info)
		}
	}
	sortScopes(infos)
	return infos, nil
}

func (b *FileBackend) scopeInfo(scope string) (ScopeInfo, bool) {
	files, err := os.ReadDir(filepath.Join(b.BaseDir, scope))
	if err != nil {
		return ScopeInfo{}, false
	}
	info := ScopeInfo{Scope: scope}
	for _, f := range files {
		if f.IsDir() || !strings.HasSuffix(f.Name(), ".json") {
			continue
		}
		fi, err := f.Info()
		if err != nil {
			continue
		}
		info.Slots++
		info.Bytes += fi.Size()
		if fi.ModTime().After(info.UpdatedAt) {
			info.UpdatedAt = fi.ModTime()
		}
	}
	return info, info.Slots > 0
}

// DeleteScope implements Backend.
func (b *FileBackend) DeleteScope(scope string) error {
	if err := ValidateName(scope); err != nil {
		return err
	}
	return os.RemoveAll(filepath.Join(b.BaseDir, scope))
}

// PurgeOlderThan implements Backend.
func (b *FileBackend) PurgeOlderThan(age time.Duration, now time.Time) (int, error) {
	infos, err := b.Scopes()
	if err != nil {
		return 0, err
	}
	cutoff := now.Add(-age)
	removed := 0
	for _, info := range infos {
		if !info.UpdatedAt.Before(cutoff) {
			continue
		}
		if err := os.RemoveAll(filepath.Join(b.BaseDir, info.Scope)); err != nil {
			return removed, err
		}
		removed++
	}
	return removed, nil
}

// Close implements Backend.
func (b *FileBackend) Close() error { return nil }

// FileSlot is a slot backed by a single file.
type FileSlot struct {
	Path string
}

// Read implements conversation.Slot.
func (s *FileSlot) Read() ([]byte, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, conversation.ErrSlotEmpty
		}
		return nil, err
	}
	return data, nil
}

// Write implements conversation.Slot.
func (s *FileSlot) Write(data []byte) error {
	// RELIABILITY: Atomic write with fsync prevents a torn history on crash
	return util.AtomicWriteFile(s.Path, data, 0600)
}

// Clear implements conversation.Slot.
func (s *FileSlot) Clear() error {
	err := os.Remove(s.Path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	// Drop the scope directory once it is empty.
	_ = os.Remove(filepath.Dir(s.Path))
	return nil
}
