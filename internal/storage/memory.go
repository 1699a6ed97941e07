// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"sort"
	"sync"
	"time"

	"github.com/jeranaias/orb-tui/internal/conversation"
)

// MemoryBackend keeps slots in process memory.
type MemoryBackend struct {
	mu     sync.Mutex
	scopes map[string]map[string]memoryCell
	now    func() time.Time
}

type memoryCell struct {
	data      []byte
	updatedAt time.Time
}

// NewMemoryBackend creates an empty in-memory backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{
		scopes: make(map[string]map[string]memoryCell),
		now:    time.Now,
	}
}

// Slot implements Backend.
func (m *MemoryBackend) Slot(scope, key string) (conversation.Slot, error) {
	if err := validatePair(scope, key); err != nil {
		return nil, err
	}
	return &MemorySlot{backend: m, scope: scope, key: key}, nil
}

// Scopes implements Backend.
func (m *MemoryBackend) Scopes() ([]ScopeInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	infos := make([]ScopeInfo, 0, len(m.scopes))
	for scope, cells := range m.scopes {
		info := ScopeInfo{Scope: scope}
		for _, c := range cells {
			info.Slots++
			info.Bytes += int64(len(c.data))
			if c.updatedAt.After(info.UpdatedAt) {
				info.UpdatedAt = c.updatedAt
			}
		}
		infos = append(infos, info)
	}
	sortScopes(infos)
	return infos, nil
}

// DeleteScope implements Backend.
func (m *MemoryBackend) DeleteScope(scope string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.scopes, scope)
	return nil
}

// PurgeOlderThan implements Backend.
func (m *MemoryBackend) PurgeOlderThan(age time.Duration, now time.Time) (int, error) {
	infos, _ := m.Scopes()
	cutoff := now.Add(-age)

	m.mu.Lock()
	defer m.mu.Unlock()
	removed := 0
	for _, info := range infos {
		if info.UpdatedAt.Before(cutoff) {
			delete(m.scopes, info.Scope)
			removed++
		}
	}
	return removed, nil
}

// Close implements Backend.
func (m *MemoryBackend) Close() error { return nil }

// MemorySlot is a slot held by a MemoryBackend.
type MemorySlot struct {
	backend *MemoryBackend
	scope   string
	key     string
}

// NewMemorySlot returns a standalone in-memory slot.
func NewMemorySlot() *MemorySlot {
	return &MemorySlot{backend: NewMemoryBackend(), scope: "default", key: "default"}
}

// Read implements conversation.Slot.
func (s *MemorySlot) Read() ([]byte, error) {
	s.backend.mu.Lock()
	defer s.backend.mu.Unlock()

	cell, ok := s.backend.scopes[s.scope][s.key]
	if !ok {
		return nil, conversation.ErrSlotEmpty
	}
	return append([]byte(nil), cell.data...), nil
}

// Write implements conversation.Slot.
func (s *MemorySlot) Write(data []byte) error {
	s.backend.mu.Lock()
	defer s.backend.mu.Unlock()

	cells, ok := s.backend.scopes[s.scope]
	if !ok {
		cells = make(map[string]memoryCell)
		s.backend.scopes[s.scope] = cells
	}
	cells[s.key] = memoryCell{data: append([]byte(nil), data...), updatedAt: s.backend.now()}
	return nil
}

// Clear implements conversation.Slot.
func (s *MemorySlot) Clear() error {
	s.backend.mu.Lock()
	defer s.backend.mu.Unlock()

	cells := s.backend.scopes[s.scope]
	delete(cells, s.key)
	if len(cells) == 0 {
		delete(s.backend.scopes, s.scope)
	}
	return nil
}

func sortScopes(infos []ScopeInfo) {
	sort.Slice(infos, func(i, j int) bool {
		if infos[i].UpdatedAt.Equal(infos[j].UpdatedAt) {
			return infos[i].Scope < infos[j].Scope
		}
		return infos[i].UpdatedAt.After(infos[j].UpdatedAt)
	})
}
