// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package conversation

import (
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// Slot is a single key/value cell holding the serialized conversation.
type Slot interface {
	// Read returns the stored bytes, or ErrSlotEmpty when nothing is stored.
	Read() ([]byte, error)
	// Write replaces the stored bytes.
	Write(data []byte) error
	// Clear removes the stored bytes.
	Clear() error
}

// Store is the conversation for one session. Appends are serialized and the
// slot is rewritten before Append returns.
type Store struct {
	mu        sync.RWMutex
	slot      Slot
	log       *zap.Logger
	exchanges []Exchange
	ids       map[string]struct{}
}

// Open creates a store bound to slot and loads whatever the slot holds.
func Open(slot Slot, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Store{slot: slot, log: log}
	s.Load()
	return s
}

// Load replaces the in-memory conversation with the slot contents. An
// absent slot yields an empty conversation; an unreadable or corrupt one is
// logged and discarded.
func (s *Store) Load() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.exchanges = []Exchange{}
	s.ids = make(map[string]struct{})

	data, err := s.slot.Read()
	if err != nil {
		if !errors.Is(err, ErrSlotEmpty) {
			s.log.Warn("failed to read chat history", zap.Error(err))
		}
		return
	}

	exchanges, err := Unmarshal(data)
	if err != nil {
		s.log.Warn("failed to load chat history, starting empty",
			zap.Error(err),
			zap.Int("bytes", len(data)))
		return
	}

	for _, ex := range exchanges {
		if _, dup := s.ids[ex.ID]; dup && ex.ID != "" {
			s.log.Debug("skipping duplicate exchange in history", zap.String("id", ex.ID))
			continue
		}
		s.ids[ex.ID] = struct{}{}
		s.exchanges = append(s.exchanges, ex)
	}
	s.log.Debug("chat history loaded", zap.Int("exchanges", len(s.exchanges)))
}

// Append adds ex to the end of the conversation and rewrites the slot.
//
// A *PersistError means the exchange is in memory but the slot write
// failed; any other error means nothing changed.
func (s *Store) Append(ex Exchange) error {
	if err := ex.validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, dup := s.ids[ex.ID]; dup {
		return fmt.Errorf("%w: %s", ErrDuplicateID, ex.ID)
	}

	s.exchanges = append(s.exchanges, ex)
	s.ids[ex.ID] = struct{}{}

	return s.persistLocked()
}

func (s *Store) persistLocked() error {
	// An empty conversation is never written.
	if len(s.exchanges) == 0 {
		return nil
	}
	data, err := Marshal(s.exchanges)
	if err != nil {
		return &PersistError{Cause: err}
	}
	if err := s.slot.Write(data); err != nil {
		s.log.Error("failed to persist chat history", zap.Error(err))
		return &PersistError{Cause: err}
	}
	return nil
}

// All returns a copy of the conversation in insertion order.
func (s *Store) All() []Exchange {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Exchange, len(s.exchanges))
	copy(out, s.exchanges)
	return out
}

// Len returns the number of exchanges.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.exchanges)
}

// Last returns the most recent exchange.
func (s *Store) Last() (Exchange, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.exchanges) == 0 {
		return Exchange{}, false
	}
	return s.exchanges[len(s.exchanges)-1], true
}

// Destroy ends the session: the slot is cleared and the conversation
// emptied.
func (s *Store) Destroy() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.exchanges = []Exchange{}
	s.ids = make(map[string]struct{})
	if err := s.slot.Clear(); err != nil {
		return fmt.Errorf("failed to clear chat history: %w", err)
	}
	return nil
}
