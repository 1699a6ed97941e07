// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"errors"
	"fmt"
	"time"

	"github.com/jeranaias/orb-tui/internal/conversation"
)

// Backend kinds accepted in configuration.
const (
	KindSQLite = "sqlite"
	KindFile   = "file"
	KindMemory = "memory"
)

// MaxScopeLength bounds scope names so they stay usable as file names.
const MaxScopeLength = 128

// ErrInvalidScope is returned for scope or key names that are empty, too
// long or contain characters outside [A-Za-z0-9._-].
var ErrInvalidScope = errors.New("invalid scope name")

// ErrClosed is returned by operations on a closed backend.
var ErrClosed = errors.New("storage closed")

// Backend opens slots and manages the scopes they live in.
type Backend interface {
	// Slot returns the slot for key inside scope. It does not create
	// anything until the slot is written.
	Slot(scope, key string) (conversation.Slot, error)

	// Scopes lists every scope holding at least one slot, newest first.
	Scopes() ([]ScopeInfo, error)

	// DeleteScope removes every slot in scope.
	DeleteScope(scope string) error

	// PurgeOlderThan removes scopes whose newest slot was written before
	// now minus age. It returns the number of scopes removed.
	PurgeOlderThan(age time.Duration, now time.Time) (int, error)

	// Close releases the backend.
	Close() error
}

// ScopeInfo summarizes one scope.
type ScopeInfo struct {
	Scope     string
	Slots     int
	Bytes     int64
	UpdatedAt time.Time
}

// ValidateName checks a scope or key name.
func ValidateName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty", ErrInvalidScope)
	}
	if len(name) > MaxScopeLength {
		return fmt.Errorf("%w: longer than %d characters", ErrInvalidScope, MaxScopeLength)
	}
	if name == "." || name == ".." {
		return fmt.Errorf("%w: %q", ErrInvalidScope, name)
	}
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '.', r == '_', r == '-':
		default:
			return fmt.Errorf("%w: %q contains %q", ErrInvalidScope, name, r)
		}
	}
	return nil
}

func validatePair(scope, key string) error {
	if err := ValidateName(scope); err != nil {
		return err
	}
	return ValidateName(key)
}
