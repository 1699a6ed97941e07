// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package conversation

import (
	"errors"
	"fmt"
)

var (
	// ErrSlotEmpty is returned by Slot.Read when nothing has been written yet.
	ErrSlotEmpty = errors.New("slot is empty")

	// ErrDuplicateID is returned when an appended exchange reuses an ID.
	ErrDuplicateID = errors.New("duplicate exchange id")

	// ErrInvalidExchange matches every *InvalidExchangeError via errors.Is.
	ErrInvalidExchange = errors.New("invalid exchange")
)

// InvalidExchangeError describes which invariant an exchange violated.
type InvalidExchangeError struct {
	Field  string
	Reason string
}

func (e *InvalidExchangeError) Error() string {
	return fmt.Sprintf("invalid exchange: %s %s", e.Field, e.Reason)
}

// Is lets errors.Is(err, ErrInvalidExchange) match.
func (e *InvalidExchangeError) Is(target error) bool {
	return target == ErrInvalidExchange
}

// PersistError reports that the conversation changed in memory but could
// not be written to its slot.
type PersistError struct {
	Cause error
}

func (e *PersistError) Error() string {
	return "failed to persist conversation: " + e.Cause.Error()
}

func (e *PersistError) Unwrap() error {
	return e.Cause
}
