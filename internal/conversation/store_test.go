// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package conversation

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// fakeSlot is an in-memory Slot with failure injection.
type fakeSlot struct {
	data     []byte
	set      bool
	writes   int
	writeErr error
	readErr  error
}

func (f *fakeSlot) Read() ([]byte, error) {
	if f.readErr != nil {
		return nil, f.readErr
	}
	if !f.set {
		return nil, ErrSlotEmpty
	}
	return append([]byte(nil), f.data...), nil
}

func (f *fakeSlot) Write(data []byte) error {
	if f.writeErr != nil {
		return f.writeErr
	}
	f.data = append([]byte(nil), data...)
	f.set = true
	f.writes++
	return nil
}

func (f *fakeSlot) Clear() error {
	f.data = nil
	f.set = false
	return nil
}

var testTime = time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)

func TestOpen_EmptySlot(t *testing.T) {
	store := Open(&fakeSlot{}, zap.NewNop())
	if store.Len() != 0 {
		t.Errorf("Len() = %d, want 0", store.Len())
	}
	if got := store.All(); got == nil || len(got) != 0 {
		t.Errorf("All() = %#v, want empty non-nil slice", got)
	}
}

func TestAppend_PersistsWholeConversation(t *testing.T) {
	slot := &fakeSlot{}
	store := Open(slot, zap.NewNop())

	first := NewExchange("1", "hi", "Hello!", testTime)
	second := NewExchange("2", "again", "Hello again", testTime.Add(time.Second))

	if err := store.Append(first); err != nil {
		t.Fatalf("Append(first) error = %v", err)
	}
	if err := store.Append(second); err != nil {
		t.Fatalf("Append(second) error = %v", err)
	}

	if slot.writes != 2 {
		t.Errorf("slot writes = %d, want 2", slot.writes)
	}

	var stored []map[string]any
	if err := json.Unmarshal(slot.data, &stored); err != nil {
		t.Fatalf("slot holds invalid JSON: %v", err)
	}
	if len(stored) != 2 {
		t.Fatalf("slot holds %d exchanges, want 2", len(stored))
	}
	for _, key := range []string{"id", "query", "response", "timestamp"} {
		if _, ok := stored[0][key]; !ok {
			t.Errorf("stored exchange missing key %q", key)
		}
	}

	want := []Exchange{first, second}
	if diff := cmp.Diff(want, store.All()); diff != "" {
		t.Errorf("All() mismatch (-want +got):\n%s", diff)
	}
}

func TestOpen_RoundTrip(t *testing.T) {
	slot := &fakeSlot{}
	store := Open(slot, zap.NewNop())
	for i, q := range []string{"one", "two", "three"} {
		ex := NewExchange(strings.Repeat("x", i+1), q, "answer "+q, testTime.Add(time.Duration(i)*time.Minute))
		if err := store.Append(ex); err != nil {
			t.Fatalf("Append(%q) error = %v", q, err)
		}
	}

	reopened := Open(slot, zap.NewNop())
	if diff := cmp.Diff(store.All(), reopened.All()); diff != "" {
		t.Errorf("reopened conversation mismatch (-want +got):\n%s", diff)
	}
}

func TestOpen_CorruptSlotStartsEmpty(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	slot := &fakeSlot{data: []byte("not json"), set: true}

	store := Open(slot, zap.New(core))

	if store.Len() != 0 {
		t.Errorf("Len() = %d, want 0", store.Len())
	}
	if logs.FilterMessage("failed to load chat history, starting empty").Len() != 1 {
		t.Errorf("expected one warning about corrupt history, got %v", logs.All())
	}

	// The next append overwrites the corrupt data.
	if err := store.Append(NewExchange("a", "q", "r", testTime)); err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	got, err := Unmarshal(slot.data)
	if err != nil {
		t.Fatalf("slot still corrupt after append: %v", err)
	}
	if len(got) != 1 {
		t.Errorf("slot holds %d exchanges, want 1", len(got))
	}
}

func TestOpen_WrongShapeStartsEmpty(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	slot := &fakeSlot{data: []byte(`{"id":"1"}`), set: true}

	store := Open(slot, zap.New(core))
	if store.Len() != 0 {
		t.Errorf("Len() = %d, want 0", store.Len())
	}
	if logs.Len() == 0 {
		t.Error("expected a warning for non-array history")
	}
}

func TestOpen_NullSlot(t *testing.T) {
	store := Open(&fakeSlot{data: []byte("null"), set: true}, zap.NewNop())
	if store.Len() != 0 {
		t.Errorf("Len() = %d, want 0", store.Len())
	}
}

func TestAppend_Validation(t *testing.T) {
	tests := []struct {
		name string
		ex   Exchange
	}{
		{"empty id", NewExchange("", "q", "r", testTime)},
		{"empty query", NewExchange("1", "", "r", testTime)},
		{"blank query", NewExchange("1", "  \n", "r", testTime)},
		{"empty response", NewExchange("1", "q", "", testTime)},
		{"blank response", NewExchange("1", "q", "\t", testTime)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			slot := &fakeSlot{}
			store := Open(slot, zap.NewNop())
			err := store.Append(tt.ex)
			if !errors.Is(err, ErrInvalidExchange) {
				t.Errorf("Append() error = %v, want ErrInvalidExchange", err)
			}
			if store.Len() != 0 || slot.writes != 0 {
				t.Errorf("invalid exchange was stored (len=%d writes=%d)", store.Len(), slot.writes)
			}
		})
	}
}

func TestAppend_DuplicateID(t *testing.T) {
	store := Open(&fakeSlot{}, zap.NewNop())
	if err := store.Append(NewExchange("same", "q1", "r1", testTime)); err != nil {
		t.Fatalf("first Append() error = %v", err)
	}
	err := store.Append(NewExchange("same", "q2", "r2", testTime))
	if !errors.Is(err, ErrDuplicateID) {
		t.Errorf("Append() error = %v, want ErrDuplicateID", err)
	}
	if store.Len() != 1 {
		t.Errorf("Len() = %d, want 1", store.Len())
	}
}

func TestAppend_PersistFailureKeepsExchange(t *testing.T) {
	slot := &fakeSlot{writeErr: errors.New("quota exceeded")}
	store := Open(slot, zap.NewNop())

	err := store.Append(NewExchange("1", "q", "r", testTime))

	var perr *PersistError
	if !errors.As(err, &perr) {
		t.Fatalf("Append() error = %v, want *PersistError", err)
	}
	if !strings.Contains(perr.Error(), "quota exceeded") {
		t.Errorf("PersistError = %q, want cause in message", perr.Error())
	}
	if store.Len() != 1 {
		t.Errorf("Len() = %d, want 1 (exchange kept in memory)", store.Len())
	}
}

func TestAll_ReturnsCopy(t *testing.T) {
	store := Open(&fakeSlot{}, zap.NewNop())
	_ = store.Append(NewExchange("1", "q", "r", testTime))

	got := store.All()
	got[0].Response = "mutated"

	if store.All()[0].Response != "r" {
		t.Error("mutating All() result changed the store")
	}
}

func TestLast(t *testing.T) {
	store := Open(&fakeSlot{}, zap.NewNop())
	if _, ok := store.Last(); ok {
		t.Error("Last() on empty store reported ok")
	}
	_ = store.Append(NewExchange("1", "q1", "r1", testTime))
	_ = store.Append(NewExchange("2", "q2", "r2", testTime))
	last, ok := store.Last()
	if !ok || last.ID != "2" {
		t.Errorf("Last() = %+v, %v, want id 2", last, ok)
	}
}

func TestDestroy(t *testing.T) {
	slot := &fakeSlot{}
	store := Open(slot, zap.NewNop())
	_ = store.Append(NewExchange("1", "q", "r", testTime))

	if err := store.Destroy(); err != nil {
		t.Fatalf("Destroy() error = %v", err)
	}
	if store.Len() != 0 {
		t.Errorf("Len() = %d after Destroy, want 0", store.Len())
	}
	if _, err := slot.Read(); !errors.Is(err, ErrSlotEmpty) {
		t.Errorf("slot.Read() error = %v, want ErrSlotEmpty", err)
	}

	// A fresh session reusing the same slot starts empty.
	if Open(slot, zap.NewNop()).Len() != 0 {
		t.Error("reopened store is not empty after Destroy")
	}
}

func TestNewExchange_Timestamp(t *testing.T) {
	ex := NewExchange("1", "q", "r", testTime)
	if ex.Timestamp != testTime.UnixMilli() {
		t.Errorf("Timestamp = %d, want %d", ex.Timestamp, testTime.UnixMilli())
	}
	if !ex.CreatedAt().Equal(testTime) {
		t.Errorf("CreatedAt() = %v, want %v", ex.CreatedAt(), testTime)
	}
}
