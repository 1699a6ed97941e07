// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage provides the session-scoped slots conversations live in.
//
// A slot is addressed by a scope (one per terminal session) and a key. Every
// backend implements Backend so the session layer can swap them freely.
//
// # Key Types
//
//   - Backend: opens slots and manages scopes
//   - MemoryBackend: process-local slots, gone on exit
//   - FileBackend: one JSON file per slot under a directory
//   - SessionDB: SQLite table of slots, the default backend
//
// # Usage
//
//	db, err := storage.OpenSessionDB(path)
//	slot, err := db.Slot("tty-4242", "chatHistory")
//	store := conversation.Open(slot, logger)
//
// # Lifetime
//
// Slots are not durable: scopes untouched for longer than the configured
// TTL are purged whenever a session starts.
package storage
