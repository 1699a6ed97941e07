// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package conversation holds the ordered session history of exchanges.
//
// # Key Types
//
//   - Exchange: one query paired with its resolved response text
//   - Store: the in-memory conversation mirrored into a Slot
//   - Slot: a single key/value cell the store overwrites on every append
//
// # Usage
//
//	store := conversation.Open(slot, logger)
//	err := store.Append(conversation.NewExchange(id, query, answer, time.Now()))
//	for _, ex := range store.All() {
//	    fmt.Println(ex.Query, "->", ex.Response)
//	}
//
// # Persistence
//
// The slot always holds the full conversation as a JSON array of
// {id, query, response, timestamp} objects. It is written after every
// append, never incrementally. A slot that cannot be decoded is logged and
// ignored; the conversation then starts empty.
package conversation
