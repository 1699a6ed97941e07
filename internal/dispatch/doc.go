// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package dispatch turns user input into recorded exchanges.
//
// A Dispatcher is either Idle or Pending. Accept moves it to Pending and
// returns a Request; Request.Run performs the webhook call, extracts the
// answer, appends it to the conversation and always returns the dispatcher
// to Idle. At most one request is in flight, and a submit while Pending is
// ignored.
//
//	                Accept
//	    ┌──────┐ ───────────▶ ┌─────────┐
//	    │ Idle │              │ Pending │
//	    └──────┘ ◀─────────── └─────────┘
//	             Run finishes
//
// Failures never escape as panics or leave the dispatcher Pending: they are
// recorded in Status.Err until the next accepted submit clears it.
package dispatch
