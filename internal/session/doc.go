// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session ties a terminal session to its conversation history.
//
// A scope plays the part a browser tab plays for a web page: every scope
// gets its own history, and a history disappears once its scope has been
// idle for longer than the configured TTL.
//
// # Scope Resolution
//
// ResolveScope picks, in order:
//   - the --session flag
//   - the ORB_SESSION environment variable
//   - tty-<parent pid>, one scope per shell
//
// # Usage
//
//	scope, err := session.ResolveScope(flagValue)
//	sess, err := session.Open(cfg, scope, logger)
//	defer sess.Close()
//	sess.Store.Append(exchange)
package session
