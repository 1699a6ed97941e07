// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small helpers shared across orb.
//
// # Key Functions
//
// String Utilities:
//   - TruncateRunes: UTF-8 safe string truncation with ellipsis
//   - TruncateWidth: display-width aware truncation (CJK, emoji)
//   - SingleLine: collapse whitespace for previews
//
// File Operations:
//   - AtomicWriteFile: Crash-safe file writing with fsync
//
// # Usage
//
//	preview := util.TruncateRunes(util.SingleLine(query), 60)
//	err := util.AtomicWriteFile(path, data, 0600)
package util
