// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package export writes a session's conversation to a file.
//
// # Supported Formats
//
//   - Markdown: the transcript shown by `orb history show`
//   - JSON: every exchange with its ID and timestamp
//   - HTML: a standalone page with answers rendered from markdown
//
// # Usage
//
//	exporter, err := export.New(export.FormatHTML, nil)
//	path, err := export.ExportToFile(export.Document{
//	    Title:     "Ask Me Anything",
//	    Session:   sess.Scope,
//	    Exchanges: sess.Store.All(),
//	}, exporter, "chat.html")
package export
