// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"time"

	"github.com/jeranaias/orb-tui/internal/conversation"
)

// JSONExporter writes the exchanges as an indented JSON document that keeps
// the stored IDs and timestamps.
type JSONExporter struct{}

// Export converts a document to JSON.
func (e *JSONExporter) Export(doc Document) ([]byte, error) {
	at := doc.ExportedAt
	if at.IsZero() {
		at = time.Now()
	}
	data, err := conversation.ExportJSON(doc.Title, doc.Exchanges, at)
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// FileExtension returns the file extension for JSON.
func (e *JSONExporter) FileExtension() string { return ".json" }

// MimeType returns the MIME type for JSON.
func (e *JSONExporter) MimeType() string { return "application/json" }
