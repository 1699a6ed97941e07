// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import "github.com/jeranaias/orb-tui/internal/conversation"

// MarkdownExporter writes the markdown transcript.
type MarkdownExporter struct{}

// Export converts a document to markdown.
func (e *MarkdownExporter) Export(doc Document) ([]byte, error) {
	return []byte(conversation.ExportMarkdown(doc.Title, doc.Exchanges)), nil
}

// FileExtension returns the file extension for markdown.
func (e *MarkdownExporter) FileExtension() string { return ".md" }

// MimeType returns the MIME type for markdown.
func (e *MarkdownExporter) MimeType() string { return "text/markdown" }
