// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jeranaias/orb-tui/internal/conversation"
	"github.com/jeranaias/orb-tui/internal/util"
)

// =============================================================================
// FORMATS
// =============================================================================

// Format names an export format.
type Format string

const (
	FormatMarkdown Format = "markdown"
	FormatJSON     Format = "json"
	FormatHTML     Format = "html"
)

// Formats lists every supported format.
var Formats = []Format{FormatMarkdown, FormatJSON, FormatHTML}

// ParseFormat accepts a format name or a common alias ("md", "htm").
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "markdown", "md", "":
		return FormatMarkdown, nil
	case "json":
		return FormatJSON, nil
	case "html", "htm":
		return FormatHTML, nil
	}
	return "", fmt.Errorf("unknown export format %q (want markdown, json or html)", name)
}

// =============================================================================
// EXPORT INTERFACE
// =============================================================================

// Document is the conversation being exported.
type Document struct {
	Title      string
	Session    string
	Exchanges  []conversation.Exchange
	ExportedAt time.Time
}

// Exporter converts a document to one format.
type Exporter interface {
	// Export renders doc.
	Export(doc Document) ([]byte, error)

	// FileExtension returns the file extension, including the dot.
	FileExtension() string

	// MimeType returns the MIME type of the output.
	MimeType() string
}

// Options configures export behavior.
type Options struct {
	// IncludeTimestamps adds per-exchange times to HTML output.
	IncludeTimestamps bool

	// Theme for HTML export ("light" or "dark").
	Theme string
}

// DefaultOptions returns default export options.
func DefaultOptions() *Options {
	return &Options{
		IncludeTimestamps: true,
		Theme:             "dark",
	}
}

// New returns the exporter for format.
func New(format Format, opts *Options) (Exporter, error) {
	switch format {
	case FormatMarkdown:
		return &MarkdownExporter{}, nil
	case FormatJSON:
		return &JSONExporter{}, nil
	case FormatHTML:
		return NewHTMLExporter(opts), nil
	}
	return nil, fmt.Errorf("unknown export format %q", format)
}

// =============================================================================
// FILE OUTPUT
// =============================================================================

// ExportToFile renders doc and writes it to path. When path is a directory
// a file name is derived from the session and export time. The file is
// written atomically with owner-only permissions; the final path is
// returned.
func ExportToFile(doc Document, exporter Exporter, path string) (string, error) {
	content, err := exporter.Export(doc)
	if err != nil {
		return "", fmt.Errorf("export failed: %w", err)
	}

	if info, statErr := os.Stat(path); statErr == nil && info.IsDir() {
		path = filepath.Join(path, Filename(doc, exporter.FileExtension()))
	}
	if err := util.AtomicWriteFile(path, content, 0600); err != nil {
		return "", fmt.Errorf("write file: %w", err)
	}
	return path, nil
}

// Filename derives a file name such as "orb_work_20250203_040506.md".
func Filename(doc Document, ext string) string {
	at := doc.ExportedAt
	if at.IsZero() {
		at = time.Now()
	}
	return fmt.Sprintf("orb_%s_%s%s", sanitizeFilename(doc.Session), at.Format("20060102_150405"), ext)
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// sanitizeFilename replaces characters that are invalid in file names on
// any platform.
func sanitizeFilename(s string) string {
	const maxLen = 50
	if runes := []rune(s); len(runes) > maxLen {
		s = string(runes[:maxLen])
	}

	var sb strings.Builder
	for _, r := range s {
		switch {
		case strings.ContainsRune(`/\:*?"<>|`, r):
			sb.WriteRune('-')
		case r == ' ' || r == '\t' || r == '\n' || r == '\r':
			sb.WriteRune('_')
		case r < 32 || r == 127:
			sb.WriteRune('-')
		default:
			sb.WriteRune(r)
		}
	}

	if sb.Len() == 0 {
		return "conversation"
	}
	return sb.String()
}
