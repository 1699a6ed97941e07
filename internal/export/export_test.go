// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/orb-tui/internal/conversation"
)

var exportedAt = time.Date(2025, 2, 3, 4, 5, 6, 0, time.UTC)

func testDocument() Document {
	return Document{
		Title:   "Ask Me Anything",
		Session: "work",
		Exchanges: []conversation.Exchange{
			{ID: "a1", Query: "What is Go?", Response: "A **language**.\n\n- fast\n- simple", Timestamp: exportedAt.UnixMilli()},
			{ID: "a2", Query: "<b>bold?</b>", Response: "`code`", Timestamp: exportedAt.Add(time.Minute).UnixMilli()},
		},
		ExportedAt: exportedAt,
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want Format
	}{
		{"markdown", FormatMarkdown},
		{"MD", FormatMarkdown},
		{"", FormatMarkdown},
		{"json", FormatJSON},
		{" html ", FormatHTML},
		{"htm", FormatHTML},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := ParseFormat("pdf")
	assert.Error(t, err)
}

func TestNew_Extensions(t *testing.T) {
	want := map[Format]string{FormatMarkdown: ".md", FormatJSON: ".json", FormatHTML: ".html"}
	for _, f := range Formats {
		e, err := New(f, nil)
		require.NoError(t, err)
		assert.Equal(t, want[f], e.FileExtension())
		assert.NotEmpty(t, e.MimeType())
	}

	_, err := New("pdf", nil)
	assert.Error(t, err)
}

func TestMarkdownExporter(t *testing.T) {
	out, err := (&MarkdownExporter{}).Export(testDocument())
	require.NoError(t, err)
	s := string(out)
	assert.True(t, strings.HasPrefix(s, "# Ask Me Anything\n"))
	assert.Contains(t, s, "What is Go?")
	assert.Contains(t, s, "A **language**.")
}

func TestJSONExporter(t *testing.T) {
	out, err := (&JSONExporter{}).Export(testDocument())
	require.NoError(t, err)

	var got struct {
		Title      string                  `json:"title"`
		ExportedAt time.Time               `json:"exported_at"`
		Exchanges  []conversation.Exchange `json:"exchanges"`
	}
	require.NoError(t, json.Unmarshal(out, &got))
	assert.Equal(t, "Ask Me Anything", got.Title)
	assert.True(t, exportedAt.Equal(got.ExportedAt))
	require.Len(t, got.Exchanges, 2)
	assert.Equal(t, "a2", got.Exchanges[1].ID)
}

func TestHTMLExporter_RendersMarkdown(t *testing.T) {
	out, err := NewHTMLExporter(nil).Export(testDocument())
	require.NoError(t, err)
	s := string(out)

	assert.Contains(t, s, "<!DOCTYPE html>")
	assert.Contains(t, s, `class="dark-theme"`)
	assert.Contains(t, s, "<title>Ask Me Anything</title>")
	assert.Contains(t, s, "<strong>language</strong>")
	assert.Contains(t, s, "<li>fast</li>")
	assert.Contains(t, s, "<code>code</code>")
	assert.Contains(t, s, "2 exchanges")
	assert.Contains(t, s, "Session work")
}

func TestHTMLExporter_EscapesQueries(t *testing.T) {
	out, err := NewHTMLExporter(nil).Export(testDocument())
	require.NoError(t, err)
	s := string(out)
	assert.NotContains(t, s, "<b>bold?</b>")
	assert.Contains(t, s, "&lt;b&gt;bold?&lt;/b&gt;")
}

func TestHTMLExporter_DropsRawHTMLInAnswers(t *testing.T) {
	doc := testDocument()
	doc.Exchanges = []conversation.Exchange{{
		ID:       "x",
		Query:    "hi",
		Response: "before\n\n<script>alert('xss')</script>\n\nafter",
	}}
	out, err := NewHTMLExporter(nil).Export(doc)
	require.NoError(t, err)
	s := string(out)
	assert.NotContains(t, s, "<script>alert")
	assert.Contains(t, s, "before")
	assert.Contains(t, s, "after")
}

func TestHTMLExporter_ThemeAndTimestamps(t *testing.T) {
	out, err := NewHTMLExporter(&Options{Theme: "light"}).Export(testDocument())
	require.NoError(t, err)
	assert.Contains(t, string(out), `class="light-theme"`)
	assert.NotContains(t, string(out), `class="time"`)

	out, err = NewHTMLExporter(&Options{Theme: "neon", IncludeTimestamps: true}).Export(testDocument())
	require.NoError(t, err)
	assert.Contains(t, string(out), `class="dark-theme"`)
	assert.Contains(t, string(out), `class="time"`)
}

func TestHTMLExporter_Empty(t *testing.T) {
	out, err := NewHTMLExporter(nil).Export(Document{ExportedAt: exportedAt})
	require.NoError(t, err)
	assert.Contains(t, string(out), "No exchanges yet.")
	assert.Contains(t, string(out), "<title>Conversation</title>")
}

func TestExportToFile(t *testing.T) {
	dir := t.TempDir()
	e, err := New(FormatMarkdown, nil)
	require.NoError(t, err)

	path := filepath.Join(dir, "chat.md")
	got, err := ExportToFile(testDocument(), e, path)
	require.NoError(t, err)
	assert.Equal(t, path, got)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestExportToFile_Directory(t *testing.T) {
	dir := t.TempDir()
	e, err := New(FormatJSON, nil)
	require.NoError(t, err)

	got, err := ExportToFile(testDocument(), e, dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "orb_work_20250203_040506.json"), got)
	assert.FileExists(t, got)
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"work", "work"},
		{"a/b\\c:d", "a-b-c-d"},
		{"two words", "two_words"},
		{"", "conversation"},
		{strings.Repeat("x", 80), strings.Repeat("x", 50)},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, sanitizeFilename(tt.in), tt.in)
	}
}
