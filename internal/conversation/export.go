// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package conversation

import (
	"encoding/json"
	"strings"
	"time"
)

// ExportMarkdown renders exchanges as a markdown transcript.
func ExportMarkdown(title string, exchanges []Exchange) string {
	var sb strings.Builder
	if title == "" {
		title = "Conversation"
	}
	sb.WriteString("# " + title + "\n\n")
	if len(exchanges) == 0 {
		sb.WriteString("_No messages yet._\n")
		return sb.String()
	}
	sb.WriteString("---\n\n")

	for _, ex := range exchanges {
		stamp := ex.CreatedAt().Local().Format("2006-01-02 15:04")
		sb.WriteString("**You** (" + stamp + "):\n\n")
		sb.WriteString(ex.Query)
		sb.WriteString("\n\n**Answer**:\n\n")
		sb.WriteString(ex.Response)
		sb.WriteString("\n\n---\n\n")
	}
	return sb.String()
}

// jsonExport is the envelope written by ExportJSON.
type jsonExport struct {
	Title      string     `json:"title"`
	ExportedAt time.Time  `json:"exported_at"`
	Exchanges  []Exchange `json:"exchanges"`
}

// ExportJSON renders exchanges as an indented JSON document.
func ExportJSON(title string, exchanges []Exchange, now time.Time) ([]byte, error) {
	if exchanges == nil {
		exchanges = []Exchange{}
	}
	return json.MarshalIndent(jsonExport{
		Title:      title,
		ExportedAt: now.UTC(),
		Exchanges:  exchanges,
	}, "", "  ")
}
