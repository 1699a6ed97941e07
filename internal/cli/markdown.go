// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
)

// renderFunc turns an answer into the text written to the terminal.
type renderFunc func(string) string

func plainText(s string) string { return s }

// markdownFor returns a glamour renderer when out is an interactive stdout
// and raw is false. Piped output is left untouched so it stays parseable.
func markdownFor(out io.Writer, raw bool) renderFunc {
	if f, ok := out.(*os.File); raw || !ok || f != os.Stdout || !IsStdoutTTY() {
		return plainText
	}

	tr, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(min(GetTerminalWidth()-2, MaxMarkdownWidth)),
	)
	if err != nil {
		return plainText
	}
	return func(s string) string {
		rendered, err := tr.Render(s)
		if err != nil {
			return s
		}
		return strings.Trim(rendered, "\n")
	}
}
