// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// styles.go - Shared styling for the line-oriented commands.
//
// Colors come from the TUI palette so `orb chat` and `orb ask` look like
// the full screen interface. Colors are disabled for non-TTY output and
// when NO_COLOR is set.

package cli

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/orb-tui/internal/ui/styles"
)

func init() {
	lipgloss.SetColorProfile(GetColorProfile())
}

// =============================================================================
// SHARED STYLES
// =============================================================================

var (
	// TitleStyle is used for banners and headers
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(styles.PurpleGlow)

	// LabelStyle is used for field labels
	LabelStyle = lipgloss.NewStyle().
			Foreground(styles.TextSecondary).
			Width(24)

	// ValueStyle is used for regular values
	ValueStyle = lipgloss.NewStyle().
			Foreground(styles.TextPrimary)

	// PromptStyle is used for the REPL prompt
	PromptStyle = lipgloss.NewStyle().
			Foreground(styles.Blue).
			Bold(true)

	// AnswerLabelStyle marks answers in the REPL
	AnswerLabelStyle = lipgloss.NewStyle().
				Foreground(styles.Purple).
				Bold(true)

	// SuccessStyle is used for success messages
	SuccessStyle = lipgloss.NewStyle().
			Foreground(styles.Emerald).
			Bold(true)

	// ErrorStyle is used for errors
	ErrorStyle = lipgloss.NewStyle().
			Foreground(styles.Rose).
			Bold(true)

	// WarningStyle is used for warnings
	WarningStyle = lipgloss.NewStyle().
			Foreground(styles.Amber)

	// DimStyle is used for hints and secondary information
	DimStyle = lipgloss.NewStyle().
			Foreground(styles.TextMuted)
)

// RenderSeparator renders a horizontal rule of width cells (default 60).
func RenderSeparator(width ...int) string {
	w := 60
	if len(width) > 0 && width[0] > 0 {
		w = width[0]
	}
	return DimStyle.Render(strings.Repeat("-", w))
}

// RenderLabel renders a "label value" row.
func RenderLabel(label, value string) string {
	return LabelStyle.Render(label) + ValueStyle.Render(value)
}
