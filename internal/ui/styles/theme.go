// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme modes accepted by NewTheme.
const (
	ModeAuto  = "auto"
	ModeDark  = "dark"
	ModeLight = "light"
)

// Theme holds all the styled components for the application.
// It detects the terminal's color capability and adjusts accordingly.
type Theme struct {
	// Terminal capabilities
	IsDark       bool
	HasTrueColor bool
	ColorProfile termenv.Profile

	// Layout dimensions
	Width  int
	Height int

	// ==========================================================================
	// LANDING AND HEADER STYLES
	// ==========================================================================

	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Header   lipgloss.Style

	// ==========================================================================
	// MESSAGE BUBBLE STYLES
	// ==========================================================================

	QueryBubble  lipgloss.Style
	AnswerBubble lipgloss.Style
	QueryLabel   lipgloss.Style
	AnswerLabel  lipgloss.Style
	Timestamp    lipgloss.Style

	// ==========================================================================
	// INPUT AREA STYLES
	// ==========================================================================

	InputContainer   lipgloss.Style
	InputPrompt      lipgloss.Style
	InputText        lipgloss.Style
	InputPlaceholder lipgloss.Style

	// ==========================================================================
	// STATUS STYLES
	// ==========================================================================

	Spinner      lipgloss.Style
	ThinkingText lipgloss.Style
	ErrorText    lipgloss.Style
	StatusText   lipgloss.Style
	ShortcutKey  lipgloss.Style
	ShortcutDesc lipgloss.Style
}

// NewTheme creates a theme for the given mode ("auto", "dark" or "light").
func NewTheme(mode string) *Theme {
	colorProfile := termenv.ColorProfile()

	var isDark bool
	switch mode {
	case ModeDark:
		isDark = true
	case ModeLight:
		isDark = false
	default:
		isDark = termenv.HasDarkBackground()
	}
	lipgloss.SetHasDarkBackground(isDark)

	t := &Theme{
		IsDark:       isDark,
		HasTrueColor: colorProfile == termenv.TrueColor,
		ColorProfile: colorProfile,
	}
	t.initStyles()
	return t
}

// initStyles initializes all the lip gloss styles.
func (t *Theme) initStyles() {
	t.Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(PurpleGlow)

	t.Subtitle = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Italic(true)

	t.Header = lipgloss.NewStyle().
		Foreground(TextSecondary).
		BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).
		BorderForeground(Overlay)

	// Message bubbles
	t.QueryBubble = lipgloss.NewStyle().
		Foreground(QueryBubbleFg).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(QueryBubbleBorder).
		Padding(0, 1)

	t.AnswerBubble = lipgloss.NewStyle().
		Foreground(AnswerBubbleFg).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(AnswerBubbleBorder).
		Padding(0, 1)

	t.QueryLabel = lipgloss.NewStyle().
		Bold(true).
		Foreground(Blue)

	t.AnswerLabel = lipgloss.NewStyle().
		Bold(true).
		Foreground(Purple)

	t.Timestamp = lipgloss.NewStyle().
		Foreground(TextMuted)

	// Input
	t.InputContainer = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Purple).
		Padding(0, 1)

	t.InputPrompt = lipgloss.NewStyle().
		Bold(true).
		Foreground(PurpleGlow)

	t.InputText = lipgloss.NewStyle().
		Foreground(TextPrimary)

	t.InputPlaceholder = lipgloss.NewStyle().
		Foreground(TextMuted)

	// Status
	t.Spinner = lipgloss.NewStyle().
		Foreground(Purple)

	t.ThinkingText = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Italic(true)

	t.ErrorText = lipgloss.NewStyle().
		Foreground(Rose)

	t.StatusText = lipgloss.NewStyle().
		Foreground(Amber)

	t.ShortcutKey = lipgloss.NewStyle().
		Bold(true).
		Foreground(TextSecondary)

	t.ShortcutDesc = lipgloss.NewStyle().
		Foreground(TextMuted)
}

// GlamourStyle returns the glamour standard style matching the theme.
func (t *Theme) GlamourStyle() string {
	if t.ColorProfile == termenv.Ascii {
		return "notty"
	}
	if t.IsDark {
		return "dark"
	}
	return "light"
}

// SetSize updates the theme dimensions for responsive layouts.
func (t *Theme) SetSize(width, height int) {
	t.Width = width
	t.Height = height
}

// GetLayoutMode returns the current layout mode based on width.
func (t *Theme) GetLayoutMode() LayoutMode {
	if t.Width < 60 {
		return LayoutNarrow
	}
	if t.Width < 100 {
		return LayoutMedium
	}
	return LayoutWide
}

// BubbleWidth returns the maximum outer width of a message bubble.
func (t *Theme) BubbleWidth() int {
	switch t.GetLayoutMode() {
	case LayoutNarrow:
		return max(t.Width-2, 10)
	case LayoutMedium:
		return t.Width * 4 / 5
	default:
		return min(t.Width*2/3, 100)
	}
}

// LayoutMode represents the current responsive layout mode.
type LayoutMode int

const (
	LayoutNarrow LayoutMode = iota // < 60 columns
	LayoutMedium                   // 60-100 columns
	LayoutWide                     // > 100 columns
)
