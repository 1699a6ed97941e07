// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package styles provides the visual styling system for the orb TUI.

# Color System (colors.go)

Purple and blue carry the sphere, the particle field and the two bubble
kinds. Rose marks errors. All colors are lipgloss.AdaptiveColor values.

# Theme System (theme.go)

	theme := styles.NewTheme(cfg.UI.Theme)
	theme.SetSize(width, height)
	bubble := theme.QueryBubble.MaxWidth(theme.BubbleWidth())

NewTheme("auto") asks the terminal for its background; "dark" and "light"
force the answer. GlamourStyle returns the matching markdown style.

# Spinners (animations.go)

	sp := spinner.New(spinner.WithSpinner(theme.SpinnerFor().Spinner()))
*/
package styles
