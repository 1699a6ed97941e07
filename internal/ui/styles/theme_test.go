// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"strings"
	"testing"
	"time"

	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// THEME CREATION TESTS
// =============================================================================

func TestNewThemeModes(t *testing.T) {
	dark := NewTheme(ModeDark)
	require.NotNil(t, dark)
	assert.True(t, dark.IsDark)

	light := NewTheme(ModeLight)
	assert.False(t, light.IsDark)
}

func TestGlamourStyle(t *testing.T) {
	tests := []struct {
		name    string
		profile termenv.Profile
		dark    bool
		want    string
	}{
		{"dark truecolor", termenv.TrueColor, true, "dark"},
		{"light ansi", termenv.ANSI, false, "light"},
		{"ascii", termenv.Ascii, true, "notty"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			theme := &Theme{IsDark: tt.dark, ColorProfile: tt.profile}
			assert.Equal(t, tt.want, theme.GlamourStyle())
		})
	}
}

// =============================================================================
// LAYOUT TESTS
// =============================================================================

func TestLayoutMode(t *testing.T) {
	tests := []struct {
		width int
		want  LayoutMode
	}{
		{40, LayoutNarrow},
		{59, LayoutNarrow},
		{60, LayoutMedium},
		{99, LayoutMedium},
		{100, LayoutWide},
		{200, LayoutWide},
	}

	theme := NewTheme(ModeDark)
	for _, tt := range tests {
		theme.SetSize(tt.width, 24)
		assert.Equal(t, tt.want, theme.GetLayoutMode(), "width %d", tt.width)
	}
}

func TestBubbleWidth(t *testing.T) {
	theme := NewTheme(ModeDark)

	theme.SetSize(40, 24)
	assert.Equal(t, 38, theme.BubbleWidth())

	theme.SetSize(80, 24)
	assert.Equal(t, 64, theme.BubbleWidth())

	theme.SetSize(120, 24)
	assert.Equal(t, 80, theme.BubbleWidth())

	theme.SetSize(300, 24)
	assert.Equal(t, 100, theme.BubbleWidth(), "wide layouts cap the bubble")

	theme.SetSize(5, 24)
	assert.Equal(t, 10, theme.BubbleWidth())
}

// =============================================================================
// SPINNER TESTS
// =============================================================================

func TestSpinnerConfig(t *testing.T) {
	assert.Equal(t, 100*time.Millisecond, OrbitSpinner.Duration())
	assert.Equal(t, time.Second, SpinnerConfig{}.Duration())

	sp := DotsSpinner.Spinner()
	assert.Equal(t, DotsSpinner.Frames, sp.Frames)
	assert.Equal(t, DotsSpinner.Duration(), sp.FPS)
}

func TestSpinnerFor(t *testing.T) {
	assert.Equal(t, DotsSpinner.Frames, (&Theme{ColorProfile: termenv.Ascii}).SpinnerFor().Frames)
	assert.Equal(t, OrbitSpinner.Frames, (&Theme{ColorProfile: termenv.ANSI256}).SpinnerFor().Frames)
}

// =============================================================================
// STATUS RENDERING TESTS
// =============================================================================

func TestRenderIndicators(t *testing.T) {
	assert.True(t, strings.Contains(RenderError("boom"), "[X] boom"))
	assert.True(t, strings.Contains(RenderSuccess("saved"), "[OK] saved"))
	assert.True(t, strings.Contains(RenderWarning("careful"), "[!] careful"))
	assert.True(t, strings.Contains(RenderInfo("note"), "[i] note"))
}
