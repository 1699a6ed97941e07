// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/muesli/termenv"
)

// =============================================================================
// SPINNER ANIMATIONS
// =============================================================================

// OrbitSpinner - Braille dot circling a cell
var OrbitSpinner = SpinnerConfig{
	Frames: []string{"⠁", "⠂", "⠄", "⡀", "⢀", "⠠", "⠐", "⠈"},
	FPS:    10,
}

// DotsSpinner - Classic three-dot animation, ASCII only
var DotsSpinner = SpinnerConfig{
	Frames: []string{".  ", ".. ", "...", " ..", "  .", "   "},
	FPS:    6,
}

// SpinnerConfig holds the configuration for a spinner animation.
type SpinnerConfig struct {
	Frames []string
	FPS    int
}

// Duration returns the duration for each frame.
func (s SpinnerConfig) Duration() time.Duration {
	if s.FPS <= 0 {
		return time.Second
	}
	return time.Second / time.Duration(s.FPS)
}

// Spinner converts the config to a bubbles spinner.
func (s SpinnerConfig) Spinner() spinner.Spinner {
	return spinner.Spinner{Frames: s.Frames, FPS: s.Duration()}
}

// SpinnerFor picks the spinner for the terminal: braille when the terminal
// can color, ASCII dots otherwise.
func (t *Theme) SpinnerFor() SpinnerConfig {
	if t.ColorProfile == termenv.Ascii {
		return DotsSpinner
	}
	return OrbitSpinner
}
