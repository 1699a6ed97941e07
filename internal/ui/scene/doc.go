// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package scene animates the orb's backdrop in the terminal: a drifting
// particle field and a glowing sphere, drawn on a braille Canvas where each
// cell holds 2x4 pixels.
//
// Coordinates are in pixels. One pixel stands for ScreenPixelsPerDot
// screen pixels when converting distances such as LinkDistance.
//
//	sc := scene.New(width, 14, cfg.UI.FPS, seed)
//	sc.Step()
//	view := sc.Render()
//
// The sphere's scale follows a harmonica spring; SetCompact(true) shrinks
// it to CompactScale and the scene's height with it.
package scene
