// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package scene

import (
	"math"
	"math/rand/v2"
	"time"
)

// Scene is the particle field with the sphere in its middle. The scene's
// height follows the sphere's scale, so it collapses into a header once
// the sphere is compact.
type Scene struct {
	Field  *Field
	Sphere *Sphere

	cols     int
	fullRows int
	fps      int
	canvas   *Canvas
	palette  Palette
}

// New creates a scene of cols x rows cells animated at fps.
func New(cols, rows, fps int, seed uint64) *Scene {
	if fps <= 0 {
		fps = 20
	}
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	s := &Scene{
		fps:     fps,
		palette: DefaultPalette(),
		Field:   NewField(cols, rows, rng),
		Sphere:  NewSphere(FitRadius(cols, rows), fps, rng),
	}
	s.Resize(cols, rows)
	return s
}

// FitRadius returns the largest core radius whose ring and glow fit a
// cols x rows canvas.
func FitRadius(cols, rows int) float64 {
	w, h := float64(cols*2), float64(rows*4)
	extent := math.Max(ringRadiusX, glowRadius+0.3) * 1.12
	return math.Max(0, math.Min(w, h)/2/extent)
}

// Interval returns the time between frames.
func (s *Scene) Interval() time.Duration {
	return time.Second / time.Duration(s.fps)
}

// Resize sets the scene's full size.
func (s *Scene) Resize(cols, rows int) {
	s.cols, s.fullRows = max(cols, 0), max(rows, 0)
	s.Sphere.SetRadius(FitRadius(s.cols, s.fullRows))
	s.Field.Resize(s.cols, s.Rows())
	s.canvas = NewCanvas(s.cols, s.Rows())
}

// Rows returns the current height in cells.
func (s *Scene) Rows() int {
	return int(math.Round(float64(s.fullRows) * s.Sphere.Scale()))
}

// SetCompact shrinks (true) or restores (false) the sphere.
func (s *Scene) SetCompact(compact bool) {
	if compact {
		s.Sphere.SetTarget(CompactScale)
	} else {
		s.Sphere.SetTarget(1)
	}
}

// Animating reports whether the scale spring is still moving.
func (s *Scene) Animating() bool {
	return !s.Sphere.Settled()
}

// Step advances both simulations by one frame.
func (s *Scene) Step() {
	s.Field.Step()
	s.Sphere.Step()
	if rows := s.Rows(); rows != s.canvas.rows {
		s.Field.Resize(s.cols, rows)
		s.canvas = NewCanvas(s.cols, rows)
	}
}

// Settle moves the sphere to its target scale without animating.
func (s *Scene) Settle() {
	s.Sphere.Jump()
	s.Field.Resize(s.cols, s.Rows())
	s.canvas = NewCanvas(s.cols, s.Rows())
}

func (s *Scene) draw() {
	s.canvas.Clear()
	s.Field.Draw(s.canvas)
	w, h := s.canvas.PixelSize()
	s.Sphere.Draw(s.canvas, float64(w)/2, float64(h)/2)
}

// Render draws the current frame with colors.
func (s *Scene) Render() string {
	s.draw()
	return s.canvas.Render(s.palette)
}

// String draws the current frame without colors.
func (s *Scene) String() string {
	s.draw()
	return s.canvas.String()
}
