// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package scene

import (
	"math"
	"math/rand/v2"
)

const (
	// MaxFieldParticles caps the particle field.
	MaxFieldParticles = 60

	// CellsPerParticle is the field density: one particle per this many cells.
	CellsPerParticle = 40

	// LinkDistance is the link threshold in screen pixels.
	LinkDistance = 158.0

	// ScreenPixelsPerDot converts screen pixels to braille dots.
	ScreenPixelsPerDot = 6.0

	// FrameTime is the time step of one frame.
	FrameTime = 0.016
)

// Particle is one point of the background field. Coordinates are in pixels.
type Particle struct {
	X, Y        float64
	VX, VY      float64
	BaseOpacity float64
	Opacity     float64
}

// Field is the drifting background particle field.
type Field struct {
	width, height float64
	particles     []Particle
	time          float64
	rng           *rand.Rand
}

// ParticleCount returns how many particles a cols x rows field holds.
func ParticleCount(cols, rows int) int {
	if cols <= 0 || rows <= 0 {
		return 0
	}
	return min(MaxFieldParticles, cols*rows/CellsPerParticle)
}

// NewField seeds a field for a cols x rows canvas.
func NewField(cols, rows int, rng *rand.Rand) *Field {
	f := &Field{rng: rng}
	f.Resize(cols, rows)
	return f
}

// Resize adapts the field to a new canvas size. Existing particles keep
// their relative position; the count follows the new area.
func (f *Field) Resize(cols, rows int) {
	w, h := float64(cols*2), float64(rows*4)
	if f.width > 0 && f.height > 0 {
		for i := range f.particles {
			f.particles[i].X *= w / f.width
			f.particles[i].Y *= h / f.height
		}
	}
	f.width, f.height = w, h

	n := ParticleCount(cols, rows)
	if n < len(f.particles) {
		f.particles = f.particles[:n]
	}
	for len(f.particles) < n {
		base := f.rng.Float64()*0.4 + 0.3
		f.particles = append(f.particles, Particle{
			X:           f.rng.Float64() * w,
			Y:           f.rng.Float64() * h,
			VX:          (f.rng.Float64() - 0.5) * 0.3,
			VY:          (f.rng.Float64() - 0.5) * 0.3,
			BaseOpacity: base,
			Opacity:     base,
		})
	}
}

// Particles returns a copy of the current particles.
func (f *Field) Particles() []Particle {
	out := make([]Particle, len(f.particles))
	copy(out, f.particles)
	return out
}

// Step advances the field by one frame.
func (f *Field) Step() {
	f.time += FrameTime
	for i := range f.particles {
		p := &f.particles[i]
		p.X += p.VX
		p.Y += p.VY

		if p.X < 0 {
			p.X = f.width
		}
		if p.X > f.width {
			p.X = 0
		}
		if p.Y < 0 {
			p.Y = f.height
		}
		if p.Y > f.height {
			p.Y = 0
		}

		p.Opacity = p.BaseOpacity + math.Sin(f.time+float64(i)*0.5)*0.2
	}
}

// linkDistance is LinkDistance in dots.
func linkDistance() float64 {
	return LinkDistance / ScreenPixelsPerDot
}

// LinkStrength returns how visible the link between two particles is, or 0
// when they are too far apart.
func LinkStrength(a, b Particle) float64 {
	limit := linkDistance()
	dx, dy := a.X-b.X, a.Y-b.Y
	distSq := dx*dx + dy*dy
	if distSq >= limit*limit {
		return 0
	}
	return (1 - math.Sqrt(distSq)/limit) * a.Opacity
}

// Draw renders the field onto c.
func (f *Field) Draw(c *Canvas) {
	for i := range f.particles {
		a := f.particles[i]
		for j := i + 1; j < len(f.particles); j++ {
			b := f.particles[j]
			s := LinkStrength(a, b)
			if s <= 0 {
				continue
			}
			tone := ToneFaint
			if s > 0.3 {
				tone = ToneLink
			}
			c.Line(round(a.X), round(a.Y), round(b.X), round(b.Y), tone)
		}
	}
	for _, p := range f.particles {
		tone := ToneFaint
		if p.Opacity >= 0.5 {
			tone = ToneParticle
		}
		c.SetF(p.X, p.Y, tone)
	}
}
