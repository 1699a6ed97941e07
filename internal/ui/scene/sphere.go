// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package scene

import (
	"math"
	"math/rand/v2"

	"github.com/charmbracelet/harmonica"
)

const (
	// SphereParticles is the number of particles floating inside the sphere.
	SphereParticles = 80

	// Containment is the fraction of r² a particle may reach before it bounces.
	Containment = 0.7

	// Bounce multiplies the velocity of a particle that left the containment.
	Bounce = -0.9

	// CompactScale is the sphere scale once a conversation exists.
	CompactScale = 0.5

	// ringRadiusX and ringRadiusY are the ring's semi-axes as multiples of r.
	ringRadiusX = 1.5
	ringRadiusY = 0.35

	// glowRadius is the inner edge of the glow band as a multiple of r.
	glowRadius = 1.15
)

type sphereParticle struct {
	x, y    float64 // offset from the center, unscaled
	vx, vy  float64
	opacity float64
	phase   float64
}

// Sphere is the glowing orb: a dark core with drifting particles inside, a
// tilted rotating ring and a pulsing glow. Its scale follows a spring.
type Sphere struct {
	// Radius is the core radius in pixels at scale 1.
	Radius float64

	particles  []sphereParticle
	rotation   float64
	pulsePhase float64

	spring   harmonica.Spring
	scale    float64
	velocity float64
	target   float64
}

// NewSphere creates a sphere of the given radius animated at fps.
func NewSphere(radius float64, fps int, rng *rand.Rand) *Sphere {
	if fps <= 0 {
		fps = 20
	}
	s := &Sphere{
		Radius: radius,
		spring: harmonica.NewSpring(harmonica.FPS(fps), 6.0, 1.0),
		scale:  1,
		target: 1,
	}
	s.particles = make([]sphereParticle, SphereParticles)
	for i := range s.particles {
		angle := rng.Float64() * math.Pi * 2
		dist := rng.Float64() * radius * Containment
		s.particles[i] = sphereParticle{
			x:       math.Cos(angle) * dist,
			y:       math.Sin(angle) * dist,
			vx:      (rng.Float64() - 0.5) * 0.2,
			vy:      (rng.Float64() - 0.5) * 0.2,
			opacity: rng.Float64()*0.7 + 0.3,
			phase:   rng.Float64() * math.Pi * 2,
		}
	}
	return s
}

// SetRadius changes the core radius, keeping particles at the same
// relative position.
func (s *Sphere) SetRadius(radius float64) {
	if s.Radius > 0 {
		k := radius / s.Radius
		for i := range s.particles {
			s.particles[i].x *= k
			s.particles[i].y *= k
		}
	}
	s.Radius = radius
}

// SetTarget sets the scale the spring moves toward.
func (s *Sphere) SetTarget(scale float64) {
	s.target = scale
}

// Target returns the scale the spring moves toward.
func (s *Sphere) Target() float64 {
	return s.target
}

// Scale returns the current scale.
func (s *Sphere) Scale() float64 {
	return s.scale
}

// Settled reports whether the scale has reached its target.
func (s *Sphere) Settled() bool {
	return math.Abs(s.scale-s.target) < 0.001 && math.Abs(s.velocity) < 0.001
}

// Jump moves the scale to its target immediately.
func (s *Sphere) Jump() {
	s.scale = s.target
	s.velocity = 0
}

// Pulse returns the current pulse factor, between 0.88 and 1.12.
func (s *Sphere) Pulse() float64 {
	return math.Sin(s.pulsePhase)*0.12 + 1
}

// Rotation returns the ring angle in radians.
func (s *Sphere) Rotation() float64 {
	return s.rotation
}

// Step advances the sphere by one frame.
func (s *Sphere) Step() {
	s.rotation += 0.01
	s.pulsePhase += 0.015

	limit := s.Radius * s.Radius * Containment
	for i := range s.particles {
		p := &s.particles[i]
		p.x += p.vx
		p.y += p.vy
		p.phase += 0.015
		if p.x*p.x+p.y*p.y > limit {
			p.vx *= Bounce
			p.vy *= Bounce
		}
	}

	s.scale, s.velocity = s.spring.Update(s.scale, s.velocity, s.target)
}

// Draw renders the sphere centered at (cx, cy) in pixels.
func (s *Sphere) Draw(c *Canvas, cx, cy float64) {
	r := s.Radius * s.scale
	if r <= 0 {
		return
	}
	pulse := s.Pulse()

	// Glow band, sparser toward the outside.
	for band := 0; band < 3; band++ {
		gr := r * (glowRadius + 0.15*float64(band)) * pulse
		steps := int(gr * 2 * math.Pi / float64(2+band*2))
		for k := 0; k < steps; k++ {
			a := float64(k) / float64(steps) * 2 * math.Pi
			c.SetF(cx+math.Cos(a)*gr, cy+math.Sin(a)*gr, ToneGlow)
		}
	}

	// Core outline.
	steps := max(int(r*2*math.Pi), 8)
	for k := 0; k < steps; k++ {
		a := float64(k) / float64(steps) * 2 * math.Pi
		c.SetF(cx+math.Cos(a)*r, cy+math.Sin(a)*r, ToneCore)
	}

	// Inner particles; faint ones skip frames of their pulse.
	for _, p := range s.particles {
		flicker := math.Sin(p.phase*1.5)*0.3 + 0.7
		if p.opacity*flicker < 0.35 {
			continue
		}
		fx := math.Sin(p.phase) * 0.8
		fy := math.Cos(p.phase*0.8) * 0.8
		c.SetF(cx+(p.x+fx)*s.scale, cy+(p.y+fy)*s.scale, ToneParticle)
	}

	// Tilted ring.
	rx, ry := r*ringRadiusX*pulse, r*ringRadiusY*pulse
	sin, cos := math.Sincos(s.rotation)
	steps = max(int(rx*2*math.Pi), 16)
	for k := 0; k < steps; k++ {
		a := float64(k) / float64(steps) * 2 * math.Pi
		ex, ey := math.Cos(a)*rx, math.Sin(a)*ry
		c.SetF(cx+ex*cos-ey*sin, cy+ex*sin+ey*cos, ToneRing)
	}
}
