// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package scene

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/orb-tui/internal/ui/styles"
)

// Tone is the color class of a cell. Higher tones win when two drawings
// share a cell.
type Tone uint8

const (
	ToneNone Tone = iota
	ToneFaint
	ToneLink
	ToneParticle
	ToneGlow
	ToneCore
	ToneRing
)

// brailleBase is U+2800, the empty braille pattern.
const brailleBase = 0x2800

// dotBits maps a pixel inside a cell (x 0-1, y 0-3) to its braille bit.
var dotBits = [4][2]uint8{
	{0x01, 0x08},
	{0x02, 0x10},
	{0x04, 0x20},
	{0x40, 0x80},
}

// Canvas is a pixel grid drawn with braille characters. Each terminal cell
// holds 2x4 pixels and one tone.
type Canvas struct {
	cols, rows int
	dots       []uint8
	tones      []Tone
}

// NewCanvas creates a canvas of cols x rows terminal cells.
func NewCanvas(cols, rows int) *Canvas {
	cols = max(cols, 0)
	rows = max(rows, 0)
	return &Canvas{
		cols:  cols,
		rows:  rows,
		dots:  make([]uint8, cols*rows),
		tones: make([]Tone, cols*rows),
	}
}

// Size returns the canvas size in cells.
func (c *Canvas) Size() (cols, rows int) {
	return c.cols, c.rows
}

// PixelSize returns the canvas size in pixels.
func (c *Canvas) PixelSize() (w, h int) {
	return c.cols * 2, c.rows * 4
}

// Clear erases every pixel.
func (c *Canvas) Clear() {
	clear(c.dots)
	clear(c.tones)
}

// Set turns on the pixel at (x, y). Pixels outside the canvas are ignored.
func (c *Canvas) Set(x, y int, tone Tone) {
	if x < 0 || y < 0 || x >= c.cols*2 || y >= c.rows*4 {
		return
	}
	i := (y/4)*c.cols + x/2
	c.dots[i] |= dotBits[y%4][x%2]
	if tone > c.tones[i] {
		c.tones[i] = tone
	}
}

// SetF is Set with rounding.
func (c *Canvas) SetF(x, y float64, tone Tone) {
	c.Set(round(x), round(y), tone)
}

// Line draws a straight line between two pixels.
func (c *Canvas) Line(x0, y0, x1, y1 int, tone Tone) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	e := dx + dy
	for {
		c.Set(x0, y0, tone)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x0 += sx
		}
		if e2 <= dx {
			e += dx
			y0 += sy
		}
	}
}

// Cell returns the braille rune and tone of a cell.
func (c *Canvas) Cell(col, row int) (rune, Tone) {
	if col < 0 || row < 0 || col >= c.cols || row >= c.rows {
		return ' ', ToneNone
	}
	i := row*c.cols + col
	if c.dots[i] == 0 {
		return ' ', ToneNone
	}
	return rune(brailleBase + int(c.dots[i])), c.tones[i]
}

// String renders the canvas without color.
func (c *Canvas) String() string {
	var sb strings.Builder
	for row := 0; row < c.rows; row++ {
		if row > 0 {
			sb.WriteByte('\n')
		}
		for col := 0; col < c.cols; col++ {
			r, _ := c.Cell(col, row)
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

// Palette maps tones to styles.
type Palette map[Tone]lipgloss.Style

// DefaultPalette colors the scene in the application's purple and blue.
func DefaultPalette() Palette {
	return Palette{
		ToneFaint:    lipgloss.NewStyle().Foreground(styles.BlueDim),
		ToneLink:     lipgloss.NewStyle().Foreground(styles.Purple).Faint(true),
		ToneParticle: lipgloss.NewStyle().Foreground(styles.Blue),
		ToneGlow:     lipgloss.NewStyle().Foreground(styles.PurpleDeep),
		ToneCore:     lipgloss.NewStyle().Foreground(styles.Blue).Bold(true),
		ToneRing:     lipgloss.NewStyle().Foreground(styles.PurpleGlow).Bold(true),
	}
}

// Render draws the canvas with colors. Runs of cells sharing a tone are
// rendered together.
func (c *Canvas) Render(p Palette) string {
	var sb strings.Builder
	var run strings.Builder
	for row := 0; row < c.rows; row++ {
		if row > 0 {
			sb.WriteByte('\n')
		}
		current := ToneNone
		flush := func() {
			if run.Len() == 0 {
				return
			}
			if style, ok := p[current]; ok && current != ToneNone {
				sb.WriteString(style.Render(run.String()))
			} else {
				sb.WriteString(run.String())
			}
			run.Reset()
		}
		for col := 0; col < c.cols; col++ {
			r, tone := c.Cell(col, row)
			if tone != current {
				flush()
				current = tone
			}
			run.WriteRune(r)
		}
		flush()
	}
	return sb.String()
}

func round(f float64) int {
	if f < 0 {
		return int(f - 0.5)
	}
	return int(f + 0.5)
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
