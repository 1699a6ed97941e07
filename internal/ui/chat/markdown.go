// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"
)

// markdownRenderer renders answers as GitHub flavored markdown. Output is
// cached per exchange and dropped whenever the wrap width or style changes.
type markdownRenderer struct {
	style  string
	width  int
	tr     *glamour.TermRenderer
	cache  map[string]string
	log    *zap.Logger
	failed bool
}

func newMarkdownRenderer(style string, log *zap.Logger) *markdownRenderer {
	return &markdownRenderer{
		style: style,
		cache: make(map[string]string),
		log:   log,
	}
}

// setStyle switches the glamour style.
func (r *markdownRenderer) setStyle(style string) {
	if style == r.style {
		return
	}
	r.style = style
	r.reset()
}

func (r *markdownRenderer) reset() {
	r.tr = nil
	r.failed = false
	clear(r.cache)
}

// render returns text rendered for a width of width cells. Plain wrapped
// text is returned when glamour cannot be set up.
func (r *markdownRenderer) render(id, text string, width int) string {
	width = max(width, 10)
	if width != r.width {
		r.width = width
		r.reset()
	}
	if out, ok := r.cache[id]; ok {
		return out
	}

	out := r.renderUncached(text)
	r.cache[id] = out
	return out
}

func (r *markdownRenderer) renderUncached(text string) string {
	if r.tr == nil && !r.failed {
		tr, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle(r.style),
			glamour.WithWordWrap(r.width),
		)
		if err != nil {
			r.log.Warn("markdown renderer unavailable", zap.Error(err))
			r.failed = true
		} else {
			r.tr = tr
		}
	}

	if r.tr != nil {
		out, err := r.tr.Render(text)
		if err == nil {
			return strings.Trim(out, "\n")
		}
		r.log.Debug("markdown render failed", zap.Error(err))
	}
	return lipgloss.NewStyle().Width(r.width).Render(text)
}
