// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/orb-tui/internal/conversation"
	"github.com/jeranaias/orb-tui/internal/ui/styles"
	"github.com/jeranaias/orb-tui/internal/util"
)

// Hint is shown under the title on the landing screen.
const Hint = "Answers come from your webhook. Press Enter to send."

// View renders the model.
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}
	if m.hasConversation() {
		return m.renderChat()
	}
	return m.renderLanding()
}

// =============================================================================
// LANDING
// =============================================================================

func (m Model) renderLanding() string {
	title := lipgloss.PlaceHorizontal(m.width, lipgloss.Center, m.theme.Title.Render(Title))
	hint := lipgloss.PlaceHorizontal(m.width, lipgloss.Center,
		m.theme.Subtitle.Render(util.TruncateWidth(Hint, m.width)))

	body := lipgloss.JoinVertical(lipgloss.Left, m.scene.Render(), title, hint)
	bodyHeight := max(m.height-inputHeight-statusHeight-footerHeight, 1)
	body = lipgloss.Place(m.width, bodyHeight, lipgloss.Center, lipgloss.Center, body)

	return lipgloss.JoinVertical(lipgloss.Left,
		body,
		m.renderStatusLine(),
		m.renderInput(),
		m.renderFooter(),
	)
}

// =============================================================================
// CONVERSATION
// =============================================================================

func (m Model) renderChat() string {
	return lipgloss.JoinVertical(lipgloss.Left,
		m.scene.Render(),
		m.viewport.View(),
		m.renderStatusLine(),
		m.renderInput(),
		m.renderFooter(),
	)
}

// updateViewport re-renders the conversation into the viewport.
func (m *Model) updateViewport() {
	if m.dispatcher == nil {
		return
	}
	atBottom := m.viewport.AtBottom()
	m.viewport.SetContent(m.renderConversation(m.dispatcher.Store().All()))
	if atBottom {
		m.viewport.GotoBottom()
	}
}

// renderConversation renders every exchange plus the query in flight.
func (m Model) renderConversation(exchanges []conversation.Exchange) string {
	var blocks []string
	for _, ex := range exchanges {
		blocks = append(blocks,
			m.renderQuery(ex.Query, ex.CreatedAt()),
			m.renderAnswer(ex),
		)
	}
	if m.pending && m.pendingQuery != "" {
		blocks = append(blocks, m.renderQuery(m.pendingQuery, m.pendingSince))
	}
	return strings.Join(blocks, "\n")
}

// renderQuery renders a query bubble against the right edge.
func (m Model) renderQuery(query string, at time.Time) string {
	maxWidth := m.theme.BubbleWidth()
	frame := m.theme.QueryBubble.GetHorizontalFrameSize()
	textWidth := min(util.StringWidth(query), maxWidth-frame)

	bubble := m.theme.QueryBubble.Width(textWidth + m.theme.QueryBubble.GetHorizontalPadding()).Render(query)
	label := m.theme.QueryLabel.Render("You") + " " + m.theme.Timestamp.Render(at.Format("15:04"))

	block := lipgloss.JoinVertical(lipgloss.Right, label, bubble)
	return lipgloss.PlaceHorizontal(m.viewport.Width, lipgloss.Right, block)
}

// renderAnswer renders an answer bubble against the left edge, with the
// response interpreted as markdown.
func (m Model) renderAnswer(ex conversation.Exchange) string {
	maxWidth := m.theme.BubbleWidth()
	frame := m.theme.AnswerBubble.GetHorizontalFrameSize()

	body := m.markdown.render(ex.ID, ex.Response, maxWidth-frame)
	bubble := m.theme.AnswerBubble.Render(body)
	label := m.theme.AnswerLabel.Render("Answer")

	return lipgloss.JoinVertical(lipgloss.Left, label, bubble)
}

// =============================================================================
// INPUT AND STATUS
// =============================================================================

func (m Model) renderInput() string {
	box := m.theme.InputContainer
	return box.Width(max(m.width-box.GetHorizontalBorderSize(), 1)).Render(m.input.View())
}

// renderStatusLine shows, in order of priority, the spinner, the last
// error or the transient status.
func (m Model) renderStatusLine() string {
	var line string
	switch {
	case m.pending:
		elapsed := time.Since(m.pendingSince).Truncate(time.Second)
		line = m.spinner.View() + " " + m.theme.ThinkingText.Render(ThinkingText)
		if elapsed >= time.Second {
			line += " " + m.theme.Timestamp.Render(elapsed.String())
		}
	case m.err != nil:
		line = m.theme.ErrorText.Render(styles.StatusIndicators.Error + " " + util.SingleLine(m.err.Error()))
	case m.status != "":
		line = m.theme.StatusText.Render(util.SingleLine(m.status))
	}
	return lipgloss.NewStyle().MaxWidth(m.width).Render(line)
}

func (m Model) renderFooter() string {
	var parts []string
	for _, b := range m.keyMap.ShortHelp() {
		h := b.Help()
		parts = append(parts, m.theme.ShortcutKey.Render(h.Key)+" "+m.theme.ShortcutDesc.Render(h.Desc))
	}
	footer := strings.Join(parts, m.theme.ShortcutDesc.Render("  "))
	if m.scope != "" {
		footer += m.theme.ShortcutDesc.Render(fmt.Sprintf("  session %s", m.scope))
	}
	return lipgloss.NewStyle().MaxWidth(m.width).Render(footer)
}
