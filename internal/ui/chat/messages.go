// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/orb-tui/internal/config"
	"github.com/jeranaias/orb-tui/internal/dispatch"
)

// =============================================================================
// DISPATCH MESSAGES
// =============================================================================

// DispatchDoneMsg carries the result of a finished request.
type DispatchDoneMsg struct {
	Result dispatch.Result
}

// =============================================================================
// CONFIGURATION MESSAGES
// =============================================================================

// ConfigReloadedMsg is sent when the config file changed on disk.
type ConfigReloadedMsg struct {
	Config *config.Config
	Err    error
}

// NotifyReload adapts send (usually tea.Program.Send) into a config reload
// callback.
func NotifyReload(send func(tea.Msg)) config.ReloadFunc {
	return func(cfg *config.Config, err error) {
		send(ConfigReloadedMsg{Config: cfg, Err: err})
	}
}

// =============================================================================
// UI MESSAGES
// =============================================================================

// frameMsg advances the animation by one frame.
type frameMsg struct{}

// statusClearMsg hides the status line set with the same sequence number.
type statusClearMsg struct {
	seq int
}
