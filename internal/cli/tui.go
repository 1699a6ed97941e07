// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jeranaias/orb-tui/internal/config"
	"github.com/jeranaias/orb-tui/internal/ui/chat"
	"github.com/jeranaias/orb-tui/internal/ui/styles"
)

// runTUI starts the full screen chat interface.
func (a *app) runTUI(cmd *cobra.Command, _ []string) error {
	if err := RequiresTTY("start the chat interface"); err != nil {
		return err
	}
	// Visible once the alternate screen is gone.
	a.warnConfig(cmd)

	sess, err := a.openSession()
	if err != nil {
		return err
	}
	defer sess.Close()

	d, client := a.newDispatcher(sess)
	defer client.Close()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	model := chat.New(chat.Options{
		Dispatcher:   d,
		Client:       client,
		Theme:        styles.NewTheme(a.cfg.UI.Theme),
		Scope:        sess.Scope,
		FPS:          a.cfg.UI.FPS,
		ReduceMotion: a.cfg.UI.ReduceMotion,
		Context:      ctx,
		Seed:         uint64(time.Now().UnixNano()),
		Logger:       a.log,
	})

	p := tea.NewProgram(model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	if path, err := config.ActivePath(); err == nil {
		if err := config.EnsureConfigDir(); err != nil {
			a.log.Warn("config directory unavailable, hot reload disabled", zap.Error(err))
		} else if w, err := config.Watch(ctx, path, config.DefaultDebounce, chat.NotifyReload(p.Send)); err != nil {
			a.log.Warn("config hot reload disabled", zap.Error(err))
		} else {
			defer w.Close()
		}
	}

	a.log.Info("chat interface started", zap.String("scope", sess.Scope))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("chat interface failed: %w", err)
	}
	d.Cancel()
	a.log.Info("chat interface closed", zap.Int("exchanges", sess.Store.Len()))
	return nil
}
