// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// echo.go - Local echo webhook.
//
// Command: echo-server
// Short:   Run a local webhook that echoes questions back
//
// Useful for trying orb without a real endpoint and for exercising every
// response shape the client understands.
//
// Flags:
//   --addr ADDR         Listen address (default 127.0.0.1:8788)
//   --user NAME         Require HTTP Basic auth with this username
//   --password PASS     Basic auth password
//   --shape SHAPE       Default reply shape (output, response, answer, ...)
//   --delay DURATION    Wait before answering
package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/signal"
	"slices"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jeranaias/orb-tui/internal/server"
)

// ShutdownTimeout bounds the graceful shutdown of the echo server.
const ShutdownTimeout = 5 * time.Second

func newEchoServerCmd(a *app) *cobra.Command {
	var cfg server.Config
	cmd := &cobra.Command{
		Use:   "echo-server",
		Short: "Run a local webhook that echoes questions back",
		Long: `Serves POST /webhook, answering every {"query": "..."} with the query
echoed back in the chosen shape. A request can pick another shape with
the X-Orb-Shape header or the ?shape= parameter.

Shapes: ` + strings.Join(server.Shapes, ", "),
		Example: `  orb echo-server --user demo --password secret
  orb config set webhook.url http://127.0.0.1:8788/webhook`,
		Args:        cobra.NoArgs,
		Annotations: map[string]string{annotationLogStderr: "true"},
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !slices.Contains(server.Shapes, cfg.Shape) {
				return NewValidationErrorWithExample("shape", cfg.Shape, "unknown shape", "orb echo-server --shape answer")
			}
			if cfg.Password != "" && cfg.Username == "" {
				return NewValidationError("user", "", "--password needs --user")
			}
			if cfg.Delay < 0 {
				return NewValidationError("delay", cfg.Delay.String(), "must not be negative")
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.runEchoServer(ctx, cmd, cfg)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&cfg.Addr, "addr", server.DefaultAddr, "listen address")
	flags.StringVar(&cfg.Username, "user", "", "require HTTP Basic auth with this username")
	flags.StringVar(&cfg.Password, "password", "", "HTTP Basic auth password")
	flags.StringVar(&cfg.Shape, "shape", server.ShapeOutput, "default reply shape")
	flags.DurationVar(&cfg.Delay, "delay", 0, "wait before answering")
	return cmd
}

// runEchoServer serves until ctx is done.
func (a *app) runEchoServer(ctx context.Context, cmd *cobra.Command, cfg server.Config) error {
	ln, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		return NewCommandError("echo-server", "listen", "address unavailable", err)
	}
	srv := server.New(cfg, a.log)

	out := cmd.OutOrStdout()
	url := fmt.Sprintf("http://%s/webhook", ln.Addr())
	fmt.Fprintf(out, "%s Echo webhook listening on %s\n", SuccessStyle.Render("[OK]"), url)
	fmt.Fprintln(out, DimStyle.Render("  orb config set webhook.url "+url))
	if cfg.Username != "" {
		fmt.Fprintln(out, DimStyle.Render("  orb config set webhook.username "+cfg.Username))
	}
	fmt.Fprintln(out, DimStyle.Render("  Ctrl+C to stop"))

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	if err := <-errCh; err != nil {
		a.log.Warn("echo server stopped with error", zap.Error(err))
	}
	fmt.Fprintf(out, "Answered %d questions\n", srv.Requests())
	return nil
}
