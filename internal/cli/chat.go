// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// chat.go - Line mode chat for terminals without full screen support.
//
// Command: chat
// Short:   Chat in line mode
//
// Reads questions with line editing and prompt history (peterh/liner),
// sends each one through the dispatcher and prints the answer. Ctrl+C
// while waiting cancels the request; Ctrl+C or Ctrl+D at the prompt exits.
//
// Slash commands:
//   /history   Show the conversation so far
//   /clear     Erase the conversation
//   /help      Show the commands
//   /exit      Leave (also /quit)
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jeranaias/orb-tui/internal/config"
	"github.com/jeranaias/orb-tui/internal/conversation"
	"github.com/jeranaias/orb-tui/internal/dispatch"
	"github.com/jeranaias/orb-tui/internal/ui/chat"
	"github.com/jeranaias/orb-tui/internal/ui/styles"
)

// PromptHistoryFile stores previously typed questions inside the config dir.
const PromptHistoryFile = "prompt_history"

func newChatCmd(a *app) *cobra.Command {
	var raw bool
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Chat in line mode",
		Long: `Starts a line mode conversation. Answers are printed below each question
and the exchange is added to the current session.

Type /help for the available commands.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runChat(cmd, raw)
		},
	}
	cmd.Flags().BoolVar(&raw, "raw", false, "print answers without markdown rendering")
	return cmd
}

func (a *app) runChat(cmd *cobra.Command, raw bool) error {
	if err := RequiresTTY("start a chat"); err != nil {
		return err
	}
	a.warnConfig(cmd)

	sess, err := a.openSession()
	if err != nil {
		return err
	}
	defer sess.Close()

	d, client := a.newDispatcher(sess)
	defer client.Close()

	line := NewLineReader()
	defer line.Close()

	r := &repl{
		in:         line,
		out:        cmd.OutOrStdout(),
		dispatcher: d,
		scope:      sess.Scope,
		render:     markdownFor(cmd.OutOrStdout(), raw),
		log:        a.log,
	}
	return r.run(cmd.Context())
}

// =============================================================================
// LINE INPUT
// =============================================================================

// lineSource reads one line of input.
type lineSource interface {
	Prompt(prompt string) (string, error)
}

// LineReader provides line editing and prompt history.
type LineReader struct {
	line        *liner.State
	historyFile string
}

// NewLineReader creates a LineReader and loads the saved prompt history.
func NewLineReader() *LineReader {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	configDir, err := config.ConfigDir()
	if err != nil {
		configDir = os.TempDir()
	}
	r := &LineReader{
		line:        line,
		historyFile: filepath.Join(configDir, PromptHistoryFile),
	}
	if f, err := os.Open(r.historyFile); err == nil {
		r.line.ReadHistory(f)
		f.Close()
	}
	return r
}

// Prompt reads a line. Non-blank input is added to the history.
func (r *LineReader) Prompt(prompt string) (string, error) {
	input, err := r.line.Prompt(prompt)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(input) != "" {
		r.line.AppendHistory(input)
	}
	return input, nil
}

// Close saves the history with owner-only permissions and restores the
// terminal.
func (r *LineReader) Close() {
	if err := config.EnsureConfigDir(); err == nil {
		if f, err := os.OpenFile(r.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600); err == nil {
			r.line.WriteHistory(f)
			f.Close()
		}
	}
	r.line.Close()
}

// =============================================================================
// REPL
// =============================================================================

type repl struct {
	in         lineSource
	out        io.Writer
	dispatcher *dispatch.Dispatcher
	scope      string
	render     renderFunc
	log        *zap.Logger
}

func (r *repl) run(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	r.printBanner()

	for {
		input, err := r.in.Prompt(PromptStyle.Render("you> "))
		if err != nil {
			if !errors.Is(err, liner.ErrPromptAborted) && !errors.Is(err, io.EOF) {
				r.log.Warn("prompt failed", zap.Error(err))
			}
			fmt.Fprintln(r.out)
			r.printExitSummary()
			return nil
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}

		if strings.HasPrefix(input, "/") {
			if !r.handleSlashCommand(input) {
				r.printExitSummary()
				return nil
			}
			continue
		}

		r.ask(ctx, input)
	}
}

// ask runs one query. Ctrl+C cancels it without leaving the REPL.
func (r *repl) ask(parent context.Context, query string) {
	ctx, stop := signal.NotifyContext(parent, os.Interrupt)
	defer stop()

	fmt.Fprintln(r.out, DimStyle.Render(chat.ThinkingText))
	res := r.dispatcher.Submit(ctx, query)

	switch res.Outcome {
	case dispatch.OutcomeRecorded:
		fmt.Fprintln(r.out, AnswerLabelStyle.Render("Answer"))
		fmt.Fprintln(r.out, r.render(res.Exchange.Response))
		if res.Err != nil {
			warn(r.out, "%v", res.Err)
		}
	case dispatch.OutcomeEmpty:
		if res.Err != nil {
			r.printError(res.Err)
		} else {
			fmt.Fprintln(r.out, DimStyle.Render("(empty answer)"))
		}
	case dispatch.OutcomeFailed:
		r.printError(res.Err)
	}
	fmt.Fprintln(r.out)
}

// handleSlashCommand runs a slash command and reports whether the REPL
// should keep going.
func (r *repl) handleSlashCommand(input string) bool {
	name := strings.ToLower(strings.Fields(input)[0])
	store := r.dispatcher.Store()

	switch name {
	case "/exit", "/quit", "/q":
		return false

	case "/help", "/?":
		fmt.Fprintln(r.out, RenderLabel("/history", "show the conversation so far"))
		fmt.Fprintln(r.out, RenderLabel("/clear", "erase the conversation"))
		fmt.Fprintln(r.out, RenderLabel("/exit", "leave"))

	case "/history":
		exchanges := store.All()
		if len(exchanges) == 0 {
			fmt.Fprintln(r.out, DimStyle.Render("No messages yet."))
			break
		}
		fmt.Fprintln(r.out, r.render(conversation.ExportMarkdown(chat.Title, exchanges)))

	case "/clear":
		if err := store.Destroy(); err != nil {
			r.printError(err)
			break
		}
		fmt.Fprintln(r.out, styles.RenderSuccess("Conversation cleared"))

	default:
		fmt.Fprintln(r.out, WarningStyle.Render("Unknown command: "+name+" (try /help)"))
	}
	return true
}

func (r *repl) printBanner() {
	fmt.Fprintln(r.out, TitleStyle.Render(chat.Title))
	fmt.Fprintln(r.out, DimStyle.Render(fmt.Sprintf("session %s  /help for commands  Ctrl+D to leave", r.scope)))
	if n := r.dispatcher.Store().Len(); n > 0 {
		fmt.Fprintln(r.out, DimStyle.Render(fmt.Sprintf("%d earlier exchanges, /history to show them", n)))
	}
	fmt.Fprintln(r.out)
}

func (r *repl) printExitSummary() {
	fmt.Fprintln(r.out, DimStyle.Render(fmt.Sprintf("%d exchanges in session %s", r.dispatcher.Store().Len(), r.scope)))
}

func (r *repl) printError(err error) {
	fmt.Fprintln(r.out, ErrorStyle.Render(styles.StatusIndicators.Error+" "+err.Error()))
}
