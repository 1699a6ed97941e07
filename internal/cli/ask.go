// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// ask.go - Single query command.
//
// Command: ask [question]
// Short:   Ask a single question
//
// The question goes through the same dispatcher as the chat interface, so
// the exchange joins the session's conversation.
//
// Examples:
//   orb ask "What is the capital of France?"
//   echo "Summarize this" | orb ask
//   orb ask --json "List three colors"
//
// Flags:
//   --json              Output the exchange as JSON
//   --raw               Print the answer without markdown rendering
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/jeranaias/orb-tui/internal/dispatch"
)

// MaxStdinQuery bounds a question read from stdin (1 MiB).
const MaxStdinQuery = 1 << 20

type askOptions struct {
	json bool
	raw  bool
}

// AskData is the JSON payload of `orb ask --json`.
type AskData struct {
	ID         string `json:"id,omitempty"`
	Query      string `json:"query"`
	Answer     string `json:"answer"`
	Source     string `json:"source,omitempty"`
	Session    string `json:"session"`
	DurationMs int64  `json:"duration_ms"`
	// Warning is a non-fatal problem, such as history that was not saved.
	Warning string `json:"warning,omitempty"`
}

func newAskCmd(a *app) *cobra.Command {
	var opts askOptions
	cmd := &cobra.Command{
		Use:   "ask [question]",
		Short: "Ask a single question",
		Long: `Sends one question to the webhook and prints the answer.

Without arguments the question is read from stdin. The exchange is added to
the current session, so it shows up in 'orb' and 'orb history'.`,
		Example: `  orb ask "What is the capital of France?"
  echo "Summarize this" | orb ask
  orb ask --json "List three colors"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runAsk(cmd, args, opts)
		},
	}
	cmd.Flags().BoolVar(&opts.json, "json", false, "output the exchange as JSON")
	cmd.Flags().BoolVar(&opts.raw, "raw", false, "print the answer without markdown rendering")
	return cmd
}

func (a *app) runAsk(cmd *cobra.Command, args []string, opts askOptions) error {
	query, err := readQuery(cmd.InOrStdin(), args)
	if err != nil {
		return err
	}
	if strings.TrimSpace(query) == "" {
		return NewValidationErrorWithExample("question", "", "must not be empty", `orb ask "What is the capital of France?"`)
	}
	if !opts.json {
		a.warnConfig(cmd)
	}

	ask := func() (interface{}, error) {
		return a.ask(cmd.Context(), query)
	}

	if opts.json {
		return OutputJSON(cmd.OutOrStdout(), "ask", ask)
	}

	data, err := ask()
	if err != nil {
		return err
	}
	answer := data.(*AskData)
	if answer.Warning != "" {
		warn(cmd.ErrOrStderr(), "%s", answer.Warning)
	}
	if answer.Answer == "" {
		fmt.Fprintln(cmd.ErrOrStderr(), DimStyle.Render("(empty answer)"))
		return nil
	}
	render := markdownFor(cmd.OutOrStdout(), opts.raw)
	fmt.Fprintln(cmd.OutOrStdout(), render(answer.Answer))
	return nil
}

// ask dispatches query against the session. Ctrl+C cancels the request.
func (a *app) ask(parent context.Context, query string) (*AskData, error) {
	if err := a.cfg.RequireWebhook(); err != nil {
		return nil, err
	}

	sess, err := a.openSession()
	if err != nil {
		return nil, err
	}
	defer sess.Close()

	d, client := a.newDispatcher(sess)
	defer client.Close()

	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt)
	defer stop()

	start := time.Now()
	res := d.Submit(ctx, query)
	data := &AskData{
		Query:      dispatch.Normalize(query),
		Session:    sess.Scope,
		DurationMs: time.Since(start).Milliseconds(),
	}

	switch res.Outcome {
	case dispatch.OutcomeRecorded:
		data.ID = res.Exchange.ID
		data.Answer = res.Exchange.Response
		data.Source = res.Source.String()
		if res.Err != nil {
			data.Warning = res.Err.Error()
		}
		return data, nil
	case dispatch.OutcomeEmpty:
		data.Source = res.Source.String()
		if res.Err != nil {
			return data, res.Err
		}
		return data, nil
	case dispatch.OutcomeRejected:
		return data, NewValidationError("question", "", "must not be empty")
	default:
		return data, res.Err
	}
}

// readQuery joins args, or reads stdin when there are none and stdin is
// not a terminal.
func readQuery(stdin io.Reader, args []string) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}
	if f, ok := stdin.(*os.File); ok && f == os.Stdin && IsTTY() {
		return "", nil
	}
	data, err := io.ReadAll(io.LimitReader(stdin, MaxStdinQuery+1))
	if err != nil {
		return "", fmt.Errorf("failed to read question from stdin: %w", err)
	}
	if len(data) > MaxStdinQuery {
		return "", NewValidationError("question", "", fmt.Sprintf("stdin exceeds %d bytes", MaxStdinQuery))
	}
	return string(data), nil
}
