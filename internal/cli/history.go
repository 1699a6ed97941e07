// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// history.go - Conversation history commands.
//
// Command: history [subcommand]
// Short:   Show, export or clear the session conversation
//
// Subcommands:
//   show                Print the current session's conversation (--last)
//   export              Write it as markdown, JSON or HTML
//   clear               Erase it (--all erases every session)
//   sessions            List the sessions that still hold history
//
// Examples:
//   orb history show
//   orb history export --format json --output chat.json
//   orb --session work history clear --yes
//   orb history sessions --json
package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jeranaias/orb-tui/internal/conversation"
	"github.com/jeranaias/orb-tui/internal/export"
	"github.com/jeranaias/orb-tui/internal/session"
	"github.com/jeranaias/orb-tui/internal/storage"
	"github.com/jeranaias/orb-tui/internal/ui/chat"
)

func newHistoryCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "history",
		Aliases: []string{"session"},
		Short:   "Show, export or clear the session conversation",
	}
	cmd.AddCommand(
		newHistoryShowCmd(a),
		newHistoryExportCmd(a),
		newHistoryClearCmd(a),
		newHistorySessionsCmd(a),
	)
	return cmd
}

// withSession opens the session for the duration of fn.
func (a *app) withSession(fn func(*session.Session) error) error {
	sess, err := a.openSession()
	if err != nil {
		return err
	}
	defer sess.Close()
	return fn(sess)
}

// =============================================================================
// SHOW
// =============================================================================

func newHistoryShowCmd(a *app) *cobra.Command {
	var jsonOut, raw, last bool
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the current session's conversation",
		Example: `  orb history show
  orb history show --last --raw`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withSession(func(sess *session.Session) error {
				exchanges := sess.Store.All()
				if last {
					exchanges = []conversation.Exchange{}
					if ex, ok := sess.Store.Last(); ok {
						exchanges = []conversation.Exchange{ex}
					}
				}
				if jsonOut {
					return OutputJSON(cmd.OutOrStdout(), "history show", func() (interface{}, error) {
						return HistoryData{Session: sess.Scope, Exchanges: exchanges}, nil
					})
				}
				render := markdownFor(cmd.OutOrStdout(), raw)
				fmt.Fprintln(cmd.OutOrStdout(), render(conversation.ExportMarkdown(chat.Title, exchanges)))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "output as JSON")
	cmd.Flags().BoolVar(&raw, "raw", false, "print markdown without rendering it")
	cmd.Flags().BoolVar(&last, "last", false, "only the most recent exchange")
	return cmd
}

// HistoryData is the JSON payload of `orb history show --json`.
type HistoryData struct {
	Session   string                  `json:"session"`
	Exchanges []conversation.Exchange `json:"exchanges"`
}

// =============================================================================
// EXPORT
// =============================================================================

func newHistoryExportCmd(a *app) *cobra.Command {
	var format, output, theme string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the conversation as markdown, JSON or HTML",
		Long: `Writes the current session's conversation to stdout, or to --output.
When --output is a directory a file name is derived from the session.
Files are written atomically with owner-only permissions.`,
		Example: `  orb history export > chat.md
  orb history export --format json --output chat.json
  orb history export --format html --theme light --output ~/Documents`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := export.ParseFormat(format)
			if err != nil {
				return NewValidationErrorWithExample("format", format, "must be markdown, json or html", "orb history export --format json")
			}
			if theme != "dark" && theme != "light" {
				return NewValidationError("theme", theme, "must be dark or light")
			}
			opts := export.DefaultOptions()
			opts.Theme = theme
			exporter, err := export.New(f, opts)
			if err != nil {
				return err
			}

			return a.withSession(func(sess *session.Session) error {
				doc := export.Document{
					Title:      chat.Title,
					Session:    sess.Scope,
					Exchanges:  sess.Store.All(),
					ExportedAt: time.Now(),
				}
				if output == "" || output == "-" {
					data, err := exporter.Export(doc)
					if err != nil {
						return NewCommandError("history", "export", "encoding failed", err)
					}
					_, err = cmd.OutOrStdout().Write(data)
					return err
				}

				path, err := export.ExportToFile(doc, exporter, output)
				if err != nil {
					return NewCommandError("history", "export", "could not write "+output, err)
				}
				a.log.Info("conversation exported", zap.String("format", string(f)), zap.Int("exchanges", len(doc.Exchanges)))
				fmt.Fprintf(cmd.ErrOrStderr(), "%s Exported %d exchanges to %s\n",
					SuccessStyle.Render("[OK]"), len(doc.Exchanges), path)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", string(export.FormatMarkdown), "markdown, json or html")
	cmd.Flags().StringVarP(&output, "output", "o", "", "file or directory to write (default stdout)")
	cmd.Flags().StringVar(&theme, "theme", "dark", "HTML theme: dark or light")
	return cmd
}

// =============================================================================
// CLEAR
// =============================================================================

func newHistoryClearCmd(a *app) *cobra.Command {
	var yes, all bool
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Erase the conversation",
		Long: `Erases the current session's conversation. With --all every session's
history is removed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withSession(func(sess *session.Session) error {
				what := fmt.Sprintf("%d exchanges in session %s", sess.Store.Len(), sess.Scope)
				if all {
					what = "the history of every session"
				}
				if !yes {
					if !CanPrompt() {
						return NewValidationError("confirmation", "", "pass --yes to clear without a terminal")
					}
					if !confirm(cmd.InOrStdin(), cmd.OutOrStdout(), "Erase "+what+"?") {
						fmt.Fprintln(cmd.OutOrStdout(), DimStyle.Render("Nothing erased."))
						return nil
					}
				}

				if all {
					n, err := clearAll(sess.Backend())
					if err != nil {
						return NewCommandError("history", "clear", "could not erase every session", err)
					}
					sess.Store.Load()
					fmt.Fprintf(cmd.OutOrStdout(), "%s Erased %d sessions\n", SuccessStyle.Render("[OK]"), n)
					return nil
				}

				if err := sess.Store.Destroy(); err != nil {
					return NewCommandError("history", "clear", "could not erase the conversation", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s Erased %s\n", SuccessStyle.Render("[OK]"), what)
				return nil
			})
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	cmd.Flags().BoolVar(&all, "all", false, "erase every session")
	return cmd
}

func clearAll(backend storage.Backend) (int, error) {
	scopes, err := backend.Scopes()
	if err != nil {
		return 0, err
	}
	for _, info := range scopes {
		if err := backend.DeleteScope(info.Scope); err != nil {
			return 0, err
		}
	}
	return len(scopes), nil
}

// confirm asks a yes/no question; anything but y or yes is a no.
func confirm(in io.Reader, out io.Writer, question string) bool {
	fmt.Fprintf(out, "%s [y/N]: ", question)
	answer, _ := bufio.NewReader(in).ReadString('\n')
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}

// =============================================================================
// SESSIONS
// =============================================================================

// SessionInfo is one row of `orb history sessions`.
type SessionInfo struct {
	Session   string    `json:"session"`
	Current   bool      `json:"current"`
	Bytes     int64     `json:"bytes"`
	UpdatedAt time.Time `json:"updated_at"`
}

func newHistorySessionsCmd(a *app) *cobra.Command {
	var jsonOut bool
	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "List the sessions that still hold history",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withSession(func(sess *session.Session) error {
				list := func() (interface{}, error) {
					scopes, err := sess.Backend().Scopes()
					if err != nil {
						return nil, NewCommandError("history", "sessions", "could not list sessions", err)
					}
					infos := make([]SessionInfo, 0, len(scopes))
					for _, s := range scopes {
						infos = append(infos, SessionInfo{
							Session:   s.Scope,
							Current:   s.Scope == sess.Scope,
							Bytes:     s.Bytes,
							UpdatedAt: s.UpdatedAt.UTC(),
						})
					}
					return infos, nil
				}

				if jsonOut {
					return OutputJSON(cmd.OutOrStdout(), "history sessions", list)
				}

				data, err := list()
				if err != nil {
					return err
				}
				printSessions(cmd.OutOrStdout(), data.([]SessionInfo))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "output as JSON")
	return cmd
}

func printSessions(w io.Writer, infos []SessionInfo) {
	if len(infos) == 0 {
		fmt.Fprintln(w, DimStyle.Render("No sessions hold any history."))
		return
	}
	fmt.Fprintln(w, TitleStyle.Render("Sessions"))
	for _, info := range infos {
		marker := "  "
		if info.Current {
			marker = "* "
		}
		detail := fmt.Sprintf("%s  %s", formatBytes(info.Bytes), info.UpdatedAt.Local().Format("2006-01-02 15:04"))
		fmt.Fprintln(w, marker+RenderLabel(info.Session, detail))
	}
}

// formatBytes formats bytes as a human-readable string.
func formatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
