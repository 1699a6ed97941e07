// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// root.go - The orb command tree.
//
// Command: orb
// Short:   Ask Me Anything from your terminal
//
// Running orb without a subcommand opens the full screen chat interface.
// Every command shares the config, the logger and the session scope that
// PersistentPreRunE sets up.
//
// Global flags:
//   -s, --session NAME   Session scope (default: $ORB_SESSION, then tty-<ppid>)
//   -v, --verbose        Debug logging
//   --ephemeral          Keep history in memory only
//   --log-file PATH      Log file ("-" for stderr)

package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jeranaias/orb-tui/internal/config"
	"github.com/jeranaias/orb-tui/internal/dispatch"
	"github.com/jeranaias/orb-tui/internal/logging"
	"github.com/jeranaias/orb-tui/internal/session"
	"github.com/jeranaias/orb-tui/internal/storage"
	"github.com/jeranaias/orb-tui/internal/webhook"
)

// Version information (set at build time)
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// annotationLogStderr makes a command log to stderr instead of the log
// file unless --log-file is given.
const annotationLogStderr = "orb/log-stderr"

// =============================================================================
// SHARED STATE
// =============================================================================

// globalFlags are accepted by every command.
type globalFlags struct {
	session   string
	verbose   bool
	ephemeral bool
	logFile   string
}

// app is what every command runs against. PersistentPreRunE fills it.
type app struct {
	flags globalFlags

	cfg *config.Config
	// cfgErr is a config load failure; cfg then holds the defaults.
	cfgErr error
	log    *zap.Logger
}

// setup loads the config and builds the logger.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if cfg == nil {
		return NewCommandError("config", "load", "configuration is unusable", err)
	}
	a.cfg, a.cfgErr = cfg, err
	if a.flags.ephemeral {
		a.cfg.Session.Backend = storage.KindMemory
	}

	path := a.flags.logFile
	if path == "" {
		path = a.cfg.Log.Path
	}
	if path == "" {
		if cmd.Annotations[annotationLogStderr] == "true" {
			path = "-"
		} else if dir, dirErr := config.ConfigDir(); dirErr == nil {
			path = logging.DefaultPath(dir)
		}
	}

	log, err := logging.New(logging.Options{
		Level:   a.cfg.Log.Level,
		Path:    path,
		Verbose: a.flags.verbose,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	a.log = log.With(zap.String("command", cmd.CommandPath()))

	if a.cfgErr != nil {
		a.log.Warn("config load failed, using defaults", zap.Error(a.cfgErr))
	}
	return nil
}

func (a *app) teardown(*cobra.Command, []string) {
	if a.log != nil {
		_ = a.log.Sync()
	}
}

// warnConfig reports a config load failure on the command's stderr.
func (a *app) warnConfig(cmd *cobra.Command) {
	if a.cfgErr != nil {
		warn(cmd.ErrOrStderr(), "%v (using defaults)", a.cfgErr)
	}
}

// openSession opens the conversation for the resolved scope.
func (a *app) openSession() (*session.Session, error) {
	scope, err := session.ResolveScope(a.flags.session)
	if err != nil {
		return nil, NewValidationErrorWithExample("session", a.flags.session, err.Error(), "orb --session work")
	}
	return session.Open(a.cfg, scope, a.log)
}

// newDispatcher wires a webhook client to the session's conversation. The
// caller closes the client.
func (a *app) newDispatcher(sess *session.Session) (*dispatch.Dispatcher, *webhook.Client) {
	client := webhook.NewClient(webhook.ConfigFrom(a.cfg.Webhook), a.log)
	d := dispatch.New(client, sess.Store, dispatch.Options{
		ReportEmpty: a.cfg.UI.ReportEmptyAnswers,
		Logger:      a.log,
	})
	return d, client
}

// =============================================================================
// COMMAND TREE
// =============================================================================

// NewRootCmd builds the orb command tree.
func NewRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "orb",
		Short: "Ask Me Anything from your terminal",
		Long: `orb sends your questions to a webhook and shows the answers as a
conversation. The conversation lives for the length of your terminal
session.

Run without arguments to start the interactive chat interface.`,
		Example: `  orb
  orb ask "What is the capital of France?"
  orb --session work chat
  orb echo-server & orb config set webhook.url http://127.0.0.1:8788/webhook`,
		Args:              cobra.NoArgs,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
		PersistentPostRun: a.teardown,
		RunE:              a.runTUI,
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&a.flags.session, "session", "s", "", "session scope (default: $ORB_SESSION, then the parent process)")
	flags.BoolVarP(&a.flags.verbose, "verbose", "v", false, "debug logging")
	flags.BoolVar(&a.flags.ephemeral, "ephemeral", false, "keep history in memory only")
	flags.StringVar(&a.flags.logFile, "log-file", "", `log file ("-" for stderr)`)

	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &ValidationError{Field: "flag", Reason: err.Error()}
	})

	root.AddCommand(
		newAskCmd(a),
		newChatCmd(a),
		newHistoryCmd(a),
		newConfigCmd(a),
		newEchoServerCmd(a),
		newVersionCmd(),
	)
	return root
}

// Execute runs the command line and returns the exit code.
func Execute() int {
	root := NewRootCmd()
	if err := root.Execute(); err != nil {
		DisplayError(root.ErrOrStderr(), err)
		return ExitCode(err)
	}
	return ExitSuccess
}
