// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// config_cmd.go - Configuration commands.
//
// Command: config [subcommand]
// Short:   Show or change the configuration
//
// Subcommands:
//   show                Print the effective configuration
//   get KEY             Print one value
//   set KEY VALUE       Change one value in the config file
//   path                Print the config file location
//
// Keys use dot notation, e.g. webhook.url or ui.reduce_motion. The
// password is redacted unless --reveal is given.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jeranaias/orb-tui/internal/config"
)

// Redacted replaces secrets in output.
const Redacted = "[REDACTED]"

func newConfigCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or change the configuration",
	}
	cmd.AddCommand(
		newConfigShowCmd(a),
		newConfigGetCmd(a),
		newConfigSetCmd(a),
		newConfigPathCmd(),
	)
	return cmd
}

// ConfigEntry is one key of `orb config show --json`.
type ConfigEntry struct {
	Key   string      `json:"key"`
	Value interface{} `json:"value"`
}

// configEntries lists every key of cfg, with secrets redacted unless
// reveal is set.
func configEntries(cfg *config.Config, reveal bool) ([]ConfigEntry, error) {
	keys := config.GetAllKeys()
	entries := make([]ConfigEntry, 0, len(keys))
	for _, key := range keys {
		value, err := cfg.Get(key)
		if err != nil {
			return nil, err
		}
		entries = append(entries, ConfigEntry{Key: key, Value: displayValue(key, value, reveal)})
	}
	return entries, nil
}

func displayValue(key string, value interface{}, reveal bool) interface{} {
	if config.IsSecret(key) && !reveal {
		if s, ok := value.(string); ok && s == "" {
			return ""
		}
		return Redacted
	}
	return value
}

// =============================================================================
// SHOW
// =============================================================================

func newConfigShowCmd(a *app) *cobra.Command {
	var jsonOut, reveal bool
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Long: `Prints the configuration orb is using: the config file with environment
overrides applied. When the file is invalid the defaults are shown along
with the error.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if jsonOut {
				return OutputJSON(cmd.OutOrStdout(), "config show", func() (interface{}, error) {
					return configEntries(a.cfg, reveal)
				})
			}

			a.warnConfig(cmd)
			entries, err := configEntries(a.cfg, reveal)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if path, err := config.ActivePath(); err == nil {
				fmt.Fprintln(out, TitleStyle.Render("Configuration"))
				fmt.Fprintln(out, DimStyle.Render(path))
				fmt.Fprintln(out)
			}
			for _, e := range entries {
				fmt.Fprintln(out, RenderLabel(e.Key, fmt.Sprint(e.Value)))
			}
			if err := a.cfg.RequireWebhook(); err != nil {
				fmt.Fprintln(out)
				warn(out, "%v", err)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "output as JSON")
	cmd.Flags().BoolVar(&reveal, "reveal", false, "show the webhook password")
	return cmd
}

// =============================================================================
// GET
// =============================================================================

func newConfigGetCmd(a *app) *cobra.Command {
	var reveal bool
	cmd := &cobra.Command{
		Use:     "get KEY",
		Short:   "Print one configuration value",
		Example: "  orb config get webhook.url",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			value, err := a.cfg.Get(args[0])
			if err != nil {
				return NewValidationErrorWithExample("key", args[0], err.Error(), "orb config get webhook.url")
			}
			fmt.Fprintln(cmd.OutOrStdout(), displayValue(args[0], value, reveal))
			return nil
		},
	}
	cmd.Flags().BoolVar(&reveal, "reveal", false, "show secrets")
	return cmd
}

// =============================================================================
// SET
// =============================================================================

func newConfigSetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "set KEY VALUE",
		Short: "Change one value in the config file",
		Long: `Changes one value in the active config file, creating it when needed.
Environment overrides are not written to the file. A running 'orb' picks
the change up without restarting.`,
		Example: `  orb config set webhook.url https://example.com/webhook/ask
  orb config set ui.reduce_motion true`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, value := args[0], args[1]

			path, err := config.ActivePath()
			if err != nil {
				return NewCommandError("config", "set", "no config location", err)
			}
			cfg, err := config.ReadFile(path)
			if err != nil {
				return NewCommandError("config", "set", "config file is unreadable", err)
			}
			if err := cfg.Set(key, value); err != nil {
				return NewValidationErrorWithExample("key", key, err.Error(), "orb config set webhook.url https://example.com/hook")
			}
			cfg.SetDefaults()
			if err := cfg.Validate(); err != nil {
				return err
			}
			if err := config.SaveToPath(cfg, path); err != nil {
				return NewCommandError("config", "set", "could not save", err)
			}

			a.log.Info("config value changed")
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s = %v\n",
				SuccessStyle.Render("[OK]"), key, displayValue(key, value, false))
			return nil
		},
	}
}

// =============================================================================
// PATH
// =============================================================================

func newConfigPathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the config file location",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, err := config.ActivePath()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
}
