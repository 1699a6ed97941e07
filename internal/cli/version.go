// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

// VersionData is the JSON payload of `orb version --json`.
type VersionData struct {
	Version   string `json:"version"`
	GitCommit string `json:"git_commit"`
	BuildDate string `json:"build_date"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}

func versionData() VersionData {
	return VersionData{
		Version:   Version,
		GitCommit: GitCommit,
		BuildDate: BuildDate,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
}

func newVersionCmd() *cobra.Command {
	var jsonOut bool
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		// Needs neither config nor logger.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		PersistentPostRun: func(*cobra.Command, []string) {},
		RunE: func(cmd *cobra.Command, _ []string) error {
			if jsonOut {
				return NewJSONResponse("version", versionData()).Print(cmd.OutOrStdout())
			}
			v := versionData()
			fmt.Fprintf(cmd.OutOrStdout(), "orb %s\n", v.Version)
			fmt.Fprintf(cmd.OutOrStdout(), "  Commit:   %s\n", v.GitCommit)
			fmt.Fprintf(cmd.OutOrStdout(), "  Built:    %s\n", v.BuildDate)
			fmt.Fprintf(cmd.OutOrStdout(), "  Go:       %s\n", v.GoVersion)
			fmt.Fprintf(cmd.OutOrStdout(), "  Platform: %s\n", v.Platform)
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "output as JSON")
	return cmd
}
