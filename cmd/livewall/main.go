// AINav - AI Tools Directory with Live Message Wall
// Copyright 2026 AINav contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ainav/ainav

// Command livewall follows an AINav server from a terminal. Messages scroll
// across the screen right to left and the top line shows the viewer count.
package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/ainav/ainav/internal/logging"
)

func main() {
	if err := buildRootCmd().Execute(); err != nil {
		logging.Error().Err(err).Msg("livewall failed")
		os.Exit(1)
	}
}

// buildRootCmd creates the command tree. Separate from main for tests.
func buildRootCmd() *cobra.Command {
	var logLevel string

	root := &cobra.Command{
		Use:           "livewall",
		Short:         "Terminal client for the AINav live message wall",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			// Logs go to stderr in console form so they do not tear the wall.
			logging.Init(logging.Config{Level: logLevel, Format: "console"})
		},
	}
	root.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")

	root.AddCommand(buildWatchCmd(), buildPostCmd())
	return root
}
