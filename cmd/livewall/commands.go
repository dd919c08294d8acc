// AINav - AI Tools Directory with Live Message Wall
// Copyright 2026 AINav contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ainav/ainav

package main

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

const (
	defaultServer = "http://localhost:8080"
	defaultAuthor = "anonymous"
)

type watchOptions struct {
	server   string
	history  int
	stagger  time.Duration
	maxLive  int
	width    int
	height   int
	duration time.Duration
}

func buildWatchCmd() *cobra.Command {
	opts := watchOptions{}

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Show the live wall in this terminal",
		Long: `Connect to the server, replay recent history, then scroll every new
message across the terminal. Press Ctrl-C to leave; the viewer count is
decremented on exit.`,
		Example: `  livewall watch
  livewall watch --server https://ainav.example.com --history 20
  livewall watch --max-live 30 --stagger 0`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runWatch(cmd.Context(), cmd.OutOrStdout(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.server, "server", "s", defaultServer, "Server base URL")
	cmd.Flags().IntVar(&opts.history, "history", 10, "Number of recent messages to replay on start")
	cmd.Flags().DurationVar(&opts.stagger, "stagger", 300*time.Millisecond, "Delay between consecutive messages (0 shows them at once)")
	cmd.Flags().IntVar(&opts.maxLive, "max-live", 0, "Maximum messages on screen (0 = unbounded)")
	cmd.Flags().IntVar(&opts.width, "width", 0, "Wall width in columns (0 = terminal width)")
	cmd.Flags().IntVar(&opts.height, "height", 0, "Wall height in rows (0 = terminal height)")
	cmd.Flags().DurationVar(&opts.duration, "duration", 16*time.Second, "Base time for a message to cross the wall")

	return cmd
}

type postOptions struct {
	server string
	author string
	admin  bool
}

func buildPostCmd() *cobra.Command {
	opts := postOptions{}

	cmd := &cobra.Command{
		Use:   "post <message>",
		Short: "Post a message to the wall",
		Args:  cobra.ExactArgs(1),
		Example: `  livewall post "Loving the new agents section"
  livewall post --author Ada "Hello from the terminal"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(opts.author) == "" {
				return errors.New("--author must not be empty")
			}
			return runPost(cmd.Context(), cmd.OutOrStdout(), opts, args[0])
		},
	}

	cmd.Flags().StringVarP(&opts.server, "server", "s", defaultServer, "Server base URL")
	cmd.Flags().StringVarP(&opts.author, "author", "a", defaultAuthor, "Display name shown with the message")
	cmd.Flags().BoolVar(&opts.admin, "admin", false, "Mark the message as an administrator message")

	return cmd
}
