// AINav - AI Tools Directory with Live Message Wall
// Copyright 2026 AINav contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ainav/ainav

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/term"

	"github.com/ainav/ainav/internal/danmaku"
	"github.com/ainav/ainav/internal/logging"
	"github.com/ainav/ainav/internal/subscriber"
	"github.com/ainav/ainav/internal/supervisor"
	"github.com/ainav/ainav/internal/supervisor/services"
)

const (
	fallbackWidth  = 80
	fallbackHeight = 24
	resizeInterval = time.Second
)

func runWatch(ctx context.Context, out io.Writer, opts watchOptions) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	vp := viewportFor(opts.width, opts.height)
	surface := newTerminalSurface(out, vp)
	defer surface.restore()

	sched := danmaku.NewScheduler(surface, vp, schedulerConfig(opts), danmaku.WithMeasure(danmaku.MeasureCells))

	stagger := opts.stagger
	if stagger == 0 {
		stagger = -1
	}
	sub, err := subscriber.New(sched, subscriber.Options{
		BaseURL:      opts.server,
		HistoryLimit: opts.history,
		Stagger:      stagger,
		OnPresence:   surface.setPresence,
		OnError: func(err error) {
			surface.setFailure("disconnected: " + err.Error())
		},
	})
	if err != nil {
		return err
	}

	tree, err := supervisor.NewSupervisorTree("livewall", logging.NewSlogLogger(), supervisor.TreeConfig{
		ShutdownTimeout: 5 * time.Second,
	})
	if err != nil {
		return err
	}
	tree.AddBackgroundService(services.NewRunnerService(sched, "danmaku-scheduler"))
	if opts.width <= 0 || opts.height <= 0 {
		tree.AddBackgroundService(services.NewRunnerService(&resizeWatcher{
			width:  opts.width,
			height: opts.height,
			apply: func(vp danmaku.Viewport) {
				sched.SetViewport(vp)
				surface.setViewport(vp)
			},
		}, "resize-watcher"))
	}

	treeCtx, cancelTree := context.WithCancel(ctx)
	defer cancelTree()
	errCh := tree.ServeBackground(treeCtx)

	if err := sub.Mount(ctx); err != nil {
		sub.Unmount()
		cancelTree()
		<-errCh
		return fmt.Errorf("connect to %s: %w", opts.server, err)
	}
	logging.Info().Str("server", opts.server).Msg("Live wall mounted")

	<-ctx.Done()
	sub.Unmount()
	cancelTree()
	if err := <-errCh; err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func runPost(ctx context.Context, out io.Writer, opts postOptions, content string) error {
	msg, err := subscriber.Post(ctx, nil, opts.server, subscriber.Draft{
		Content: content,
		Author:  opts.author,
		IsAdmin: opts.admin,
	})
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(out, "posted %s as %s at %s\n", msg.ID, msg.Author, msg.CreatedAt.Format(time.RFC3339))
	return err
}

// schedulerConfig maps CLI flags onto terminal units: one row per item and
// a crossing time spread around the requested duration.
func schedulerConfig(opts watchOptions) danmaku.Config {
	cfg := danmaku.DefaultConfig()
	cfg.ItemAllowance = 1
	cfg.MaxLive = opts.maxLive
	if opts.duration > 0 {
		cfg.MinDuration = opts.duration * 3 / 4
		cfg.MaxDuration = opts.duration * 5 / 4
	}
	return cfg
}

// viewportFor resolves the wall size. Non-positive dimensions come from the
// terminal, or a fixed fallback when stdout is not a terminal.
func viewportFor(width, height int) danmaku.Viewport {
	if width <= 0 || height <= 0 {
		tw, th := terminalSize()
		if width <= 0 {
			width = tw
		}
		if height <= 0 {
			height = th
		}
	}
	rows := max(height-statusRows, 1)
	return danmaku.Viewport{Width: float64(width), Height: float64(rows)}
}

func terminalSize() (int, int) {
	fd := int(os.Stdout.Fd())
	if term.IsTerminal(fd) {
		if w, h, err := term.GetSize(fd); err == nil && w > 0 && h > 0 {
			return w, h
		}
	}
	return fallbackWidth, fallbackHeight
}

// resizeWatcher polls the terminal size and applies changes.
type resizeWatcher struct {
	width, height int
	apply         func(danmaku.Viewport)
}

func (r *resizeWatcher) Run(ctx context.Context) error {
	ticker := time.NewTicker(resizeInterval)
	defer ticker.Stop()

	last := viewportFor(r.width, r.height)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if vp := viewportFor(r.width, r.height); vp != last {
				last = vp
				r.apply(vp)
			}
		}
	}
}
