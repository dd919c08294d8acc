// AINav - AI Tools Directory with Live Message Wall
// Copyright 2026 AINav contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ainav/ainav

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ainav/ainav/internal/api"
	"github.com/ainav/ainav/internal/config"
	"github.com/ainav/ainav/internal/database"
	"github.com/ainav/ainav/internal/logging"
	"github.com/ainav/ainav/internal/notify"
	"github.com/ainav/ainav/internal/presence"
	"github.com/ainav/ainav/internal/stream"
	"github.com/ainav/ainav/internal/supervisor"
	"github.com/ainav/ainav/internal/supervisor/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("db_path", cfg.Database.Path).
		Str("environment", cfg.Server.Environment).
		Msg("Starting AINav live wall server")

	if err := run(cfg); err != nil {
		logging.Fatal().Err(err).Msg("Server exited with error")
	}
	logging.Info().Msg("Application stopped gracefully")
}

func run(cfg *config.Config) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := database.New(&cfg.Database)
	if err != nil {
		return fmt.Errorf("initialize database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing database")
		}
	}()

	notifier := notify.New(logging.NewSlogLogger())
	defer func() {
		if err := notifier.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing insert notifier")
		}
	}()

	store, err := database.NewMessageStore(ctx, db, cfg.Messages, notifier)
	if err != nil {
		return fmt.Errorf("initialize message store: %w", err)
	}
	reader := database.NewBreakerStore(store, database.BreakerConfig{
		FailureThreshold: cfg.Database.BreakerThreshold,
		Timeout:          cfg.Database.BreakerTimeout,
	})

	var opts []presence.Option
	if cfg.Presence.TTL > 0 {
		opts = append(opts, presence.WithTTL(cfg.Presence.TTL, cfg.Presence.SweepInterval))
	}
	registry := presence.NewRegistry(opts...)

	// A typed nil would defeat the handler's nil check.
	var signals stream.Subscriber
	if cfg.Stream.NotifyEnabled {
		signals = notifier
	}
	streamHandler := stream.NewHandler(reader, stream.FromCounter(registry), signals, stream.Config{
		PresenceInterval: cfg.Stream.PresenceInterval,
		MessageInterval:  cfg.Stream.MessageInterval,
		MaxBatch:         cfg.Stream.MaxBatch,
	})

	handler := api.NewHandler(cfg, db, store, reader, registry, streamHandler)
	router := api.NewRouter(handler, api.NewChiMiddlewareFromConfig(cfg.Security))

	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           router.SetupChi(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.Timeout,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       60 * time.Second,
	}

	tree, err := supervisor.NewSupervisorTree("ainav", logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if err != nil {
		return fmt.Errorf("create supervisor tree: %w", err)
	}

	if registry.TTLEnabled() {
		tree.AddBackgroundService(services.NewRunnerService(registry, ""))
		logging.Info().Dur("ttl", cfg.Presence.TTL).Msg("Presence sweeper added to supervisor tree")
	}
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.Timeout))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case sig := <-sigCh:
			logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
			cancel()
		case <-ctx.Done():
		}
	}()

	logging.Info().Msg("Starting supervisor tree...")
	errCh := tree.ServeBackground(ctx)

	// suture sends exactly one value and never closes the channel.
	var serveErr error
	if err := <-errCh; err != nil && !errors.Is(err, context.Canceled) {
		logging.Error().Err(err).Msg("Supervisor tree error")
		serveErr = err
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
	}
	return serveErr
}
