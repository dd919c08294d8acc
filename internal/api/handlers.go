// AINav - AI Tools Directory with Live Message Wall
// Copyright 2026 AINav contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ainav/ainav

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/ainav/ainav/internal/config"
	"github.com/ainav/ainav/internal/database"
	"github.com/ainav/ainav/internal/models"
	"github.com/ainav/ainav/internal/presence"
)

// MessageWriter persists new messages.
type MessageWriter interface {
	Insert(ctx context.Context, content, author string, isAdmin bool) (*models.Message, error)
}

// Pinger reports database liveness.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler contains dependencies for API handlers.
//
// Handler methods are split across files:
//   - handlers_presence.go: presence join/leave/count
//   - handlers_messages.go: message history and creation, stream mount
//   - handlers_health.go: liveness and readiness probes
type Handler struct {
	cfg       *config.Config
	db        Pinger
	writer    MessageWriter
	reader    database.MessageReader
	presence  *presence.Registry
	stream    http.Handler
	startTime time.Time
}

// NewHandler creates the API handler.
//
// reader serves history reads and is normally the circuit-breaker wrapped
// store; writer is the store itself. stream serves GET /api/v1/stream.
//
// Example:
//
//	handler := api.NewHandler(cfg, db, store, breaker, registry, streamHandler)
//	router := api.NewRouter(handler, api.NewChiMiddlewareFromConfig(cfg.Security))
//	srv := &http.Server{Handler: router.SetupChi()}
func NewHandler(cfg *config.Config, db Pinger, writer MessageWriter, reader database.MessageReader, registry *presence.Registry, stream http.Handler) *Handler {
	return &Handler{
		cfg:       cfg,
		db:        db,
		writer:    writer,
		reader:    reader,
		presence:  registry,
		stream:    stream,
		startTime: time.Now(),
	}
}
