// AINav - AI Tools Directory with Live Message Wall
// Copyright 2026 AINav contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ainav/ainav

// Package stream serves the live wall as a server-sent event stream.
//
// Each connection runs its own loop with two tickers: presence (userCount
// events) and messages (incremental FindSince polls). When a notifier is
// configured the loop also polls right after every insert. Read failures
// turn into degraded events; only the client going away ends a stream.
package stream

import (
	"context"
	"net/http"
	"time"

	"github.com/ainav/ainav/internal/database"
	"github.com/ainav/ainav/internal/logging"
	"github.com/ainav/ainav/internal/metrics"
)

// PresenceReader reads the current number of present origins.
type PresenceReader interface {
	PresenceCount(ctx context.Context) (int, error)
}

// Counter is satisfied by presence.Registry.
type Counter interface {
	Count() int
}

type counterReader struct{ c Counter }

func (r counterReader) PresenceCount(context.Context) (int, error) {
	return r.c.Count(), nil
}

// FromCounter adapts an infallible counter to PresenceReader.
func FromCounter(c Counter) PresenceReader {
	return counterReader{c: c}
}

// Subscriber hands out insert signals. notify.Notifier implements it.
type Subscriber interface {
	Subscribe(ctx context.Context) (<-chan struct{}, error)
}

// Config holds per-connection timing.
type Config struct {
	PresenceInterval time.Duration
	MessageInterval  time.Duration
	MaxBatch         int // messages per event; larger poll results are split
}

// DefaultConfig returns the 5s presence and 1s message cadence.
func DefaultConfig() Config {
	return Config{
		PresenceInterval: 5 * time.Second,
		MessageInterval:  time.Second,
		MaxBatch:         100,
	}
}

// Handler serves GET /api/v1/stream.
type Handler struct {
	messages database.MessageReader
	presence PresenceReader
	notifier Subscriber
	cfg      Config
	now      func() time.Time
}

// NewHandler creates the stream handler. notifier may be nil, in which case
// message delivery relies on the poll ticker alone.
func NewHandler(messages database.MessageReader, presence PresenceReader, notifier Subscriber, cfg Config) *Handler {
	def := DefaultConfig()
	if cfg.PresenceInterval <= 0 {
		cfg.PresenceInterval = def.PresenceInterval
	}
	if cfg.MessageInterval <= 0 {
		cfg.MessageInterval = def.MessageInterval
	}
	if cfg.MaxBatch <= 0 {
		cfg.MaxBatch = def.MaxBatch
	}
	return &Handler{
		messages: messages,
		presence: presence,
		notifier: notifier,
		cfg:      cfg,
		now:      time.Now,
	}
}

// ServeHTTP opens the stream and blocks until the client disconnects.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	// The server-wide write timeout would otherwise cut long-lived streams.
	_ = http.NewResponseController(w).SetWriteDeadline(time.Time{})

	header := w.Header()
	header.Set("Content-Type", "text/event-stream")
	header.Set("Cache-Control", "no-cache")
	header.Set("Connection", "keep-alive")
	header.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	// Session logs carry the component plus the request and correlation ids.
	ctx := logging.ContextWithLogger(r.Context(), logging.WithComponent("stream"))
	s := &session{
		handler:  h,
		out:      newEventWriter(w, flusher),
		lastSeen: h.now().UTC(),
		opened:   time.Now(),
	}

	metrics.SSEConnections.Inc()
	defer metrics.SSEConnections.Dec()

	log := logging.Ctx(ctx)
	log.Debug().Str("remote_addr", r.RemoteAddr).Msg("Event stream opened")

	err := s.run(ctx)

	log.Debug().
		AnErr("reason", err).
		Int("events", s.out.written).
		Dur("duration", time.Since(s.opened)).
		Msg("Event stream closed")
}
