// AINav - AI Tools Directory with Live Message Wall
// Copyright 2026 AINav contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ainav/ainav

package stream

import (
	"context"
	"time"

	"github.com/ainav/ainav/internal/logging"
	"github.com/ainav/ainav/internal/metrics"
	"github.com/ainav/ainav/internal/models"
)

// session is the state of one open stream. Only the run goroutine touches it.
type session struct {
	handler  *Handler
	out      *eventWriter
	lastSeen time.Time // never decreases
	opened   time.Time
}

// run emits connected, then serves ticks until ctx ends or a write fails.
func (s *session) run(ctx context.Context) error {
	if err := s.out.writeText(EventConnected, "connected"); err != nil {
		return err
	}

	presenceTicker := time.NewTicker(s.handler.cfg.PresenceInterval)
	defer presenceTicker.Stop()
	messageTicker := time.NewTicker(s.handler.cfg.MessageInterval)
	defer messageTicker.Stop()

	var inserted <-chan struct{}
	if s.handler.notifier != nil {
		ch, err := s.handler.notifier.Subscribe(ctx)
		if err != nil {
			logging.Ctx(ctx).Warn().Err(err).Msg("Insert notifications unavailable, polling only")
		} else {
			inserted = ch
		}
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case <-presenceTicker.C:
			if err := s.sendPresence(ctx); err != nil {
				return err
			}

		case <-messageTicker.C:
			if err := s.pollMessages(ctx); err != nil {
				return err
			}

		case _, ok := <-inserted:
			if !ok {
				inserted = nil
				continue
			}
			if err := s.pollMessages(ctx); err != nil {
				return err
			}
		}
	}
}

// sendPresence emits userCount, or the degraded {count:0,error:true}.
func (s *session) sendPresence(ctx context.Context) error {
	count, err := s.handler.presence.PresenceCount(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		metrics.RecordSSEPollError("presence")
		logging.Ctx(ctx).Warn().Err(err).Msg("Presence read failed, sending degraded count")
		return s.out.writeJSON(EventUserCount, models.PresenceCount{Count: 0, Error: true})
	}
	return s.out.writeJSON(EventUserCount, models.PresenceCount{Count: count})
}

// pollMessages reads everything after lastSeen. The result goes out in
// batches of at most MaxBatch messages, usually one; the cursor advances to
// the last item of each batch once it is written. A failed read sends an
// empty batch and leaves the cursor alone so the next poll retries the same
// window.
func (s *session) pollMessages(ctx context.Context) error {
	msgs, err := s.handler.messages.FindSince(ctx, s.lastSeen)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		metrics.RecordSSEPollError("messages")
		logging.Ctx(ctx).Warn().Err(err).Time("since", s.lastSeen).Msg("Message poll failed, sending empty batch")
		return s.out.writeJSON(EventMessages, []models.Message{})
	}
	for len(msgs) > 0 {
		n := min(len(msgs), s.handler.cfg.MaxBatch)
		batch := msgs[:n]
		msgs = msgs[n:]
		if err := s.out.writeJSON(EventMessages, batch); err != nil {
			return err
		}
		if last := batch[n-1].CreatedAt; last.After(s.lastSeen) {
			s.lastSeen = last
		}
	}
	return nil
}
