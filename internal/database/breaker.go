// AINav - AI Tools Directory with Live Message Wall
// Copyright 2026 AINav contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ainav/ainav

package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/ainav/ainav/internal/logging"
	"github.com/ainav/ainav/internal/metrics"
	"github.com/ainav/ainav/internal/models"
)

// BreakerConfig configures BreakerStore.
type BreakerConfig struct {
	Name             string
	FailureThreshold uint32        // consecutive failures that open the circuit
	Timeout          time.Duration // open -> half-open
	MaxRequests      uint32        // probes allowed while half-open
}

// BreakerStore wraps a MessageReader in a circuit breaker. Every open
// stream polls once per interval, so a failing database would otherwise
// receive one doomed query per connection per tick.
type BreakerStore struct {
	next MessageReader
	cb   *gobreaker.CircuitBreaker[[]models.Message]
}

// NewBreakerStore wraps next.
func NewBreakerStore(next MessageReader, cfg BreakerConfig) *BreakerStore {
	if cfg.Name == "" {
		cfg.Name = messagesTable
	}
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = 5
	}
	if cfg.MaxRequests == 0 {
		cfg.MaxRequests = 1
	}

	settings := gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		// A disconnecting client cancels its own poll; that says nothing about the database.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			metrics.SetCircuitBreakerState(name, breakerStateValue(to))
			logging.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("Circuit breaker state changed")
		},
	}
	metrics.SetCircuitBreakerState(cfg.Name, 0)

	return &BreakerStore{
		next: next,
		cb:   gobreaker.NewCircuitBreaker[[]models.Message](settings),
	}
}

// FindSince delegates through the breaker.
func (b *BreakerStore) FindSince(ctx context.Context, since time.Time) ([]models.Message, error) {
	return b.execute(func() ([]models.Message, error) {
		return b.next.FindSince(ctx, since)
	})
}

// Recent delegates through the breaker.
func (b *BreakerStore) Recent(ctx context.Context, limit int) ([]models.Message, error) {
	return b.execute(func() ([]models.Message, error) {
		return b.next.Recent(ctx, limit)
	})
}

// State reports the current breaker state.
func (b *BreakerStore) State() gobreaker.State {
	return b.cb.State()
}

func (b *BreakerStore) execute(fn func() ([]models.Message, error)) ([]models.Message, error) {
	msgs, err := b.cb.Execute(fn)
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	return msgs, err
}

func breakerStateValue(s gobreaker.State) int {
	switch s {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}
