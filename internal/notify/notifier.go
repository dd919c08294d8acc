// AINav - AI Tools Directory with Live Message Wall
// Copyright 2026 AINav contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ainav/ainav

// Package notify announces freshly inserted messages to open live streams
// so they can poll immediately instead of waiting for their next tick.
//
// It is an in-process watermill gochannel pub/sub. Notifications carry the
// message for logging and debugging, but subscribers treat them as a bare
// "something changed" signal and still read through the store cursor.
package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/goccy/go-json"

	"github.com/ainav/ainav/internal/metrics"
	"github.com/ainav/ainav/internal/models"
)

// TopicMessageCreated carries one notification per accepted message.
const TopicMessageCreated = "messages.created"

// ErrClosed is returned after Close.
var ErrClosed = errors.New("notifier closed")

// Notifier publishes insert notifications and hands out coalescing
// subscriptions.
type Notifier struct {
	pubsub *gochannel.GoChannel

	mu     sync.RWMutex
	closed bool
}

// New creates a Notifier. logger may be nil.
func New(logger *slog.Logger) *Notifier {
	var wmLogger watermill.LoggerAdapter = watermill.NopLogger{}
	if logger != nil {
		wmLogger = watermill.NewSlogLogger(logger)
	}
	return &Notifier{
		pubsub: gochannel.NewGoChannel(gochannel.Config{
			OutputChannelBuffer: 16,
		}, wmLogger),
	}
}

// Publish announces msg. It never blocks on slow subscribers.
func (n *Notifier) Publish(_ context.Context, msg *models.Message) error {
	n.mu.RLock()
	defer n.mu.RUnlock()
	if n.closed {
		metrics.RecordNotify(ErrClosed)
		return ErrClosed
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		metrics.RecordNotify(err)
		return fmt.Errorf("failed to encode notification: %w", err)
	}
	err = n.pubsub.Publish(TopicMessageCreated, message.NewMessage(watermill.NewUUID(), payload))
	metrics.RecordNotify(err)
	if err != nil {
		return fmt.Errorf("failed to publish notification: %w", err)
	}
	return nil
}

// Subscribe returns a signal channel that receives at least one value after
// each Publish. Bursts collapse into a single pending signal (capacity 1).
// The channel is closed when ctx is done or the notifier is closed.
func (n *Notifier) Subscribe(ctx context.Context) (<-chan struct{}, error) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	if n.closed {
		return nil, ErrClosed
	}

	msgs, err := n.pubsub.Subscribe(ctx, TopicMessageCreated)
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe: %w", err)
	}

	signal := make(chan struct{}, 1)
	go func() {
		defer close(signal)
		for msg := range msgs {
			msg.Ack()
			select {
			case signal <- struct{}{}:
			default:
			}
		}
	}()
	return signal, nil
}

// Close shuts down the pub/sub and closes every subscription channel.
func (n *Notifier) Close() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.closed {
		return nil
	}
	n.closed = true
	return n.pubsub.Close()
}
