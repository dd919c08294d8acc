// AINav - AI Tools Directory with Live Message Wall
// Copyright 2026 AINav contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ainav/ainav

// Package presence tracks which client origins are currently on the live page.
//
// The registry has set semantics: incrementing the same origin twice and
// decrementing it once leaves it absent. Construct one Registry in main and
// pass it to the handlers that need it.
package presence

import (
	"context"
	"sync"
	"time"

	"github.com/ainav/ainav/internal/logging"
	"github.com/ainav/ainav/internal/metrics"
)

// Registry is a concurrency-safe set of origin ids.
type Registry struct {
	mu      sync.Mutex
	entries map[string]time.Time // origin -> last increment

	ttl           time.Duration
	sweepInterval time.Duration
	now           func() time.Time
}

// Option configures a Registry.
type Option func(*Registry)

// WithTTL enables expiry: an origin not re-incremented within ttl is removed
// by Run. A zero ttl keeps entries until Decrement.
func WithTTL(ttl, sweepInterval time.Duration) Option {
	return func(r *Registry) {
		r.ttl = ttl
		r.sweepInterval = sweepInterval
	}
}

// NewRegistry creates an empty registry.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		entries: make(map[string]time.Time),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Increment adds origin to the set (refreshing its TTL stamp) and returns the set size.
func (r *Registry) Increment(origin string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[origin] = r.now()
	return r.sizeLocked()
}

// Decrement removes origin if present and returns the set size.
func (r *Registry) Decrement(origin string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, origin)
	return r.sizeLocked()
}

// Count returns the set size.
func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// TTLEnabled reports whether Run has anything to do.
func (r *Registry) TTLEnabled() bool {
	return r.ttl > 0
}

func (r *Registry) sizeLocked() int {
	n := len(r.entries)
	metrics.PresenceActiveOrigins.Set(float64(n))
	return n
}

// Sweep removes origins whose last increment is older than the TTL and
// returns how many were removed. It is a no-op when TTL is disabled.
func (r *Registry) Sweep() int {
	if r.ttl <= 0 {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := r.now().Add(-r.ttl)
	removed := 0
	for origin, seen := range r.entries {
		if seen.Before(cutoff) {
			delete(r.entries, origin)
			removed++
		}
	}
	if removed > 0 {
		metrics.PresenceExpired.Add(float64(removed))
		r.sizeLocked()
	}
	return removed
}

// Run sweeps expired origins until ctx is done. It returns immediately with
// nil when TTL is disabled.
func (r *Registry) Run(ctx context.Context) error {
	if r.ttl <= 0 {
		return nil
	}
	interval := r.sweepInterval
	if interval <= 0 {
		interval = r.ttl
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	log := logging.WithComponent("presence")
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if n := r.Sweep(); n > 0 {
				log.Info().Int("expired", n).Int("count", r.Count()).Msg("Expired idle presence entries")
			}
		}
	}
}

// String identifies the sweeper in supervisor logs.
func (r *Registry) String() string {
	return "presence-sweeper"
}
