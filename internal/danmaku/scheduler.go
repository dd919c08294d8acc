// AINav - AI Tools Directory with Live Message Wall
// Copyright 2026 AINav contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ainav/ainav

// Package danmaku schedules messages as items scrolling right to left across
// a viewport. The Scheduler owns the live item collection; a Surface draws it.
package danmaku

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/ainav/ainav/internal/logging"
	"github.com/ainav/ainav/internal/models"
)

// Surface draws items. Calls are made outside the scheduler's lock, in the
// order the scheduler made its decisions.
type Surface interface {
	Show(item Item)
	Hide(id string)
}

// FrameSurface is a Surface that also wants the live set on every frame,
// e.g. to redraw a terminal.
type FrameSurface interface {
	Surface
	Frame(now time.Time, items []Item)
}

// Config holds presentation ranges. Zero fields take DefaultConfig values,
// except MaxLive where zero means unbounded.
type Config struct {
	ItemAllowance float64 // vertical room reserved for one item
	MinDuration   time.Duration
	MaxDuration   time.Duration
	MinFontSize   float64
	MaxFontSize   float64
	Palette       []ColorPair
	AdminColors   ColorPair
	MaxLive       int // 0 = no cap; otherwise oldest items are evicted first
	FrameInterval time.Duration
}

// DefaultPalette is the colour pool for non-admin messages.
var DefaultPalette = []ColorPair{
	{Foreground: "#1e3a8a", Background: "#dbeafe"},
	{Foreground: "#14532d", Background: "#dcfce7"},
	{Foreground: "#7c2d12", Background: "#ffedd5"},
	{Foreground: "#581c87", Background: "#f3e8ff"},
	{Foreground: "#831843", Background: "#fce7f3"},
	{Foreground: "#134e4a", Background: "#ccfbf1"},
}

// DefaultAdminColors marks administrator messages.
var DefaultAdminColors = ColorPair{Foreground: "#ffffff", Background: "#dc2626"}

// DefaultConfig returns the standard presentation ranges.
func DefaultConfig() Config {
	return Config{
		ItemAllowance: 40,
		MinDuration:   12 * time.Second,
		MaxDuration:   20 * time.Second,
		MinFontSize:   16,
		MaxFontSize:   20,
		Palette:       DefaultPalette,
		AdminColors:   DefaultAdminColors,
		FrameInterval: 100 * time.Millisecond,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.ItemAllowance <= 0 {
		c.ItemAllowance = d.ItemAllowance
	}
	if c.MinDuration <= 0 {
		c.MinDuration = d.MinDuration
	}
	if c.MaxDuration < c.MinDuration {
		c.MaxDuration = max(d.MaxDuration, c.MinDuration)
	}
	if c.MinFontSize <= 0 {
		c.MinFontSize = d.MinFontSize
	}
	if c.MaxFontSize < c.MinFontSize {
		c.MaxFontSize = max(d.MaxFontSize, c.MinFontSize)
	}
	if len(c.Palette) == 0 {
		c.Palette = d.Palette
	}
	if c.AdminColors == (ColorPair{}) {
		c.AdminColors = d.AdminColors
	}
	if c.FrameInterval <= 0 {
		c.FrameInterval = d.FrameInterval
	}
	return c
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) { s.now = now }
}

// WithRand replaces the random source.
func WithRand(rng *rand.Rand) Option {
	return func(s *Scheduler) { s.rng = rng }
}

// WithMeasure replaces MeasurePixels.
func WithMeasure(m MeasureFunc) Option {
	return func(s *Scheduler) { s.measure = m }
}

// Scheduler assigns presentation attributes and retires items that have
// scrolled off. It is safe for concurrent use.
type Scheduler struct {
	cfg     Config
	surface Surface
	now     func() time.Time
	measure MeasureFunc
	log     zerolog.Logger

	mu       sync.Mutex
	rng      *rand.Rand
	viewport Viewport
	live     []Item // insertion order, oldest first
}

// NewScheduler creates a scheduler drawing onto surface. surface may be nil.
func NewScheduler(surface Surface, vp Viewport, cfg Config, opts ...Option) *Scheduler {
	s := &Scheduler{
		cfg:      cfg.withDefaults(),
		surface:  surface,
		now:      time.Now,
		measure:  MeasurePixels,
		log:      logging.WithComponent("danmaku"),
		viewport: vp,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.rng == nil {
		s.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return s
}

// SetViewport updates the viewport, e.g. after a resize. Live items keep
// their offsets.
func (s *Scheduler) SetViewport(vp Viewport) {
	s.mu.Lock()
	s.viewport = vp
	s.mu.Unlock()
}

// Viewport returns the current viewport.
func (s *Scheduler) Viewport() Viewport {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewport
}

// AddItem schedules msg. A live item with the same id is replaced so one
// message never animates twice at once.
func (s *Scheduler) AddItem(msg models.Message) {
	s.mu.Lock()
	item := s.newItemLocked(msg)

	var hide []string
	if s.removeLocked(msg.ID) {
		hide = append(hide, msg.ID)
	}
	if s.cfg.MaxLive > 0 {
		for len(s.live) >= s.cfg.MaxLive {
			evicted := s.live[0]
			s.live = s.live[1:]
			hide = append(hide, evicted.ID())
			s.log.Debug().Str("id", evicted.ID()).Msg("Evicted oldest item")
		}
	}
	s.live = append(s.live, item)
	s.mu.Unlock()

	if s.surface == nil {
		return
	}
	for _, id := range hide {
		s.surface.Hide(id)
	}
	s.surface.Show(item)
}

func (s *Scheduler) newItemLocked(msg models.Message) Item {
	cfg := s.cfg
	item := Item{
		Message:  msg,
		Duration: cfg.MinDuration,
		FontSize: cfg.MinFontSize,
		Start:    s.now(),
	}
	if room := s.viewport.Height - cfg.ItemAllowance; room > 0 {
		item.Offset = s.rng.Float64() * room
	}
	if span := cfg.MaxDuration - cfg.MinDuration; span > 0 {
		item.Duration += time.Duration(s.rng.Int64N(int64(span) + 1))
	}
	if span := cfg.MaxFontSize - cfg.MinFontSize; span > 0 {
		item.FontSize += s.rng.Float64() * span
	}
	if msg.IsAdmin {
		item.Colors = cfg.AdminColors
	} else {
		item.Colors = cfg.Palette[s.rng.IntN(len(cfg.Palette))]
	}
	item.Width = s.measure(msg.Content, item.FontSize)
	return item
}

func (s *Scheduler) removeLocked(id string) bool {
	for i := range s.live {
		if s.live[i].ID() == id {
			s.live = append(s.live[:i], s.live[i+1:]...)
			return true
		}
	}
	return false
}

// Sweep removes every item that has fully exited across the left edge at
// now and returns the removed ids.
func (s *Scheduler) Sweep(now time.Time) []string {
	s.mu.Lock()
	vp := s.viewport
	var removed []string
	kept := s.live[:0]
	for _, item := range s.live {
		if item.Exited(now, vp) {
			removed = append(removed, item.ID())
			continue
		}
		kept = append(kept, item)
	}
	clear(s.live[len(kept):])
	s.live = kept
	s.mu.Unlock()

	if s.surface != nil {
		for _, id := range removed {
			s.surface.Hide(id)
		}
	}
	return removed
}

// Live returns a snapshot of the live items, oldest first.
func (s *Scheduler) Live() []Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Item, len(s.live))
	copy(out, s.live)
	return out
}

// Len returns the number of live items.
func (s *Scheduler) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.live)
}

// Run sweeps on every frame until ctx is done. A FrameSurface also receives
// the live set each frame.
func (s *Scheduler) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.cfg.FrameInterval)
	defer ticker.Stop()

	frames, _ := s.surface.(FrameSurface)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			now := s.now()
			s.Sweep(now)
			if frames != nil {
				frames.Frame(now, s.Live())
			}
		}
	}
}
