// AINav - AI Tools Directory with Live Message Wall
// Copyright 2026 AINav contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ainav/ainav

// Package subscriber is the client side of the live wall. It loads recent
// history, follows the event stream, registers presence, and hands each
// message to a Renderer exactly once.
//
// A dropped stream leaves the subscriber in an error state; it does not
// reconnect. Call Unmount and Mount a new Subscriber to recover.
package subscriber

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-json"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog"

	"github.com/ainav/ainav/internal/logging"
	"github.com/ainav/ainav/internal/models"
)

const (
	pathMessages = "/api/v1/messages"
	pathPresence = "/api/v1/presence"
	pathStream   = "/api/v1/stream"
)

// ErrStreamClosed is reported when the server ends the stream.
var ErrStreamClosed = errors.New("event stream closed by server")

// Renderer receives messages to display.
type Renderer interface {
	AddItem(msg models.Message)
}

// Options configures a Subscriber. Zero values take the defaults noted.
type Options struct {
	BaseURL      string        // server root, e.g. http://localhost:8080
	HistoryLimit int           // default 10
	Stagger      time.Duration // delay between consecutive items, default 300ms; negative disables
	SeenCapacity int           // bounded seen-id cache, default 10000
	HTTPClient   *http.Client  // default: a client without timeout (the stream is long-lived)

	// OnPresence receives every presence count, including the degraded one.
	OnPresence func(models.PresenceCount)
	// OnError receives stream failures. Err reports the same value.
	OnError func(error)
}

// Subscriber follows one server. Mount once, Unmount once.
type Subscriber struct {
	base     *url.URL
	opts     Options
	client   *http.Client
	renderer Renderer
	seen     *lru.Cache[string, struct{}]
	log      zerolog.Logger

	mu         sync.Mutex
	timers     []*time.Timer
	err        error
	mounted    bool
	unmounted  bool
	registered bool
	cancel     context.CancelFunc
	done       chan struct{}
}

// New validates opts and creates an unmounted Subscriber.
func New(renderer Renderer, opts Options) (*Subscriber, error) {
	base, err := url.Parse(strings.TrimRight(opts.BaseURL, "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid base URL %q", opts.BaseURL)
	}
	if opts.HistoryLimit <= 0 {
		opts.HistoryLimit = 10
	}
	if opts.Stagger < 0 {
		opts.Stagger = 0
	} else if opts.Stagger == 0 {
		opts.Stagger = 300 * time.Millisecond
	}
	if opts.SeenCapacity <= 0 {
		opts.SeenCapacity = 10000
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{}
	}

	seen, err := lru.New[string, struct{}](opts.SeenCapacity)
	if err != nil {
		return nil, fmt.Errorf("failed to create seen cache: %w", err)
	}

	return &Subscriber{
		base:     base,
		opts:     opts,
		client:   client,
		renderer: renderer,
		seen:     seen,
		log:      logging.WithComponent("subscriber"),
	}, nil
}

// Mount loads history, opens the stream and registers presence, in that
// order. Only failing to open the stream is returned and sets the error
// state; history and presence failures are logged and leave it alone.
func (s *Subscriber) Mount(ctx context.Context) error {
	s.mu.Lock()
	if s.mounted {
		s.mu.Unlock()
		return errors.New("subscriber already mounted")
	}
	s.mounted = true
	streamCtx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.mu.Unlock()

	if err := s.loadHistory(ctx); err != nil {
		s.log.Warn().Err(err).Msg("History load failed")
	}

	body, err := s.openStream(streamCtx)
	if err != nil {
		s.fail(err)
		return err
	}
	done := make(chan struct{})
	s.mu.Lock()
	s.done = done
	s.mu.Unlock()
	go s.consume(streamCtx, body, done)

	if count, err := s.presenceCall(ctx, http.MethodPost); err != nil {
		s.log.Warn().Err(err).Msg("Presence registration failed")
	} else {
		s.mu.Lock()
		s.registered = true
		s.mu.Unlock()
		s.reportCount(count)
	}
	return nil
}

// Unmount cancels pending staggered inserts, closes the stream and
// deregisters presence on a best-effort basis if Mount registered it.
// Safe to call more than once.
func (s *Subscriber) Unmount() {
	s.mu.Lock()
	if s.unmounted || !s.mounted {
		s.mu.Unlock()
		return
	}
	s.unmounted = true
	for _, t := range s.timers {
		t.Stop()
	}
	s.timers = nil
	cancel, done, registered := s.cancel, s.done, s.registered
	s.mu.Unlock()

	cancel()
	if done != nil {
		<-done
	}

	if !registered {
		return
	}
	ctx, stop := context.WithTimeout(context.Background(), 5*time.Second)
	defer stop()
	if _, err := s.presenceCall(ctx, http.MethodDelete); err != nil {
		s.log.Debug().Err(err).Msg("Presence deregistration failed")
	}
}

// Err returns the current error state, nil when healthy.
func (s *Subscriber) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func (s *Subscriber) loadHistory(ctx context.Context) error {
	u := s.endpoint(pathMessages)
	u.RawQuery = url.Values{"limit": {strconv.Itoa(s.opts.HistoryLimit)}}.Encode()

	var msgs []models.Message
	if err := s.getJSON(ctx, http.MethodGet, u.String(), &msgs); err != nil {
		return err
	}
	// History arrives newest first; animate oldest first.
	ordered := make([]models.Message, 0, len(msgs))
	for i := len(msgs) - 1; i >= 0; i-- {
		if !s.markSeen(msgs[i].ID) {
			ordered = append(ordered, msgs[i])
		}
	}
	s.schedule(ordered)
	return nil
}

func (s *Subscriber) openStream(ctx context.Context) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.endpoint(pathStream).String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to open event stream: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("event stream returned status %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/event-stream") {
		resp.Body.Close()
		return nil, fmt.Errorf("event stream returned content type %q", ct)
	}
	return resp.Body, nil
}

// consume dispatches events until the stream ends.
func (s *Subscriber) consume(ctx context.Context, body io.ReadCloser, done chan<- struct{}) {
	defer close(done)
	defer body.Close()

	events := newEventReader(body)
	for {
		ev, err := events.Next()
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			if errors.Is(err, io.EOF) {
				err = ErrStreamClosed
			}
			s.fail(err)
			return
		}
		s.dispatch(ev)
	}
}

func (s *Subscriber) dispatch(ev Event) {
	switch ev.Name {
	case "userCount":
		var count models.PresenceCount
		if err := json.Unmarshal([]byte(ev.Data), &count); err != nil {
			s.log.Warn().Err(err).Msg("Malformed userCount event")
			return
		}
		s.presence(count)
	case "messages":
		var batch []models.Message
		if err := json.Unmarshal([]byte(ev.Data), &batch); err != nil {
			s.log.Warn().Err(err).Msg("Malformed messages event")
			return
		}
		fresh := batch[:0]
		for _, m := range batch {
			if !s.markSeen(m.ID) {
				fresh = append(fresh, m)
			}
		}
		s.schedule(fresh)
	case "connected":
		s.log.Debug().Msg("Event stream connected")
	}
}

// markSeen records id and reports whether it had been seen before.
func (s *Subscriber) markSeen(id string) bool {
	seen, _ := s.seen.ContainsOrAdd(id, struct{}{})
	return seen
}

// schedule forwards msgs to the renderer, the i-th after i*Stagger.
func (s *Subscriber) schedule(msgs []models.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.unmounted {
		return
	}
	for i, m := range msgs {
		m := m
		var t *time.Timer
		t = time.AfterFunc(time.Duration(i)*s.opts.Stagger, func() {
			s.mu.Lock()
			if s.unmounted {
				s.mu.Unlock()
				return
			}
			s.removeTimerLocked(t)
			s.mu.Unlock()
			s.renderer.AddItem(m)
		})
		s.timers = append(s.timers, t)
	}
}

func (s *Subscriber) removeTimerLocked(t *time.Timer) {
	for i, pending := range s.timers {
		if pending == t {
			s.timers = append(s.timers[:i], s.timers[i+1:]...)
			return
		}
	}
}

// presence handles a userCount event: the stream is alive, so any error
// state is cleared.
func (s *Subscriber) presence(count models.PresenceCount) {
	s.mu.Lock()
	s.err = nil
	s.mu.Unlock()
	if s.opts.OnPresence != nil {
		s.opts.OnPresence(count)
	}
}

// reportCount forwards a count that did not arrive over the stream. It says
// nothing about stream health, so a stream error already recorded stays and
// the count is not forwarded.
func (s *Subscriber) reportCount(count models.PresenceCount) {
	s.mu.Lock()
	failed := s.err != nil
	s.mu.Unlock()
	if failed {
		s.log.Debug().Int("count", count.Count).Msg("Presence count dropped, stream already failed")
		return
	}
	if s.opts.OnPresence != nil {
		s.opts.OnPresence(count)
	}
}

func (s *Subscriber) fail(err error) {
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
	s.log.Error().Err(err).Msg("Live stream error")
	if s.opts.OnError != nil {
		s.opts.OnError(err)
	}
}

func (s *Subscriber) presenceCall(ctx context.Context, method string) (models.PresenceCount, error) {
	var count models.PresenceCount
	err := s.getJSON(ctx, method, s.endpoint(pathPresence).String(), &count)
	return count, err
}

func (s *Subscriber) getJSON(ctx context.Context, method, target string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, method, target, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%s %s: status %d", method, req.URL.Path, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s %s: decode: %w", method, req.URL.Path, err)
	}
	return nil
}

func (s *Subscriber) endpoint(path string) *url.URL {
	u := *s.base
	u.Path = strings.TrimRight(u.Path, "/") + path
	return &u
}
