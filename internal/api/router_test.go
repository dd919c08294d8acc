// AINav - AI Tools Directory with Live Message Wall
// Copyright 2026 AINav contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ainav/ainav

package api

import (
	"bufio"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/ainav/ainav/internal/config"
	"github.com/ainav/ainav/internal/database"
	"github.com/ainav/ainav/internal/models"
	"github.com/ainav/ainav/internal/notify"
	"github.com/ainav/ainav/internal/presence"
	"github.com/ainav/ainav/internal/stream"
)

// testDBSemaphore serializes DuckDB use across tests in this package.
var testDBSemaphore = make(chan struct{}, 1)

type testStack struct {
	server   *httptest.Server
	store    *database.MessageStore
	registry *presence.Registry
}

// setupTestServer wires the same stack as cmd/server against an in-memory
// database with short stream intervals.
func setupTestServer(t *testing.T) *testStack {
	t.Helper()

	testDBSemaphore <- struct{}{}
	t.Cleanup(func() { <-testDBSemaphore })

	cfg := config.Config{
		Messages: config.MessagesConfig{
			HistoryLimit:     10,
			MaxHistoryLimit:  100,
			MaxContentLength: 500,
			MaxAuthorLength:  50,
		},
		Security: config.SecurityConfig{
			RateLimitDisabled: true,
			CORSOrigins:       []string{"*"},
		},
	}

	db, err := database.New(&config.DatabaseConfig{
		Path:                   ":memory:",
		MaxMemory:              "256MB",
		Threads:                1,
		PreserveInsertionOrder: true,
	})
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	notifier := notify.New(nil)
	t.Cleanup(func() { _ = notifier.Close() })

	store, err := database.NewMessageStore(context.Background(), db, cfg.Messages, notifier)
	if err != nil {
		t.Fatalf("NewMessageStore: %v", err)
	}
	reader := database.NewBreakerStore(store, database.BreakerConfig{Timeout: time.Second})
	registry := presence.NewRegistry()

	streamHandler := stream.NewHandler(reader, stream.FromCounter(registry), notifier, stream.Config{
		PresenceInterval: 50 * time.Millisecond,
		MessageInterval:  50 * time.Millisecond,
	})

	handler := NewHandler(&cfg, db, store, reader, registry, streamHandler)
	router := NewRouter(handler, NewChiMiddlewareFromConfig(cfg.Security))

	srv := httptest.NewServer(router.SetupChi())
	t.Cleanup(srv.Close)

	return &testStack{server: srv, store: store, registry: registry}
}

func doRequest(t *testing.T, method, url, body string, header map[string]string) *http.Response {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, url, r)
	if err != nil {
		t.Fatal(err)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range header {
		req.Header.Set(k, v)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return v
}

func TestRouter_HealthEndpoints(t *testing.T) {
	stack := setupTestServer(t)

	for _, path := range []string{"/api/v1/health/live", "/api/v1/health/ready"} {
		resp := doRequest(t, http.MethodGet, stack.server.URL+path, "", nil)
		if resp.StatusCode != http.StatusOK {
			t.Errorf("%s status = %d, want 200", path, resp.StatusCode)
		}
		envelope := decodeBody[APIResponse](t, resp)
		if !envelope.Success {
			t.Errorf("%s success = false", path)
		}
	}
}

func TestRouter_Presence(t *testing.T) {
	stack := setupTestServer(t)
	url := stack.server.URL + "/api/v1/presence"

	steps := []struct {
		method string
		origin string
		want   int
	}{
		{http.MethodPost, "203.0.113.1", 1},
		{http.MethodPost, "203.0.113.1", 1},
		{http.MethodPost, "203.0.113.2, 10.0.0.1", 2},
		{http.MethodGet, "", 2},
		{http.MethodDelete, "203.0.113.1", 1},
		{http.MethodDelete, "203.0.113.1", 1},
		{http.MethodDelete, "203.0.113.2", 0},
	}
	for i, step := range steps {
		header := map[string]string{}
		if step.origin != "" {
			header["X-Forwarded-For"] = step.origin
		}
		resp := doRequest(t, step.method, url, "", header)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("step %d: status = %d", i, resp.StatusCode)
		}
		if got := decodeBody[models.PresenceCount](t, resp); got.Count != step.want {
			t.Errorf("step %d (%s %s): count = %d, want %d", i, step.method, step.origin, got.Count, step.want)
		}
	}
}

func TestRouter_CreateMessage(t *testing.T) {
	stack := setupTestServer(t)
	url := stack.server.URL + "/api/v1/messages"

	resp := doRequest(t, http.MethodPost, url, `{"content":"  hello wall  ","author":"alice"}`, nil)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, want 201", resp.StatusCode)
	}
	msg := decodeBody[models.Message](t, resp)
	if msg.ID == "" || msg.Content != "hello wall" || msg.Author != "alice" || msg.CreatedAt.IsZero() {
		t.Errorf("created message = %+v", msg)
	}
}

func TestRouter_CreateMessage_Rejected(t *testing.T) {
	stack := setupTestServer(t)
	url := stack.server.URL + "/api/v1/messages"

	tests := []struct {
		name   string
		body   string
		status int
		code   string
	}{
		{"empty content", `{"content":"   ","author":"alice"}`, http.StatusBadRequest, ErrCodeValidationFailed},
		{"missing author", `{"content":"hi"}`, http.StatusBadRequest, ErrCodeValidationFailed},
		{"content too long", `{"content":"` + strings.Repeat("x", 501) + `","author":"alice"}`, http.StatusBadRequest, ErrCodeValidationFailed},
		{"malformed json", `{"content":`, http.StatusBadRequest, ErrCodeBadRequest},
		{"oversized body", `{"content":"` + strings.Repeat("x", maxBodyBytes) + `"}`, http.StatusRequestEntityTooLarge, ErrCodePayloadTooLarge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := doRequest(t, http.MethodPost, url, tt.body, nil)
			if resp.StatusCode != tt.status {
				t.Fatalf("status = %d, want %d", resp.StatusCode, tt.status)
			}
			envelope := decodeBody[APIResponse](t, resp)
			if envelope.Success || envelope.Error == nil || envelope.Error.Code != tt.code {
				t.Errorf("envelope = %+v, want error code %s", envelope, tt.code)
			}
		})
	}
}

func TestRouter_RecentMessages(t *testing.T) {
	stack := setupTestServer(t)
	ctx := context.Background()
	for _, content := range []string{"one", "two", "three"} {
		if _, err := stack.store.Insert(ctx, content, "bob", false); err != nil {
			t.Fatal(err)
		}
	}

	resp := doRequest(t, http.MethodGet, stack.server.URL+"/api/v1/messages?limit=2", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	msgs := decodeBody[[]models.Message](t, resp)
	if len(msgs) != 2 || msgs[0].Content != "three" || msgs[1].Content != "two" {
		t.Errorf("messages = %+v, want [three two]", msgs)
	}

	// Unparseable limit falls back to the default.
	resp = doRequest(t, http.MethodGet, stack.server.URL+"/api/v1/messages?limit=abc", "", nil)
	if msgs := decodeBody[[]models.Message](t, resp); len(msgs) != 3 {
		t.Errorf("default limit returned %d messages, want 3", len(msgs))
	}

	resp = doRequest(t, http.MethodGet, stack.server.URL+"/api/v1/messages?limit=0", "", nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("limit=0 status = %d, want 400", resp.StatusCode)
	}
}

func TestRouter_MetricsAndNotFound(t *testing.T) {
	stack := setupTestServer(t)

	resp := doRequest(t, http.MethodGet, stack.server.URL+"/metrics", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Errorf("/metrics status = %d, want 200", resp.StatusCode)
	}

	resp = doRequest(t, http.MethodGet, stack.server.URL+"/api/v1/nope", "", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("unknown route status = %d, want 404", resp.StatusCode)
	}
}

// readEvent returns the next SSE event name and data line.
func readEvent(t *testing.T, r *bufio.Reader) (string, string) {
	t.Helper()
	var name, data string
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			t.Fatalf("reading stream: %v", err)
		}
		line = strings.TrimRight(line, "\r\n")
		switch {
		case line == "":
			if name != "" || data != "" {
				return name, data
			}
		case strings.HasPrefix(line, "event: "):
			name = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			data = strings.TrimPrefix(line, "data: ")
		}
	}
}

func TestE2E_StreamDeliversInsertedMessage(t *testing.T) {
	stack := setupTestServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, stack.server.URL+"/api/v1/stream", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("Content-Type = %q", ct)
	}
	events := bufio.NewReader(resp.Body)
	if name, _ := readEvent(t, events); name != stream.EventConnected {
		t.Fatalf("first event = %q, want connected", name)
	}

	post := doRequest(t, http.MethodPost, stack.server.URL+"/api/v1/messages", `{"content":"hello","author":"alice"}`, nil)
	if post.StatusCode != http.StatusCreated {
		t.Fatalf("insert status = %d", post.StatusCode)
	}

	for {
		name, data := readEvent(t, events)
		if name != stream.EventMessages {
			continue
		}
		var batch []models.Message
		if err := json.Unmarshal([]byte(data), &batch); err != nil {
			t.Fatalf("messages payload %q: %v", data, err)
		}
		if len(batch) != 1 || batch[0].Content != "hello" {
			t.Fatalf("messages event = %+v, want exactly one item with content hello", batch)
		}
		return
	}
}
