// AINav - AI Tools Directory with Live Message Wall
// Copyright 2026 AINav contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ainav/ainav

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ainav/ainav/internal/logging"
)

func TestPrometheusMetrics_StatusPassthrough(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		status int
	}{
		{"ok", http.StatusOK},
		{"created", http.StatusCreated},
		{"server error", http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			handler := PrometheusMetrics(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			})
			rec := httptest.NewRecorder()
			handler(rec, httptest.NewRequest(http.MethodGet, "/api/v1/presence", nil))
			if rec.Code != tt.status {
				t.Errorf("status = %d, want %d", rec.Code, tt.status)
			}
		})
	}
}

func TestPrometheusMetrics_ForwardsFlush(t *testing.T) {
	t.Parallel()

	var flusherOK bool
	handler := PrometheusMetrics(func(w http.ResponseWriter, r *http.Request) {
		var f http.Flusher
		f, flusherOK = w.(http.Flusher)
		if flusherOK {
			w.Write([]byte("data: x\n\n"))
			f.Flush()
		}
	})

	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodGet, "/api/v1/stream", nil))

	if !flusherOK {
		t.Fatal("wrapped writer must implement http.Flusher")
	}
	if !rec.Flushed {
		t.Error("expected Flush to reach the underlying recorder")
	}
}

func TestRequestID(t *testing.T) {
	t.Parallel()

	t.Run("generates id", func(t *testing.T) {
		t.Parallel()
		var seen string
		handler := RequestID(func(w http.ResponseWriter, r *http.Request) {
			seen = logging.RequestIDFromContext(r.Context())
		})
		rec := httptest.NewRecorder()
		handler(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		if len(seen) != 36 {
			t.Errorf("expected UUID in context, got %q", seen)
		}
		if rec.Header().Get(RequestIDHeader) != seen {
			t.Error("response header should match context id")
		}
	})

	t.Run("keeps upstream id", func(t *testing.T) {
		t.Parallel()
		var seen string
		handler := RequestID(func(w http.ResponseWriter, r *http.Request) {
			seen = logging.RequestIDFromContext(r.Context())
		})
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(RequestIDHeader, "upstream-1")
		handler(httptest.NewRecorder(), req)

		if seen != "upstream-1" {
			t.Errorf("request id = %q, want upstream-1", seen)
		}
	})
}
