// AINav - AI Tools Directory with Live Message Wall
// Copyright 2026 AINav contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ainav/ainav

package subscriber

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestPost(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		status     int
		body       string
		wantID     string
		wantCode   string
		wantStatus int
	}{
		{
			name:   "created",
			status: http.StatusCreated,
			body:   `{"id":"m1","content":"hi","author":"Ada","isAdmin":false,"isPinned":false,"createdAt":"2026-01-01T00:00:00Z"}`,
			wantID: "m1",
		},
		{
			name:       "validation envelope",
			status:     http.StatusBadRequest,
			body:       `{"success":false,"error":{"code":"VALIDATION_FAILED","message":"content is required"}}`,
			wantCode:   "VALIDATION_FAILED",
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "bare failure",
			status:     http.StatusBadGateway,
			body:       `upstream down`,
			wantStatus: http.StatusBadGateway,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var gotBody string
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodPost || r.URL.Path != pathMessages {
					http.NotFound(w, r)
					return
				}
				b, _ := io.ReadAll(r.Body)
				gotBody = string(b)
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			msg, err := Post(t.Context(), srv.Client(), srv.URL, Draft{Content: "hi", Author: "Ada"})
			if !strings.Contains(gotBody, `"content":"hi"`) {
				t.Errorf("request body = %s", gotBody)
			}

			if tt.wantID != "" {
				if err != nil {
					t.Fatalf("Post: %v", err)
				}
				if msg.ID != tt.wantID {
					t.Errorf("ID = %q, want %q", msg.ID, tt.wantID)
				}
				return
			}

			var rejected *RejectedError
			if !errors.As(err, &rejected) {
				t.Fatalf("err = %v, want *RejectedError", err)
			}
			if rejected.Status != tt.wantStatus || rejected.Code != tt.wantCode {
				t.Errorf("rejected = %+v", rejected)
			}
		})
	}
}

func TestPost_InvalidBaseURL(t *testing.T) {
	t.Parallel()
	if _, err := Post(t.Context(), nil, "localhost", Draft{Content: "x"}); err == nil {
		t.Error("expected error for URL without scheme")
	}
}
