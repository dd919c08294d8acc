// AINav - AI Tools Directory with Live Message Wall
// Copyright 2026 AINav contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ainav/ainav

package api

import (
	"net/http"
	"time"

	"github.com/sony/gobreaker/v2"
)

// breakerReporter is implemented by the circuit-breaker wrapped reader.
type breakerReporter interface {
	State() gobreaker.State
}

// HealthLive handles liveness probe requests.
// Returns 200 OK if the process is alive, regardless of dependencies.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	NewResponseWriter(w, r).Success(map[string]interface{}{
		"alive":  true,
		"uptime": time.Since(h.startTime).Seconds(),
	})
}

// HealthReady handles readiness probe requests.
// Returns 200 only when the database answers a ping, 503 otherwise.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	dbConnected := h.db != nil && h.db.Ping(r.Context()) == nil

	data := map[string]interface{}{
		"database_connected": dbConnected,
		"ready_to_serve":     dbConnected,
		"presence_count":     h.presence.Count(),
		"uptime":             time.Since(h.startTime).Seconds(),
	}
	if br, ok := h.reader.(breakerReporter); ok {
		data["read_circuit"] = br.State().String()
	}

	rw := NewResponseWriter(w, r)
	if !dbConnected {
		rw.ErrorWithDetails(http.StatusServiceUnavailable, ErrCodeServiceUnavailable, "Database not reachable", data)
		return
	}
	rw.Success(data)
}
