// AINav - AI Tools Directory with Live Message Wall
// Copyright 2026 AINav contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ainav/ainav

package api

import (
	"net/http"

	"github.com/ainav/ainav/internal/logging"
	"github.com/ainav/ainav/internal/models"
	"github.com/ainav/ainav/internal/presence"
)

// PresenceJoin registers the caller's origin and returns the new count.
func (h *Handler) PresenceJoin(w http.ResponseWriter, r *http.Request) {
	origin := presence.OriginFromRequest(r)
	count := h.presence.Increment(origin)
	logging.Ctx(r.Context()).Debug().Str("origin", sanitizeLogValue(origin)).Int("count", count).Msg("Presence joined")
	respondJSON(w, r, http.StatusOK, models.PresenceCount{Count: count})
}

// PresenceLeave removes the caller's origin and returns the new count.
// Leaving twice is harmless.
func (h *Handler) PresenceLeave(w http.ResponseWriter, r *http.Request) {
	origin := presence.OriginFromRequest(r)
	count := h.presence.Decrement(origin)
	logging.Ctx(r.Context()).Debug().Str("origin", sanitizeLogValue(origin)).Int("count", count).Msg("Presence left")
	respondJSON(w, r, http.StatusOK, models.PresenceCount{Count: count})
}

// PresenceCount returns the current count without changing it.
func (h *Handler) PresenceCount(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, r, http.StatusOK, models.PresenceCount{Count: h.presence.Count()})
}
