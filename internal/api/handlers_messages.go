// AINav - AI Tools Directory with Live Message Wall
// Copyright 2026 AINav contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ainav/ainav

package api

import (
	"errors"
	"net/http"

	"github.com/ainav/ainav/internal/database"
	"github.com/ainav/ainav/internal/logging"
)

// RecentMessages returns up to limit messages, newest first.
//
// Query: limit (default messages.history_limit, clamped to
// messages.max_history_limit). limit < 1 is a validation error.
func (h *Handler) RecentMessages(w http.ResponseWriter, r *http.Request) {
	req := RecentMessagesRequest{
		Limit: getIntParam(r, "limit", h.cfg.Messages.HistoryLimit),
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		NewResponseWriter(w, r).ValidationError(apiErr.Message, apiErr.Details)
		return
	}

	msgs, err := h.reader.Recent(r.Context(), req.Limit)
	if err != nil {
		if errors.Is(err, database.ErrStoreUnavailable) {
			logging.Ctx(r.Context()).Warn().Err(err).Msg("History read rejected by open circuit")
			NewResponseWriter(w, r).ServiceUnavailable("Message store temporarily unavailable")
			return
		}
		WriteDatabaseError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, msgs)
}

// CreateMessage inserts a message and returns it with 201.
// Rejected input yields 400 VALIDATION_FAILED with per-field details.
func (h *Handler) CreateMessage(w http.ResponseWriter, r *http.Request) {
	var req CreateMessageRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	msg, err := h.writer.Insert(r.Context(), req.Content, req.Author, req.IsAdmin)
	if err != nil {
		var verr *database.ValidationError
		if errors.As(err, &verr) {
			apiErr := verr.APIError()
			NewResponseWriter(w, r).ValidationError(apiErr.Message, apiErr.Details)
			return
		}
		WriteDatabaseError(w, r, err)
		return
	}

	logging.Ctx(r.Context()).Info().
		Str("message_id", msg.ID).
		Bool("is_admin", msg.IsAdmin).
		Int("length", len([]rune(msg.Content))).
		Msg("Message created")
	respondJSON(w, r, http.StatusCreated, msg)
}

// Stream serves the Server-Sent Events stream.
func (h *Handler) Stream(w http.ResponseWriter, r *http.Request) {
	h.stream.ServeHTTP(w, r)
}
