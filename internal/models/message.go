// AINav - AI Tools Directory with Live Message Wall
// Copyright 2026 AINav contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ainav/ainav

package models

import "time"

// Message is a board entry. It is immutable once the store returns it.
type Message struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	Author    string    `json:"author"`
	IsAdmin   bool      `json:"isAdmin"`
	IsPinned  bool      `json:"isPinned"`
	CreatedAt time.Time `json:"createdAt"` // server-assigned, strictly increasing
}

// PresenceCount is the body of presence responses and userCount events.
// Error is set only on the degraded event sent when the count could not be read.
type PresenceCount struct {
	Count int  `json:"count"`
	Error bool `json:"error,omitempty"`
}

// NewMessageRequest is the body of POST /api/v1/messages. Length limits are
// configuration driven and checked by the store.
type NewMessageRequest struct {
	Content string `json:"content"`
	Author  string `json:"author"`
	IsAdmin bool   `json:"isAdmin"`
}
