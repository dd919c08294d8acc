// AINav - AI Tools Directory with Live Message Wall
// Copyright 2026 AINav contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ainav/ainav

package api

// RecentMessagesRequest holds the validated query of GET /api/v1/messages.
// The upper bound is applied by the store, which clamps instead of rejecting.
type RecentMessagesRequest struct {
	Limit int `json:"limit" validate:"min=1"`
}

// CreateMessageRequest is the body of POST /api/v1/messages. Content and
// author length limits are configuration driven and checked by the store.
type CreateMessageRequest struct {
	Content string `json:"content"`
	Author  string `json:"author"`
	IsAdmin bool   `json:"isAdmin"`
}
