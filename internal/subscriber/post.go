// AINav - AI Tools Directory with Live Message Wall
// Copyright 2026 AINav contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ainav/ainav

package subscriber

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/goccy/go-json"

	"github.com/ainav/ainav/internal/models"
)

// Draft is a message to post.
type Draft struct {
	Content string `json:"content"`
	Author  string `json:"author,omitempty"`
	IsAdmin bool   `json:"isAdmin,omitempty"`
}

// RejectedError is returned by Post when the server answers with an error
// envelope.
type RejectedError struct {
	Status  int
	Code    string
	Message string
}

func (e *RejectedError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("message rejected: status %d", e.Status)
	}
	return fmt.Sprintf("message rejected: %s: %s", e.Code, e.Message)
}

// Post sends draft to POST /api/v1/messages on baseURL and returns the
// stored message. client may be nil.
func Post(ctx context.Context, client *http.Client, baseURL string, draft Draft) (*models.Message, error) {
	base, err := url.Parse(baseURL)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid base URL %q", baseURL)
	}
	if client == nil {
		client = http.DefaultClient
	}
	base.Path = strings.TrimRight(base.Path, "/") + pathMessages

	body, err := json.Marshal(draft)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, base.String(), bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("POST %s: %w", pathMessages, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		var envelope struct {
			Error *struct {
				Code    string `json:"code"`
				Message string `json:"message"`
			} `json:"error"`
		}
		rejected := &RejectedError{Status: resp.StatusCode}
		if json.NewDecoder(resp.Body).Decode(&envelope) == nil && envelope.Error != nil {
			rejected.Code = envelope.Error.Code
			rejected.Message = envelope.Error.Message
		}
		return nil, rejected
	}

	var msg models.Message
	if err := json.NewDecoder(resp.Body).Decode(&msg); err != nil {
		return nil, fmt.Errorf("POST %s: decode: %w", pathMessages, err)
	}
	return &msg, nil
}
