// AINav - AI Tools Directory with Live Message Wall
// Copyright 2026 AINav contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ainav/ainav

package database

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ainav/ainav/internal/config"
	"github.com/ainav/ainav/internal/logging"
	"github.com/ainav/ainav/internal/metrics"
	"github.com/ainav/ainav/internal/models"
	"github.com/ainav/ainav/internal/validation"
)

const messagesTable = "messages"

// timestampResolution matches DuckDB TIMESTAMP precision.
const timestampResolution = time.Microsecond

// MessageReader is the read side used by the live stream and history API.
type MessageReader interface {
	// FindSince returns messages created strictly after since, oldest first.
	FindSince(ctx context.Context, since time.Time) ([]models.Message, error)
	// Recent returns up to limit messages, newest first.
	Recent(ctx context.Context, limit int) ([]models.Message, error)
}

// Notifier is told about every accepted message.
type Notifier interface {
	Publish(ctx context.Context, msg *models.Message) error
}

// MessageStore persists messages and assigns ids and creation timestamps.
type MessageStore struct {
	db       *DB
	limits   config.MessagesConfig
	notifier Notifier
	now      func() time.Time

	// mu serializes inserts. It is held across the INSERT so commit order
	// matches timestamp order and a poller can never advance past a message
	// that has not committed yet.
	mu   sync.Mutex
	last time.Time
}

// NewMessageStore returns a store over db. notifier may be nil.
func NewMessageStore(ctx context.Context, db *DB, limits config.MessagesConfig, notifier Notifier) (*MessageStore, error) {
	s := &MessageStore{
		db:       db,
		limits:   limits,
		notifier: notifier,
		now:      time.Now,
	}

	ctx, cancel := ensureContext(ctx)
	defer cancel()

	var last sql.NullTime
	if err := db.conn.QueryRowContext(ctx, `SELECT MAX(created_at) FROM messages`).Scan(&last); err != nil {
		return nil, fmt.Errorf("failed to read message high-water mark: %w", err)
	}
	if last.Valid {
		s.last = last.Time.UTC()
	}
	return s, nil
}

// Insert validates, timestamps and persists a new message.
// Content and author are trimmed first; empty values fail with *ValidationError.
func (s *MessageStore) Insert(ctx context.Context, content, author string, isAdmin bool) (*models.Message, error) {
	content = strings.TrimSpace(content)
	author = strings.TrimSpace(author)

	if verr := validation.ValidateFields(
		validation.Field{Name: "content", Value: content, Tag: "required,max=" + strconv.Itoa(s.limits.MaxContentLength)},
		validation.Field{Name: "author", Value: author, Tag: "required,max=" + strconv.Itoa(s.limits.MaxAuthorLength)},
	); verr != nil {
		return nil, &ValidationError{Fields: verr}
	}

	ctx, cancel := ensureContext(ctx)
	defer cancel()

	msg := &models.Message{
		ID:      uuid.New().String(),
		Content: content,
		Author:  author,
		IsAdmin: isAdmin,
	}

	s.mu.Lock()
	msg.CreatedAt = s.nextTimestamp()
	start := time.Now()
	_, err := s.db.conn.ExecContext(ctx,
		`INSERT INTO messages (id, content, author, is_admin, is_pinned, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		msg.ID, msg.Content, msg.Author, msg.IsAdmin, msg.IsPinned, msg.CreatedAt)
	if err == nil {
		s.last = msg.CreatedAt
	}
	s.mu.Unlock()

	metrics.RecordDBQuery("insert", messagesTable, time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("failed to insert message: %w", err)
	}
	metrics.MessagesInserted.Inc()

	if s.notifier != nil {
		// A lost notification only costs latency; the poll timer still finds the row.
		if nerr := s.notifier.Publish(ctx, msg); nerr != nil {
			logging.Ctx(ctx).Warn().Err(nerr).Str("message_id", msg.ID).Msg("Insert notification failed")
		}
	}
	return msg, nil
}

// nextTimestamp returns max(now, last+1µs). Caller holds s.mu.
func (s *MessageStore) nextTimestamp() time.Time {
	ts := s.now().UTC().Truncate(timestampResolution)
	if !ts.After(s.last) {
		ts = s.last.Add(timestampResolution)
	}
	return ts
}

// FindSince returns messages with created_at strictly after since, ascending.
// The result is never nil.
func (s *MessageStore) FindSince(ctx context.Context, since time.Time) ([]models.Message, error) {
	ctx, cancel := ensureContext(ctx)
	defer cancel()

	start := time.Now()
	msgs, err := s.query(ctx, `SELECT id, content, author, is_admin, is_pinned, created_at
		FROM messages WHERE created_at > ? ORDER BY created_at ASC`, since.UTC())
	metrics.RecordDBQuery("find_since", messagesTable, time.Since(start), err)
	return msgs, err
}

// Recent returns up to limit messages, newest first. A non-positive limit
// uses the configured history limit; larger values are clamped.
func (s *MessageStore) Recent(ctx context.Context, limit int) ([]models.Message, error) {
	limit = s.clampLimit(limit)

	ctx, cancel := ensureContext(ctx)
	defer cancel()

	start := time.Now()
	msgs, err := s.query(ctx, `SELECT id, content, author, is_admin, is_pinned, created_at
		FROM messages ORDER BY created_at DESC LIMIT ?`, limit)
	metrics.RecordDBQuery("recent", messagesTable, time.Since(start), err)
	return msgs, err
}

func (s *MessageStore) clampLimit(limit int) int {
	if limit <= 0 {
		return s.limits.HistoryLimit
	}
	if s.limits.MaxHistoryLimit > 0 && limit > s.limits.MaxHistoryLimit {
		return s.limits.MaxHistoryLimit
	}
	return limit
}

func (s *MessageStore) query(ctx context.Context, query string, args ...interface{}) ([]models.Message, error) {
	rows, err := s.db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query messages: %w", err)
	}
	defer closeQuietly(rows)

	msgs := make([]models.Message, 0)
	for rows.Next() {
		var m models.Message
		if err := rows.Scan(&m.ID, &m.Content, &m.Author, &m.IsAdmin, &m.IsPinned, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		m.CreatedAt = m.CreatedAt.UTC()
		msgs = append(msgs, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate messages: %w", err)
	}
	return msgs, nil
}
