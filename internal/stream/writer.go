// AINav - AI Tools Directory with Live Message Wall
// Copyright 2026 AINav contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ainav/ainav

package stream

import (
	"bufio"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/goccy/go-json"

	"github.com/ainav/ainav/internal/metrics"
)

// Event names on the wire.
const (
	EventConnected = "connected"
	EventUserCount = "userCount"
	EventMessages  = "messages"
)

// eventWriter frames text/event-stream events and flushes after each one.
type eventWriter struct {
	w       *bufio.Writer
	flusher http.Flusher
	written int
}

func newEventWriter(w io.Writer, flusher http.Flusher) *eventWriter {
	return &eventWriter{w: bufio.NewWriter(w), flusher: flusher}
}

// writeText emits an event whose data is plain text. Embedded newlines
// become separate data lines.
func (e *eventWriter) writeText(event, data string) error {
	if _, err := fmt.Fprintf(e.w, "event: %s\n", event); err != nil {
		return err
	}
	for _, line := range strings.Split(data, "\n") {
		if _, err := fmt.Fprintf(e.w, "data: %s\n", line); err != nil {
			return err
		}
	}
	if err := e.w.WriteByte('\n'); err != nil {
		return err
	}
	if err := e.w.Flush(); err != nil {
		return err
	}
	e.flusher.Flush()
	e.written++
	metrics.RecordSSEEvent(event)
	return nil
}

// writeJSON emits an event whose data is v encoded as a single JSON line.
func (e *eventWriter) writeJSON(event string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s event: %w", event, err)
	}
	return e.writeText(event, string(data))
}
