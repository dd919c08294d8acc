// AINav - AI Tools Directory with Live Message Wall
// Copyright 2026 AINav contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ainav/ainav

package subscriber

import (
	"bufio"
	"errors"
	"io"
	"strings"
)

// maxEventLine bounds a single line. A messages batch is one data line and
// the server caps batch size well below this.
const maxEventLine = 32 << 20

// ErrEventTooLarge is returned when a line exceeds the reader's limit.
var ErrEventTooLarge = errors.New("event stream line too large")

// Event is one dispatched text/event-stream event.
type Event struct {
	Name string // "message" when the stream sent no event field
	Data string
	ID   string
}

// eventReader decodes the text/event-stream format: event, data and id
// fields, ":" comment lines, multi-line data joined with "\n", and a blank
// line as the dispatch boundary. retry is accepted and ignored since the
// subscriber never reconnects.
type eventReader struct {
	br      *bufio.Reader
	maxLine int
	lastID  string
}

func newEventReader(r io.Reader) *eventReader {
	return &eventReader{br: bufio.NewReaderSize(r, 64*1024), maxLine: maxEventLine}
}

// readLine returns the next line without its CRLF or LF terminator. The
// buffer grows as needed up to maxLine. A final line without a terminator
// is reported as io.EOF since it cannot complete an event.
func (r *eventReader) readLine() (string, error) {
	var buf []byte
	for {
		chunk, err := r.br.ReadSlice('\n')
		if len(buf)+len(chunk) > r.maxLine {
			return "", ErrEventTooLarge
		}
		buf = append(buf, chunk...)
		if errors.Is(err, bufio.ErrBufferFull) {
			continue
		}
		if err != nil {
			return "", err
		}
		break
	}
	line := strings.TrimSuffix(string(buf), "\n")
	return strings.TrimSuffix(line, "\r"), nil
}

// Next blocks until a complete event arrives. It returns io.EOF when the
// stream ends cleanly; a partially received event is discarded.
func (r *eventReader) Next() (Event, error) {
	var (
		name    string
		data    strings.Builder
		hasData bool
	)
	for {
		line, err := r.readLine()
		if err != nil {
			return Event{}, err
		}
		if line == "" {
			if !hasData {
				name = ""
				continue
			}
			if name == "" {
				name = "message"
			}
			return Event{Name: name, Data: strings.TrimSuffix(data.String(), "\n"), ID: r.lastID}, nil
		}
		if strings.HasPrefix(line, ":") {
			continue
		}

		field, value, found := strings.Cut(line, ":")
		if found {
			value = strings.TrimPrefix(value, " ")
		}
		switch field {
		case "event":
			name = value
		case "data":
			data.WriteString(value)
			data.WriteByte('\n')
			hasData = true
		case "id":
			if !strings.ContainsRune(value, 0) {
				r.lastID = value
			}
		}
	}
}
