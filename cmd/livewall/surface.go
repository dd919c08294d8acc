// AINav - AI Tools Directory with Live Message Wall
// Copyright 2026 AINav contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ainav/ainav

package main

import (
	"fmt"
	"io"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/rivo/uniseg"

	"github.com/ainav/ainav/internal/danmaku"
	"github.com/ainav/ainav/internal/models"
)

const (
	ansiHome      = "\x1b[H"
	ansiClear     = "\x1b[2J"
	ansiHideCur   = "\x1b[?25l"
	ansiShowCur   = "\x1b[?25h"
	statusRows    = 1
	continuation  = "\x00" // right half of a wide grapheme
	blankCell     = " "
	statusPending = "connecting"
)

// terminalSurface redraws the whole wall on every frame. The first row is a
// status line; items occupy the rows below it.
type terminalSurface struct {
	out io.Writer

	mu      sync.Mutex
	vp      danmaku.Viewport
	count   models.PresenceCount
	status  string // shown until the first count arrives
	failure string // the stream is gone; never cleared
	started bool
}

func newTerminalSurface(out io.Writer, vp danmaku.Viewport) *terminalSurface {
	return &terminalSurface{out: out, vp: vp, status: statusPending}
}

// Show and Hide are no-ops: the terminal is repainted from the live set on
// each frame.
func (t *terminalSurface) Show(danmaku.Item) {}
func (t *terminalSurface) Hide(string)      {}

func (t *terminalSurface) setPresence(c models.PresenceCount) {
	t.mu.Lock()
	t.count = c
	t.status = ""
	t.mu.Unlock()
}

func (t *terminalSurface) setViewport(vp danmaku.Viewport) {
	t.mu.Lock()
	t.vp = vp
	t.started = false
	t.mu.Unlock()
}

// setFailure records a terminal stream error. The client does not
// reconnect, so later counts never hide it.
func (t *terminalSurface) setFailure(s string) {
	t.mu.Lock()
	t.failure = s
	t.mu.Unlock()
}

func (t *terminalSurface) Frame(now time.Time, items []danmaku.Item) {
	t.mu.Lock()
	defer t.mu.Unlock()

	var b strings.Builder
	if !t.started {
		b.WriteString(ansiHideCur)
		b.WriteString(ansiClear)
		t.started = true
	}
	b.WriteString(ansiHome)
	for i, line := range t.renderLocked(now, items) {
		if i > 0 {
			b.WriteString("\r\n")
		}
		b.WriteString(line)
	}
	_, _ = io.WriteString(t.out, b.String())
}

// restore shows the cursor and clears the wall.
func (t *terminalSurface) restore() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.started {
		_, _ = io.WriteString(t.out, ansiClear+ansiHome+ansiShowCur)
	}
}

func (t *terminalSurface) renderLocked(now time.Time, items []danmaku.Item) []string {
	width := int(t.vp.Width)
	rows := int(t.vp.Height)
	if width <= 0 || rows <= 0 {
		return nil
	}

	lines := make([]string, 0, rows+statusRows)
	lines = append(lines, fitWidth(t.statusLineLocked(), width))

	grid := make([][]string, rows)
	for r := range grid {
		grid[r] = make([]string, width)
		for c := range grid[r] {
			grid[r][c] = blankCell
		}
	}
	for _, item := range items {
		row := int(math.Round(item.Offset))
		if row < 0 || row >= rows {
			continue
		}
		left, _ := item.Bounds(now, t.vp)
		placeText(grid[row], int(math.Floor(left)), item.Message.Content)
	}
	for _, cells := range grid {
		var b strings.Builder
		for _, cell := range cells {
			if cell != continuation {
				b.WriteString(cell)
			}
		}
		lines = append(lines, b.String())
	}
	return lines
}

func (t *terminalSurface) statusLineLocked() string {
	switch {
	case t.failure != "":
		return fmt.Sprintf(" AINav live wall | %s", t.failure)
	case t.status != "":
		return fmt.Sprintf(" AINav live wall | %s", t.status)
	case t.count.Error:
		return " AINav live wall | viewers: ?"
	default:
		return fmt.Sprintf(" AINav live wall | viewers: %d", t.count.Count)
	}
}

// placeText writes text into cells starting at column col. Graphemes that
// would straddle either edge are dropped.
func placeText(cells []string, col int, text string) {
	g := uniseg.NewGraphemes(text)
	for g.Next() {
		w := g.Width()
		if w <= 0 {
			continue
		}
		if col >= 0 && col+w <= len(cells) {
			// Never leave half of a wide grapheme behind.
			if cells[col] == continuation && col > 0 {
				cells[col-1] = blankCell
			}
			if end := col + w; end < len(cells) && cells[end] == continuation {
				cells[end] = blankCell
			}
			cells[col] = g.Str()
			for i := 1; i < w; i++ {
				cells[col+i] = continuation
			}
		}
		col += w
		if col >= len(cells) {
			return
		}
	}
}

// fitWidth pads or clips s to exactly width columns so the status line
// never wraps onto the wall.
func fitWidth(s string, width int) string {
	var b strings.Builder
	used := 0
	g := uniseg.NewGraphemes(s)
	for g.Next() {
		w := g.Width()
		if used+w > width {
			break
		}
		b.WriteString(g.Str())
		used += w
	}
	if used < width {
		b.WriteString(strings.Repeat(blankCell, width-used))
	}
	return b.String()
}
