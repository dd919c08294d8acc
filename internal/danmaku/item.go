// AINav - AI Tools Directory with Live Message Wall
// Copyright 2026 AINav contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ainav/ainav

package danmaku

import (
	"time"

	"github.com/rivo/uniseg"

	"github.com/ainav/ainav/internal/models"
)

// Viewport is the visible area items scroll across. Units are whatever the
// Surface draws in: CSS pixels for a browser, cells for a terminal.
type Viewport struct {
	Width  float64
	Height float64
}

// ColorPair is a foreground/background presentation pair.
type ColorPair struct {
	Foreground string `json:"foreground"`
	Background string `json:"background"`
}

// Item is one scrolling message. Its identity is the message id.
type Item struct {
	Message  models.Message
	Offset   float64 // distance from the top of the viewport
	Duration time.Duration
	FontSize float64
	Colors   ColorPair
	Width    float64 // measured rendered width
	Start    time.Time
}

// ID returns the underlying message id.
func (it Item) ID() string {
	return it.Message.ID
}

// Bounds returns the item's horizontal extent at now. An item starts fully
// off the right edge and travels Width+vp.Width over Duration.
func (it Item) Bounds(now time.Time, vp Viewport) (left, right float64) {
	progress := 0.0
	if it.Duration > 0 {
		progress = float64(now.Sub(it.Start)) / float64(it.Duration)
	}
	if progress < 0 {
		progress = 0
	}
	left = vp.Width - progress*(vp.Width+it.Width)
	return left, left + it.Width
}

// IntersectionRatio is the visible fraction of the item's width at now.
func (it Item) IntersectionRatio(now time.Time, vp Viewport) float64 {
	if it.Width <= 0 {
		return 0
	}
	left, right := it.Bounds(now, vp)
	visible := min(right, vp.Width) - max(left, 0)
	if visible <= 0 {
		return 0
	}
	return visible / it.Width
}

// Exited reports whether the item has fully left across the leading (left)
// edge. Items that have not yet entered on the right are not exited.
func (it Item) Exited(now time.Time, vp Viewport) bool {
	_, right := it.Bounds(now, vp)
	return it.IntersectionRatio(now, vp) == 0 && right < 0
}

// MeasureFunc returns the rendered width of text at fontSize.
type MeasureFunc func(text string, fontSize float64) float64

// glyphAspect approximates an average glyph advance as a fraction of the
// font size for a proportional sans-serif face.
const glyphAspect = 0.6

// padding is the horizontal padding of a rendered bubble, in pixels.
const padding = 24

// MeasurePixels estimates the pixel width of a message bubble. Wide
// graphemes (CJK, most emoji) count as two columns.
func MeasurePixels(text string, fontSize float64) float64 {
	return float64(uniseg.StringWidth(text))*fontSize*glyphAspect + padding
}

// MeasureCells returns the terminal column width of text, ignoring font size.
func MeasureCells(text string, _ float64) float64 {
	return float64(uniseg.StringWidth(text))
}
