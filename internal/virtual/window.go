// Package virtual computes which slice of a fixed-height list intersects the
// viewport.
package virtual

import (
	"time"

	"github.com/angelmondragon/spesa/pkg/config"
)

// FrameInterval is the minimum spacing between two scroll recomputations.
const FrameInterval = 16 * time.Millisecond

// Range is the half-open index interval [Start, End).
type Range struct {
	Start int
	End   int
}

func (r Range) Len() int {
	if r.End <= r.Start {
		return 0
	}
	return r.End - r.Start
}

func (r Range) Contains(i int) bool {
	return i >= r.Start && i < r.End
}

// ComputeVisible returns the indexes intersecting the viewport, widened by
// buffer items on each side.
//
//	start = max(0, floor(scrollOffset/itemHeight) - buffer)
//	end   = min(itemCount, ceil((scrollOffset+viewportHeight)/itemHeight) + buffer)
func ComputeVisible(scrollOffset, viewportHeight, itemHeight, itemCount, buffer int) Range {
	if itemCount <= 0 || itemHeight <= 0 {
		return Range{}
	}
	scrollOffset = max(0, scrollOffset)
	viewportHeight = max(0, viewportHeight)
	buffer = max(0, buffer)

	start := max(0, scrollOffset/itemHeight-buffer)
	end := min(itemCount, ceilDiv(scrollOffset+viewportHeight, itemHeight)+buffer)
	if start > end {
		start = end
	}
	return Range{Start: start, End: end}
}

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}

// MaxOffset is the largest scroll offset that still fills the viewport.
func MaxOffset(itemCount, stride, viewportHeight int) int {
	return max(0, itemCount*stride-viewportHeight)
}

// ClampOffset keeps offset inside [0, MaxOffset].
func ClampOffset(offset, itemCount, stride, viewportHeight int) int {
	return min(max(0, offset), MaxOffset(itemCount, stride, viewportHeight))
}

// Layout holds the two fixed row geometries and the width that switches
// between them. Item heights are never measured.
type Layout struct {
	Breakpoint        int
	ItemHeight        int
	ItemHeightCompact int
	Spacing           int
	SpacingCompact    int
	Buffer            int
}

func NewLayout(cfg config.ViewConfig) Layout {
	return Layout{
		Breakpoint:        cfg.Breakpoint,
		ItemHeight:        cfg.ItemHeight,
		ItemHeightCompact: cfg.ItemHeightCompact,
		Spacing:           cfg.Spacing,
		SpacingCompact:    cfg.SpacingCompact,
		Buffer:            cfg.Buffer,
	}
}

// Metrics are the geometry in effect for one viewport width.
type Metrics struct {
	ItemHeight int
	Spacing    int
	Buffer     int
	Compact    bool
}

// Stride is the distance between the tops of two consecutive items.
func (m Metrics) Stride() int {
	return m.ItemHeight + m.Spacing
}

// For selects the compact geometry below the breakpoint.
func (l Layout) For(width int) Metrics {
	if width < l.Breakpoint {
		return Metrics{ItemHeight: l.ItemHeightCompact, Spacing: l.SpacingCompact, Buffer: l.Buffer, Compact: true}
	}
	return Metrics{ItemHeight: l.ItemHeight, Spacing: l.Spacing, Buffer: l.Buffer}
}

// Visible runs ComputeVisible with the stride of m.
func (m Metrics) Visible(scrollOffset, viewportHeight, itemCount int) Range {
	return ComputeVisible(scrollOffset, viewportHeight, m.Stride(), itemCount, m.Buffer)
}
