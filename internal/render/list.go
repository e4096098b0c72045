package render

import (
	"context"

	"github.com/angelmondragon/spesa/internal/virtual"
)

// List is the single list component behind every product and cart view. With
// virtualization on only the window around the viewport is mounted; off, the
// whole sequence is.
type List struct {
	layout     virtual.Layout
	virtualize bool
	renderer   *Renderer
	container  *Container

	items        []Item
	width        int
	height       int
	offset       int
	headerHeight int
	window       virtual.Range
}

func NewList(layout virtual.Layout, virtualize bool, r *Renderer) *List {
	return &List{layout: layout, virtualize: virtualize, renderer: r, container: NewContainer()}
}

// SetItems swaps the derived sequence and scrolls back to the top.
func (l *List) SetItems(items []Item) {
	l.items = items
	l.offset = 0
}

// Replace swaps the sequence keeping the scroll position when possible.
func (l *List) Replace(items []Item) {
	l.items = items
	l.offset = l.clamp(l.offset)
}

func (l *List) Resize(width, height int) {
	l.width = width
	l.height = max(0, height)
	l.offset = l.clamp(l.offset)
}

// SetHeader records the height of the sticky header drawn above the list.
func (l *List) SetHeader(rows int) {
	l.headerHeight = max(0, rows)
}

// ScrollBy moves the viewport and reports whether the offset changed.
func (l *List) ScrollBy(delta int) bool {
	next := l.clamp(l.offset + delta)
	if next == l.offset {
		return false
	}
	l.offset = next
	return true
}

// ScrollTo moves the viewport to offset.
func (l *List) ScrollTo(offset int) bool {
	next := l.clamp(offset)
	if next == l.offset {
		return false
	}
	l.offset = next
	return true
}

// Reveal scrolls the least amount needed to show item index i.
func (l *List) Reveal(i int) bool {
	m := l.Metrics()
	top := i * m.Stride()
	switch {
	case top < l.offset:
		return l.ScrollTo(top)
	case top+m.ItemHeight > l.offset+l.height:
		return l.ScrollTo(top + m.ItemHeight - l.height)
	}
	return false
}

func (l *List) clamp(offset int) int {
	return virtual.ClampOffset(offset, len(l.items), l.Metrics().Stride(), l.height)
}

func (l *List) Metrics() virtual.Metrics {
	return l.layout.For(l.width)
}

// Refresh recomputes the window and patches the node tree.
func (l *List) Refresh(ctx context.Context) Stats {
	m := l.Metrics()
	l.window = m.Visible(l.offset, l.height, len(l.items))
	s := SliceOf(l.items, l.window, m, l.virtualize)
	s.HeaderHeight = l.headerHeight
	return l.renderer.Render(ctx, s, l.container)
}

// Visible returns the mounted nodes inside the viewport.
func (l *List) Visible() []*Node {
	return Paint(l.container, l.offset, l.height)
}

func (l *List) Window() virtual.Range { return l.window }
func (l *List) Offset() int { return l.offset }
func (l *List) Len() int { return len(l.items) }
func (l *List) Container() *Container { return l.container }
func (l *List) Virtualized() bool { return l.virtualize }
