package render

import (
	"cmp"
	"context"
	"slices"

	"github.com/angelmondragon/spesa/internal/virtual"
	"github.com/angelmondragon/spesa/pkg/logger"
	"github.com/angelmondragon/spesa/pkg/metrics"
)

// Item is one element of the derived sequence.
type Item struct {
	Key     int64
	Payload any
}

// Slice is the visible part of the sequence plus what is needed to place it.
type Slice struct {
	Items        []Item
	Start        int
	Total        int
	Metrics      virtual.Metrics
	HeaderHeight int
}

// SliceOf cuts r out of items. With virtualize off the whole sequence is
// mounted.
func SliceOf(items []Item, r virtual.Range, m virtual.Metrics, virtualize bool) Slice {
	if !virtualize {
		r = virtual.Range{Start: 0, End: len(items)}
	}
	r.End = min(r.End, len(items))
	r.Start = min(max(0, r.Start), r.End)
	return Slice{Items: items[r.Start:r.End], Start: r.Start, Total: len(items), Metrics: m}
}

// Binder attaches the interaction handlers of a freshly created node.
type Binder func(item Item, n *Node) error

// Stats counts the nodes touched by one pass.
type Stats struct {
	Removed int
	Added   int
}

type Renderer struct {
	bind    Binder
	logg    *logger.Logger
	metrics *metrics.ClientMetrics
}

type Option func(*Renderer)

func WithLogger(logg *logger.Logger) Option {
	return func(r *Renderer) { r.logg = logg }
}

func WithMetrics(m *metrics.ClientMetrics) Option {
	return func(r *Renderer) { r.metrics = m }
}

func New(bind Binder, opts ...Option) *Renderer {
	r := &Renderer{bind: bind, logg: logger.Nop()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Render replaces the item nodes of c with fresh nodes for s. Nodes without
// the item marker are left in place.
func (r *Renderer) Render(ctx context.Context, s Slice, c *Container) Stats {
	var stats Stats
	kept := c.Children[:0]
	for _, n := range c.Children {
		if n.Marker == ItemMarker {
			stats.Removed++
			continue
		}
		kept = append(kept, n)
	}
	// drop references held past the new length
	for i := len(kept); i < len(c.Children); i++ {
		c.Children[i] = nil
	}
	c.Children = kept

	stride := s.Metrics.Stride()
	for i, item := range s.Items {
		idx := s.Start + i
		n := &Node{
			Kind:    KindItem,
			Marker:  ItemMarker,
			Key:     item.Key,
			Index:   idx,
			Top:     idx * stride,
			Height:  s.Metrics.ItemHeight,
			Payload: item.Payload,
		}
		if r.bind != nil {
			if err := r.bind(item, n); err != nil {
				r.logg.Warn(r.logg.WithField(ctx, "key", item.Key), "binding item handlers: "+err.Error())
			}
		}
		c.Children = append(c.Children, n)
		stats.Added++
	}

	c.Height = s.Total * stride
	if c.top != nil {
		c.top.Height = max(0, s.HeaderHeight)
	}
	if c.bottom != nil {
		end := s.Start + len(s.Items)
		c.bottom.Top = end * stride
		c.bottom.Height = max(0, s.Total-end) * stride
	}

	r.metrics.ObserveRender(stats.Added)
	return stats
}

// Paint returns the item nodes intersecting [offset, offset+height) ordered
// by position.
func Paint(c *Container, offset, height int) []*Node {
	out := make([]*Node, 0)
	for _, n := range c.Children {
		if n.Marker != ItemMarker {
			continue
		}
		if n.Bottom() > offset && n.Top < offset+height {
			out = append(out, n)
		}
	}
	slices.SortStableFunc(out, func(a, b *Node) int { return cmp.Compare(a.Top, b.Top) })
	return out
}
