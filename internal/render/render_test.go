package render

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/spesa/internal/virtual"
)

var wide = virtual.Metrics{ItemHeight: 4, Spacing: 1, Buffer: 2}

func items(n int) []Item {
	out := make([]Item, n)
	for i := range out {
		out[i] = Item{Key: int64(i + 100), Payload: i}
	}
	return out
}

func TestRenderKeepsSpacersAndReplacesItems(t *testing.T) {
	ctx := context.Background()
	r := New(nil)
	c := NewContainer()
	extra := &Node{Kind: KindSpacer, Marker: "sticky"}
	c.Children = append(c.Children, extra)

	all := items(50)
	stats := r.Render(ctx, SliceOf(all, virtual.Range{Start: 0, End: 6}, wide, true), c)
	assert.Equal(t, Stats{Removed: 0, Added: 6}, stats)

	stats = r.Render(ctx, SliceOf(all, virtual.Range{Start: 10, End: 14}, wide, true), c)
	assert.Equal(t, Stats{Removed: 6, Added: 4}, stats)

	assert.Contains(t, c.Children, c.TopSpacer())
	assert.Contains(t, c.Children, c.BottomSpacer())
	assert.Contains(t, c.Children, extra)
	require.Len(t, c.Items(), 4)
	assert.Len(t, c.Children, 7)
}

func TestRenderPositionsByGlobalIndex(t *testing.T) {
	c := NewContainer()
	all := items(30)
	s := SliceOf(all, virtual.Range{Start: 12, End: 15}, wide, true)
	s.HeaderHeight = 3
	New(nil).Render(context.Background(), s, c)

	got := c.Items()
	require.Len(t, got, 3)
	for i, n := range got {
		idx := 12 + i
		assert.Equal(t, idx, n.Index)
		assert.Equal(t, idx*5, n.Top)
		assert.Equal(t, 4, n.Height)
		assert.Equal(t, int64(idx+100), n.Key)
	}
	assert.Equal(t, 30*5, c.Height, "height covers the full logical list")
	assert.Equal(t, 3, c.TopSpacer().Height)
	assert.Equal(t, 15*5, c.BottomSpacer().Top)
	assert.Equal(t, 15*5, c.BottomSpacer().Height)
}

func TestRenderBindsHandlersOncePerNode(t *testing.T) {
	calls := map[int64]int{}
	bind := func(item Item, n *Node) error {
		return n.On(EventAddToCart, func() { calls[item.Key]++ })
	}
	r := New(bind)
	c := NewContainer()
	all := items(5)

	for i := 0; i < 3; i++ {
		r.Render(context.Background(), SliceOf(all, virtual.Range{Start: 0, End: 5}, wide, true), c)
	}
	for _, n := range c.Items() {
		require.True(t, n.Fire(EventAddToCart))
	}
	for key, count := range calls {
		assert.Equal(t, 1, count, "handler for %d fired more than once", key)
	}
	assert.Len(t, calls, 5)
}

func TestNodeRejectsSecondBinding(t *testing.T) {
	n := &Node{Key: 1}
	require.NoError(t, n.On(EventOpenDetail, func() {}))
	err := n.On(EventOpenDetail, func() {})
	assert.True(t, errors.Is(err, ErrHandlerBound))
	assert.Error(t, n.On(EventRemove, nil))
	assert.True(t, n.Handles(EventOpenDetail))
	assert.False(t, n.Fire(EventRemove))
}

func TestSliceOfWithoutVirtualization(t *testing.T) {
	all := items(40)
	s := SliceOf(all, virtual.Range{Start: 5, End: 9}, wide, false)
	assert.Equal(t, 0, s.Start)
	assert.Len(t, s.Items, 40)

	clamped := SliceOf(all, virtual.Range{Start: 38, End: 90}, wide, true)
	assert.Equal(t, 38, clamped.Start)
	assert.Len(t, clamped.Items, 2)
}

func TestPaintReturnsViewportNodesInOrder(t *testing.T) {
	c := NewContainer()
	New(nil).Render(context.Background(), SliceOf(items(20), virtual.Range{Start: 0, End: 20}, wide, true), c)

	got := Paint(c, 7, 10)
	keys := make([]int64, 0, len(got))
	for _, n := range got {
		keys = append(keys, n.Key)
	}
	// rows 7..16 touch items 1 (5-8), 2 (10-13) and 3 (15-18)
	assert.Equal(t, []int64{101, 102, 103}, keys)
}

func TestListWindowFollowsScroll(t *testing.T) {
	ctx := context.Background()
	layout := virtual.Layout{Breakpoint: 60, ItemHeight: 4, ItemHeightCompact: 5, SpacingCompact: 1, Buffer: 2}
	l := NewList(layout, true, New(nil))
	l.Resize(100, 20)
	l.SetItems(items(100))

	l.Refresh(ctx)
	assert.Equal(t, virtual.Range{Start: 0, End: 7}, l.Window())
	assert.Len(t, l.Container().Items(), 7)
	assert.Len(t, l.Visible(), 5)

	require.True(t, l.ScrollBy(40))
	l.Refresh(ctx)
	assert.Equal(t, virtual.Range{Start: 8, End: 17}, l.Window())
	assert.Equal(t, int64(110), l.Visible()[0].Key)

	assert.True(t, l.ScrollBy(-1000))
	assert.Equal(t, 0, l.Offset())
	assert.True(t, l.ScrollTo(10_000))
	assert.Equal(t, 100*4-20, l.Offset())

	l.Resize(40, 20)
	assert.True(t, l.Metrics().Compact)
	l.Refresh(ctx)
	assert.Equal(t, 100*6, l.Container().Height)
}

func TestListReveal(t *testing.T) {
	l := NewList(virtual.Layout{ItemHeight: 4, Buffer: 1}, true, New(nil))
	l.Resize(80, 12)
	l.SetItems(items(10))

	assert.False(t, l.Reveal(1))
	assert.True(t, l.Reveal(5))
	assert.Equal(t, 5*4+4-12, l.Offset())
	assert.True(t, l.Reveal(0))
	assert.Equal(t, 0, l.Offset())
}

func TestListWithoutVirtualizationMountsEverything(t *testing.T) {
	l := NewList(virtual.Layout{ItemHeight: 4, Buffer: 0}, false, New(nil))
	l.Resize(80, 8)
	l.SetItems(items(25))
	stats := l.Refresh(context.Background())
	assert.Equal(t, 25, stats.Added)
	assert.Len(t, l.Visible(), 2)
}
