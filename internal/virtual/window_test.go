package virtual

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/angelmondragon/spesa/pkg/config"
)

func TestComputeVisible(t *testing.T) {
	cases := []struct {
		name                           string
		offset, viewport, height, n, b int
		want                           Range
	}{
		{"top of list", 0, 800, 260, 100, 10, Range{0, 14}},
		{"twenty items scrolled", 5200, 800, 260, 100, 10, Range{10, 34}},
		{"empty collection", 300, 800, 260, 0, 10, Range{0, 0}},
		{"offset past the end", 1_000_000, 800, 260, 100, 10, Range{100, 100}},
		{"short list", 0, 800, 260, 3, 10, Range{0, 3}},
		{"no buffer", 520, 520, 260, 100, 0, Range{2, 4}},
		{"negative offset", -50, 260, 260, 100, 0, Range{0, 1}},
		{"zero height", 0, 800, 0, 100, 10, Range{0, 0}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ComputeVisible(tc.offset, tc.viewport, tc.height, tc.n, tc.b)
			assert.Equal(t, tc.want, got)
			assert.LessOrEqual(t, got.Start, got.End)
			assert.LessOrEqual(t, got.End, max(tc.n, 0))
		})
	}
}

func TestRangeHelpers(t *testing.T) {
	r := Range{Start: 2, End: 5}
	assert.Equal(t, 3, r.Len())
	assert.True(t, r.Contains(2))
	assert.False(t, r.Contains(5))
	assert.Equal(t, 0, Range{Start: 4, End: 1}.Len())
}

func TestLayoutBreakpoint(t *testing.T) {
	l := NewLayout(config.ViewConfig{
		Breakpoint: 60, ItemHeight: 4, ItemHeightCompact: 5, Spacing: 0, SpacingCompact: 1, Buffer: 10,
	})

	wide := l.For(120)
	assert.False(t, wide.Compact)
	assert.Equal(t, 4, wide.Stride())

	narrow := l.For(59)
	assert.True(t, narrow.Compact)
	assert.Equal(t, 6, narrow.Stride())
	assert.Equal(t, 10, narrow.Buffer)

	assert.Equal(t, Range{0, 15}, wide.Visible(0, 20, 100))
}

func TestClampOffset(t *testing.T) {
	assert.Equal(t, 0, ClampOffset(-3, 10, 4, 20))
	assert.Equal(t, 20, ClampOffset(500, 10, 4, 20))
	assert.Equal(t, 0, ClampOffset(5, 2, 4, 20), "a list shorter than the viewport never scrolls")
}

func TestThrottleCollapsesRequests(t *testing.T) {
	var th Throttle
	assert.True(t, th.Request())
	assert.False(t, th.Request())
	assert.True(t, th.Pending())
	th.Done()
	assert.False(t, th.Pending())
	assert.True(t, th.Request())
}

func TestThrottleConcurrentRequests(t *testing.T) {
	var th Throttle
	var wg sync.WaitGroup
	granted := make(chan struct{}, 50)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if th.Request() {
				granted <- struct{}{}
			}
		}()
	}
	wg.Wait()
	close(granted)
	assert.Len(t, granted, 1)
}
