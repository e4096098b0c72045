package virtual

import "sync"

// Throttle collapses scroll events into at most one recompute per frame. The
// first Request schedules a pass; later requests are absorbed until Done.
type Throttle struct {
	mu      sync.Mutex
	pending bool
}

// Request reports whether the caller should schedule a pass.
func (t *Throttle) Request() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.pending {
		return false
	}
	t.pending = true
	return true
}

// Done marks the scheduled pass as run.
func (t *Throttle) Done() {
	t.mu.Lock()
	t.pending = false
	t.mu.Unlock()
}

func (t *Throttle) Pending() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.pending
}
