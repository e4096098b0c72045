package reconcile

type fieldKind uint8

const (
	fieldQuantity fieldKind = iota
	fieldChecked
	fieldFavorite
)

// fieldKey names one value commands can change: a cart row's quantity or
// purchased flag, or a product's favorite membership.
type fieldKey struct {
	kind fieldKind
	id   int64
}

// fieldTrack remembers the last value the server acknowledged for a key
// together with the generations of the commands still waiting on it.
type fieldTrack struct {
	confirmed    int
	confirmedGen uint64
	pending      map[uint64]struct{}
}

// ledger orders the commands touching the same key so that a late answer
// never overwrites the effect of a newer command.
type ledger struct {
	gen    uint64
	tracks map[fieldKey]*fieldTrack
}

// begin registers a command about to change key from current. The first
// command on an idle key takes current as the confirmed value.
func (l *ledger) begin(key fieldKey, current int) uint64 {
	if l.tracks == nil {
		l.tracks = make(map[fieldKey]*fieldTrack)
	}
	t, ok := l.tracks[key]
	if !ok {
		t = &fieldTrack{confirmed: current, pending: make(map[uint64]struct{})}
		l.tracks[key] = t
	}
	l.gen++
	t.pending[l.gen] = struct{}{}
	return l.gen
}

// finish settles the command gen that tried to store value. It returns the
// value the key must show locally, or false when a newer command on the
// same key is still pending and owns the local value.
func (l *ledger) finish(key fieldKey, gen uint64, value int, committed bool) (int, bool) {
	t, ok := l.tracks[key]
	if !ok {
		return 0, false
	}
	if _, ok := t.pending[gen]; !ok {
		return 0, false
	}
	delete(t.pending, gen)
	if committed && gen > t.confirmedGen {
		t.confirmed, t.confirmedGen = value, gen
	}
	newer := false
	for g := range t.pending {
		if g > gen {
			newer = true
			break
		}
	}
	if len(t.pending) == 0 {
		delete(l.tracks, key)
	}
	if newer {
		return 0, false
	}
	return t.confirmed, true
}

// forget drops the tracks of kind. Commands finishing afterwards leave the
// local value alone.
func (l *ledger) forget(kinds ...fieldKind) {
	for key := range l.tracks {
		for _, k := range kinds {
			if key.kind == k {
				delete(l.tracks, key)
				break
			}
		}
	}
}

func boolValue(b bool) int {
	if b {
		return 1
	}
	return 0
}
