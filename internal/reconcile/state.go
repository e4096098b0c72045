// Package reconcile owns the locally mutable cart and favorites and mirrors
// every local change to the server through commands that can be undone.
package reconcile

import (
	"errors"
	"slices"

	"github.com/angelmondragon/spesa/internal/catalog"
)

var (
	// ErrNoChange means the command would not change anything; nothing is sent.
	ErrNoChange       = errors.New("nothing to change")
	ErrUnknownItem    = errors.New("cart item not found")
	ErrUnknownProduct = errors.New("product not found")
)

// State is the cart joined against the catalog plus the favorite set. It is
// only touched from the goroutine that drives the UI.
type State struct {
	rows      []catalog.CartRow
	favorites catalog.IDSet
	snapshot  catalog.Snapshot
	ledger    ledger
}

func NewState(snapshot catalog.Snapshot, rows []catalog.CartRow, favorites catalog.IDSet) *State {
	if favorites == nil {
		favorites = catalog.NewIDSet()
	}
	return &State{rows: slices.Clone(rows), favorites: favorites, snapshot: snapshot}
}

// Rows returns a copy of the cart rows in load order.
func (s *State) Rows() []catalog.CartRow {
	return slices.Clone(s.rows)
}

func (s *State) Len() int { return len(s.rows) }

func (s *State) Favorites() catalog.IDSet { return s.favorites }

func (s *State) IsFavorite(productID int64) bool { return s.favorites.Has(productID) }

func (s *State) Snapshot() catalog.Snapshot { return s.snapshot }

// Row returns the row with cart id.
func (s *State) Row(id int64) (catalog.CartRow, bool) {
	if i := s.index(id); i >= 0 {
		return s.rows[i], true
	}
	return catalog.CartRow{}, false
}

// InCart reports whether a row for productID exists.
func (s *State) InCart(productID int64) bool {
	return slices.ContainsFunc(s.rows, func(r catalog.CartRow) bool { return r.Item.ProductID == productID })
}

// Quantity returns the cart quantity of productID, 0 when absent.
func (s *State) Quantity(productID int64) int {
	for _, r := range s.rows {
		if r.Item.ProductID == productID {
			return r.Item.Quantity
		}
	}
	return 0
}

// Bought returns the ids of checked rows in row order.
func (s *State) Bought() []int64 {
	var out []int64
	for _, r := range s.rows {
		if r.Item.Checked {
			out = append(out, r.Item.ID)
		}
	}
	return out
}

func (s *State) index(id int64) int {
	return slices.IndexFunc(s.rows, func(r catalog.CartRow) bool { return r.Item.ID == id })
}

func (s *State) update(id int64, fn func(*catalog.CartItem)) bool {
	i := s.index(id)
	if i < 0 {
		return false
	}
	fn(&s.rows[i].Item)
	return true
}

func (s *State) remove(id int64) (catalog.CartRow, int, bool) {
	i := s.index(id)
	if i < 0 {
		return catalog.CartRow{}, -1, false
	}
	row := s.rows[i]
	s.rows = slices.Delete(s.rows, i, i+1)
	return row, i, true
}

func (s *State) insert(at int, row catalog.CartRow) {
	at = min(max(0, at), len(s.rows))
	s.rows = slices.Insert(s.rows, at, row)
}

func (s *State) removeAll(ids []int64) int {
	drop := catalog.NewIDSet(ids...)
	before := len(s.rows)
	s.rows = slices.DeleteFunc(s.rows, func(r catalog.CartRow) bool { return drop.Has(r.Item.ID) })
	return before - len(s.rows)
}

// Replace swaps in a freshly loaded cart, e.g. after a history restore.
// Row commands still in flight no longer roll the new rows back.
func (s *State) Replace(rows []catalog.CartRow) {
	s.rows = slices.Clone(rows)
	s.ledger.forget(fieldQuantity, fieldChecked)
}

// settleField records the outcome of the command gen and writes back the
// value the ledger resolves for key.
func (s *State) settleField(key fieldKey, gen uint64, value int, committed bool) {
	v, ok := s.ledger.finish(key, gen, value, committed)
	if !ok {
		return
	}
	switch key.kind {
	case fieldQuantity:
		s.update(key.id, func(it *catalog.CartItem) { it.Quantity = v })
	case fieldChecked:
		s.update(key.id, func(it *catalog.CartItem) { it.Checked = v == 1 })
	case fieldFavorite:
		if v == 1 {
			s.favorites.Add(key.id)
		} else {
			s.favorites.Remove(key.id)
		}
	}
}
