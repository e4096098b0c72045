// Package shoppinglist derives the shopping-list screen from the cart rows:
// store and status filters, the pending/bought sections and the totals.
package shoppinglist

import (
	"slices"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/spesa/internal/browse"
	"github.com/angelmondragon/spesa/internal/catalog"
)

// AllStores disables the store filter. Stores are matched by name.
const AllStores = "all"

type View struct {
	Pending []catalog.CartRow
	Bought  []catalog.CartRow

	// Stores lists the distinct store names in the cart, in first-seen order.
	Stores []string
	// Store is the effective filter; it falls back to AllStores when the
	// selected store no longer has rows.
	Store  string
	Status browse.Status

	ShowPending bool
	ShowBought  bool
	Empty       bool

	Totals Totals
}

// Visible returns the rows shown under the active filters, pending first.
func (v View) Visible() []catalog.CartRow {
	var out []catalog.CartRow
	if v.Status != browse.StatusBought {
		out = append(out, v.Pending...)
	}
	if v.Status != browse.StatusPending {
		out = append(out, v.Bought...)
	}
	return out
}

// Section is one of the two groups of the list.
type Section int

const (
	SectionNone Section = iota
	SectionPending
	SectionBought
)

// visiblePending is the number of pending rows Visible puts first.
func (v View) visiblePending() int {
	if v.Status == browse.StatusBought {
		return 0
	}
	return len(v.Pending)
}

// SectionAt returns the section whose heading goes above the visible row at
// index i, or SectionNone when i does not start a section.
func (v View) SectionAt(i int) Section {
	pending := v.visiblePending()
	switch {
	case i == 0 && pending > 0 && v.ShowPending:
		return SectionPending
	case i == pending && v.ShowBought && v.Status != browse.StatusPending && len(v.Bought) > 0:
		return SectionBought
	}
	return SectionNone
}

// VisibleIDs feeds the select-all action.
func (v View) VisibleIDs() []int64 {
	rows := v.Visible()
	ids := make([]int64, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.Item.ID)
	}
	return ids
}

// Build derives the screen. Sections are shown when the whole cart (not just
// the filtered part) has rows in that state.
func Build(rows []catalog.CartRow, store string, status browse.Status) View {
	stores := StoreNames(rows)
	if store == "" || !slices.Contains(stores, store) {
		store = AllStores
	}
	if status == "" {
		status = browse.StatusAll
	}

	v := View{Stores: stores, Store: store, Status: status, Empty: len(rows) == 0}
	for _, r := range rows {
		if r.Item.Checked {
			v.ShowBought = true
		} else {
			v.ShowPending = true
		}
		if !matchesStore(r, store) {
			continue
		}
		if r.Item.Checked {
			v.Bought = append(v.Bought, r)
		} else {
			v.Pending = append(v.Pending, r)
		}
	}

	less := browse.Comparator(store != AllStores)
	byProduct := func(a, b catalog.CartRow) int { return less(a.Product, b.Product) }
	slices.SortStableFunc(v.Pending, byProduct)
	slices.SortStableFunc(v.Bought, byProduct)

	v.Totals = Compute(rows, store)
	return v
}

// StoreNames returns the distinct store names of rows in first-seen order.
func StoreNames(rows []catalog.CartRow) []string {
	var out []string
	for _, r := range rows {
		name := r.StoreName()
		if name == "" || slices.Contains(out, name) {
			continue
		}
		out = append(out, name)
	}
	return out
}

func matchesStore(r catalog.CartRow, store string) bool {
	return store == AllStores || r.StoreName() == store
}

// Totals are computed over the store-filtered rows regardless of status.
type Totals struct {
	Total   decimal.Decimal
	Pending decimal.Decimal
}

// Compute sums price × quantity, using the discounted price when present.
func Compute(rows []catalog.CartRow, store string) Totals {
	t := Totals{Total: decimal.Zero, Pending: decimal.Zero}
	for _, r := range rows {
		if !matchesStore(r, store) {
			continue
		}
		line := r.LineTotal()
		t.Total = t.Total.Add(line)
		if !r.Item.Checked {
			t.Pending = t.Pending.Add(line)
		}
	}
	return t
}
