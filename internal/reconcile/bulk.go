package reconcile

import (
	"context"
	"net/http"

	"github.com/angelmondragon/spesa/internal/catalog"
	pkgerrors "github.com/angelmondragon/spesa/pkg/errors"
)

// ClearCart empties the cart. It is not optimistic: local rows are dropped
// only after the server confirmed the bulk delete.
type ClearCart struct{}

func (c *ClearCart) Name() string { return "clear_cart" }

func (c *ClearCart) Apply(s *State) error {
	if s.Len() == 0 {
		return ErrNoChange
	}
	return nil
}

func (c *ClearCart) Commit(ctx context.Context, r Remote) error {
	err := r.ClearCart(ctx)
	if e := pkgerrors.As(err); e != nil && e.Status() == http.StatusNotFound {
		// the server reports an already empty cart as 404
		return nil
	}
	return err
}

func (c *ClearCart) Compensate(*State) {}

func (c *ClearCart) Settle(s *State) {
	s.rows = s.rows[:0]
}

// Finalize turns the bought rows into a completed purchase and drops them.
type Finalize struct {
	ids    []int64
	result catalog.FinalizeResult
}

func (c *Finalize) Name() string { return "finalize" }

func (c *Finalize) Apply(s *State) error {
	c.ids = s.Bought()
	if len(c.ids) == 0 {
		return ErrNoChange
	}
	return nil
}

func (c *Finalize) Commit(ctx context.Context, r Remote) error {
	res, err := r.FinalizeCart(ctx)
	if err != nil {
		return err
	}
	c.result = res
	return nil
}

func (c *Finalize) Compensate(*State) {}

func (c *Finalize) Settle(s *State) {
	s.removeAll(c.ids)
}

// Count is the number of items the server finalized.
func (c *Finalize) Count() int { return c.result.FinalizedItems }

// ToggleAllVisible plans the select-all / deselect-all action over the rows
// currently shown. If any of them is unchecked all get checked; only when every
// one is checked are they all unchecked. One command per row that changes.
func ToggleAllVisible(s *State, visible []int64) []Command {
	target := !AllChecked(s, visible)
	var cmds []Command
	for _, id := range visible {
		row, ok := s.Row(id)
		if !ok || row.Item.Checked == target {
			continue
		}
		cmds = append(cmds, &SetChecked{ID: id, Checked: target})
	}
	return cmds
}

// AllChecked folds the visible rows; an empty selection is not all checked.
func AllChecked(s *State, visible []int64) bool {
	seen := false
	for _, id := range visible {
		row, ok := s.Row(id)
		if !ok {
			continue
		}
		seen = true
		if !row.Item.Checked {
			return false
		}
	}
	return seen
}
