package reconcile

import (
	"context"

	"github.com/angelmondragon/spesa/internal/catalog"
	"github.com/angelmondragon/spesa/pkg/apiclient"
)

// Remote is the part of the API client the reconciler mirrors changes to.
type Remote interface {
	AddToCart(ctx context.Context, productID int64, quantity int) (catalog.CartItem, error)
	UpdateCartItem(ctx context.Context, id int64, update apiclient.CartUpdate) error
	DeleteCartItem(ctx context.Context, id int64) error
	ClearCart(ctx context.Context) error
	FinalizeCart(ctx context.Context) (catalog.FinalizeResult, error)
	AddFavorite(ctx context.Context, productID int64) error
	RemoveFavorite(ctx context.Context, productID int64) error
}

// Command is one mutation. Apply changes local state, Commit mirrors it to the
// server and Compensate undoes Apply when Commit fails. Commands on the same
// row or favorite may overlap; compensation then restores the last value the
// server acknowledged rather than the value seen by Apply. Commit must not touch
// State: it may run on another goroutine.
type Command interface {
	Name() string
	Apply(s *State) error
	Commit(ctx context.Context, r Remote) error
	Compensate(s *State)
}

// Settler is implemented by commands whose local effect depends on the
// server's answer. Settle runs after a successful Commit.
type Settler interface {
	Settle(s *State)
}

// ToggleBought flips the purchased flag of a cart row.
type ToggleBought struct {
	ID int64

	prev bool
	gen  uint64
}

func (c *ToggleBought) Name() string { return "toggle_bought" }

func (c *ToggleBought) Apply(s *State) error {
	row, ok := s.Row(c.ID)
	if !ok {
		return ErrUnknownItem
	}
	c.prev = row.Item.Checked
	c.gen = s.ledger.begin(c.key(), boolValue(c.prev))
	s.update(c.ID, func(it *catalog.CartItem) { it.Checked = !c.prev })
	return nil
}

func (c *ToggleBought) key() fieldKey { return fieldKey{kind: fieldChecked, id: c.ID} }

func (c *ToggleBought) Commit(ctx context.Context, r Remote) error {
	checked := !c.prev
	return r.UpdateCartItem(ctx, c.ID, apiclient.CartUpdate{Checked: &checked})
}

func (c *ToggleBought) Compensate(s *State) {
	s.settleField(c.key(), c.gen, boolValue(!c.prev), false)
}

func (c *ToggleBought) Settle(s *State) {
	s.settleField(c.key(), c.gen, boolValue(!c.prev), true)
}

// SetChecked forces the purchased flag to a value.
type SetChecked struct {
	ID      int64
	Checked bool

	gen uint64
}

func (c *SetChecked) Name() string { return "set_checked" }

func (c *SetChecked) Apply(s *State) error {
	row, ok := s.Row(c.ID)
	if !ok {
		return ErrUnknownItem
	}
	if row.Item.Checked == c.Checked {
		return ErrNoChange
	}
	c.gen = s.ledger.begin(c.key(), boolValue(row.Item.Checked))
	s.update(c.ID, func(it *catalog.CartItem) { it.Checked = c.Checked })
	return nil
}

func (c *SetChecked) key() fieldKey { return fieldKey{kind: fieldChecked, id: c.ID} }

func (c *SetChecked) Commit(ctx context.Context, r Remote) error {
	checked := c.Checked
	return r.UpdateCartItem(ctx, c.ID, apiclient.CartUpdate{Checked: &checked})
}

func (c *SetChecked) Compensate(s *State) {
	s.settleField(c.key(), c.gen, boolValue(c.Checked), false)
}

func (c *SetChecked) Settle(s *State) {
	s.settleField(c.key(), c.gen, boolValue(c.Checked), true)
}

// ChangeQuantity adds Delta (±1) to a row's quantity, never going below 1.
type ChangeQuantity struct {
	ID    int64
	Delta int

	next int
	gen  uint64
}

func (c *ChangeQuantity) Name() string { return "change_quantity" }

func (c *ChangeQuantity) Apply(s *State) error {
	row, ok := s.Row(c.ID)
	if !ok {
		return ErrUnknownItem
	}
	next := max(1, row.Item.Quantity+c.Delta)
	if next == row.Item.Quantity {
		return ErrNoChange
	}
	c.next = next
	c.gen = s.ledger.begin(c.key(), row.Item.Quantity)
	s.update(c.ID, func(it *catalog.CartItem) { it.Quantity = next })
	return nil
}

func (c *ChangeQuantity) key() fieldKey { return fieldKey{kind: fieldQuantity, id: c.ID} }

func (c *ChangeQuantity) Commit(ctx context.Context, r Remote) error {
	qty := c.next
	return r.UpdateCartItem(ctx, c.ID, apiclient.CartUpdate{Quantity: &qty})
}

// Compensate falls back to the last quantity the server acknowledged,
// unless a newer change of the same row is still in flight.
func (c *ChangeQuantity) Compensate(s *State) {
	s.settleField(c.key(), c.gen, c.next, false)
}

func (c *ChangeQuantity) Settle(s *State) {
	s.settleField(c.key(), c.gen, c.next, true)
}

// RemoveItem deletes a cart row.
type RemoveItem struct {
	ID int64

	row catalog.CartRow
	at  int
}

func (c *RemoveItem) Name() string { return "remove_item" }

func (c *RemoveItem) Apply(s *State) error {
	row, at, ok := s.remove(c.ID)
	if !ok {
		return ErrUnknownItem
	}
	c.row, c.at = row, at
	return nil
}

func (c *RemoveItem) Commit(ctx context.Context, r Remote) error {
	return r.DeleteCartItem(ctx, c.ID)
}

func (c *RemoveItem) Compensate(s *State) {
	if _, ok := s.Row(c.ID); ok {
		return
	}
	s.insert(c.at, c.row)
}

// ToggleFavorite flips membership of a product in the favorite set.
type ToggleFavorite struct {
	ProductID int64

	added bool
	gen   uint64
}

func (c *ToggleFavorite) Name() string { return "toggle_favorite" }

func (c *ToggleFavorite) Apply(s *State) error {
	was := s.favorites.Has(c.ProductID)
	c.added = !was
	c.gen = s.ledger.begin(c.key(), boolValue(was))
	if was {
		s.favorites.Remove(c.ProductID)
	} else {
		s.favorites.Add(c.ProductID)
	}
	return nil
}

func (c *ToggleFavorite) key() fieldKey { return fieldKey{kind: fieldFavorite, id: c.ProductID} }

func (c *ToggleFavorite) Commit(ctx context.Context, r Remote) error {
	if c.added {
		return r.AddFavorite(ctx, c.ProductID)
	}
	return r.RemoveFavorite(ctx, c.ProductID)
}

func (c *ToggleFavorite) Compensate(s *State) {
	s.settleField(c.key(), c.gen, boolValue(c.added), false)
}

func (c *ToggleFavorite) Settle(s *State) {
	s.settleField(c.key(), c.gen, boolValue(c.added), true)
}

// Added reports the direction of the last Apply.
func (c *ToggleFavorite) Added() bool { return c.added }

// AddToCart creates a row with quantity 1. The row only appears locally once
// the server has assigned its id.
type AddToCart struct {
	ProductID int64

	product catalog.Product
	created catalog.CartItem
}

func (c *AddToCart) Name() string { return "add_to_cart" }

func (c *AddToCart) Apply(s *State) error {
	p, ok := s.snapshot.Index.Get(c.ProductID)
	if !ok {
		return ErrUnknownProduct
	}
	c.product = p
	return nil
}

func (c *AddToCart) Commit(ctx context.Context, r Remote) error {
	item, err := r.AddToCart(ctx, c.ProductID, 1)
	if err != nil {
		return err
	}
	c.created = item
	return nil
}

func (c *AddToCart) Compensate(*State) {}

func (c *AddToCart) Settle(s *State) {
	if c.created.ID == 0 {
		return
	}
	if _, exists := s.Row(c.created.ID); exists {
		return
	}
	if c.created.ProductID == 0 {
		c.created.ProductID = c.ProductID
	}
	if c.created.Quantity < 1 {
		c.created.Quantity = 1
	}
	s.rows = append(s.rows, catalog.JoinRow(c.created, c.product, s.snapshot.Stores))
}

// Created returns the row the server created.
func (c *AddToCart) Created() catalog.CartItem { return c.created }
