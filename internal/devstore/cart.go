package devstore

import (
	"context"
	"slices"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/spesa/internal/catalog"
	pkgerrors "github.com/angelmondragon/spesa/pkg/errors"
)

// CartFilter narrows the bulk cart delete. Nil fields do not filter.
type CartFilter struct {
	SupermarketID *int64
	Checked       *bool
}

func (f CartFilter) empty() bool {
	return f.SupermarketID == nil && f.Checked == nil
}

// Cart lists the rows of owner, optionally restricted to one supermarket.
func (s *Store) Cart(_ context.Context, owner int64, supermarketID int64) ([]catalog.CartItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if supermarketID > 0 {
		if _, ok := s.supermarketLocked(supermarketID); !ok {
			return nil, notFound("Supermarket")
		}
	}
	out := make([]catalog.CartItem, 0)
	for _, item := range s.cart {
		if item.OwnerID != owner {
			continue
		}
		if supermarketID > 0 {
			p, ok := s.productLocked(item.ProductID)
			if !ok || p.SupermarketID != supermarketID {
				continue
			}
		}
		out = append(out, item)
	}
	return out, nil
}

func (s *Store) CartItem(_ context.Context, owner, id int64) (catalog.CartItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.cartIndexLocked(owner, id)
	if i < 0 {
		return catalog.CartItem{}, notFound("Cart")
	}
	return s.cart[i], nil
}

// AddToCart creates a row. A product can appear only once per owner.
func (s *Store) AddToCart(_ context.Context, owner, productID int64, quantity int, checked bool) (catalog.CartItem, error) {
	if quantity <= 0 {
		return catalog.CartItem{}, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be greater than 0")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.productLocked(productID); !ok {
		return catalog.CartItem{}, notFound("Product")
	}
	for _, item := range s.cart {
		if item.OwnerID == owner && item.ProductID == productID {
			return catalog.CartItem{}, badRequest("Product already in cart")
		}
	}
	item := catalog.CartItem{
		ID:        s.nextID("cart"),
		ProductID: productID,
		Quantity:  quantity,
		OwnerID:   owner,
		Checked:   checked,
	}
	s.cart = append(s.cart, item)
	return item, nil
}

// UpdateCartItem sets quantity and/or checked. At least one is required.
func (s *Store) UpdateCartItem(_ context.Context, owner, id int64, quantity *int, checked *bool) error {
	if quantity != nil && *quantity <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be greater than 0")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.cartIndexLocked(owner, id)
	if i < 0 {
		return notFound("Cart")
	}
	if quantity == nil && checked == nil {
		return badRequest("You must update at least one field")
	}
	if quantity != nil {
		s.cart[i].Quantity = *quantity
	}
	if checked != nil {
		s.cart[i].Checked = *checked
	}
	return nil
}

func (s *Store) DeleteCartItem(_ context.Context, owner, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.cartIndexLocked(owner, id)
	if i < 0 {
		return notFound("Cart")
	}
	s.cart = slices.Delete(s.cart, i, i+1)
	return nil
}

// ClearCart deletes the rows of owner matching filter. Deleting nothing is
// reported as not found.
func (s *Store) ClearCart(_ context.Context, owner int64, filter CartFilter) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if filter.SupermarketID != nil {
		if _, ok := s.supermarketLocked(*filter.SupermarketID); !ok {
			return 0, notFound("Supermarket")
		}
	}
	kept := s.cart[:0]
	deleted := 0
	for _, item := range s.cart {
		if item.OwnerID == owner && s.cartMatchLocked(item, filter) {
			deleted++
			continue
		}
		kept = append(kept, item)
	}
	s.cart = kept
	if deleted == 0 {
		return 0, notFound("Cart")
	}
	return deleted, nil
}

func (s *Store) cartMatchLocked(item catalog.CartItem, filter CartFilter) bool {
	if filter.empty() {
		return true
	}
	if filter.Checked != nil && item.Checked != *filter.Checked {
		return false
	}
	if filter.SupermarketID != nil {
		p, ok := s.productLocked(item.ProductID)
		if !ok || p.SupermarketID != *filter.SupermarketID {
			return false
		}
	}
	return true
}

// Finalize moves the checked rows of owner into a new shopping history entry
// and returns how many rows it moved. Rows whose product no longer exists are
// dropped without being recorded.
func (s *Store) Finalize(_ context.Context, owner int64) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var (
		items []catalog.HistoryItem
		total = decimal.Zero
		count int
	)
	historyID := s.seq["history"] + 1
	kept := s.cart[:0]
	for _, row := range s.cart {
		if row.OwnerID != owner || !row.Checked {
			kept = append(kept, row)
			continue
		}
		count++
		p, ok := s.productLocked(row.ProductID)
		if !ok {
			continue
		}
		items = append(items, s.snapshotLocked(historyID, p, row.Quantity))
		total = total.Add(p.UnitPrice().Mul(decimal.NewFromInt(int64(row.Quantity))))
	}
	s.cart = kept
	if count == 0 {
		return 0, nil
	}

	s.nextID("history")
	quantity := 0
	for _, it := range items {
		quantity += it.Quantity
	}
	s.history = append(s.history, historyRecord{
		entry: catalog.HistoryEntry{
			ID:         historyID,
			UserID:     owner,
			CreatedAt:  s.now().UTC().Format("2006-01-02T15:04:05"),
			TotalPrice: total,
			TotalItems: quantity,
		},
		items: items,
	})
	return count, nil
}

func (s *Store) snapshotLocked(historyID int64, p catalog.Product, quantity int) catalog.HistoryItem {
	productID := p.ID
	supermarketID := p.SupermarketID
	storeName := ""
	if sm, ok := s.supermarketLocked(p.SupermarketID); ok {
		storeName = sm.Name
	}
	return catalog.HistoryItem{
		ID:              s.nextID("history_item"),
		HistoryID:       historyID,
		ProductID:       &productID,
		Name:            p.Name,
		Image:           p.Image,
		Unit:            p.Unit,
		PricePaid:       p.UnitPrice(),
		WasDiscounted:   p.OnSale(),
		Quantity:        quantity,
		Category:        p.Category,
		AisleOrder:      p.AisleOrder,
		SupermarketID:   &supermarketID,
		SupermarketName: storeName,
	}
}

func (s *Store) cartIndexLocked(owner, id int64) int {
	return slices.IndexFunc(s.cart, func(item catalog.CartItem) bool {
		return item.ID == id && item.OwnerID == owner
	})
}

// Favorites returns the favorite product ids of owner in insertion order.
func (s *Store) Favorites(_ context.Context, owner int64) []int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]int64{}, s.favorites[owner]...)
}

func (s *Store) AddFavorite(_ context.Context, owner, productID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.productLocked(productID); !ok {
		return notFound("Product")
	}
	if slices.Contains(s.favorites[owner], productID) {
		return badRequest("Product already in favorites")
	}
	s.favorites[owner] = append(s.favorites[owner], productID)
	return nil
}

func (s *Store) RemoveFavorite(_ context.Context, owner, productID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.productLocked(productID); !ok {
		return notFound("Product")
	}
	i := slices.Index(s.favorites[owner], productID)
	if i < 0 {
		return notFound("Favorite")
	}
	s.favorites[owner] = slices.Delete(s.favorites[owner], i, i+1)
	return nil
}
