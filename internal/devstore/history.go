package devstore

import (
	"context"
	"slices"

	"github.com/angelmondragon/spesa/internal/catalog"
)

func (s *Store) History(_ context.Context, owner int64) ([]catalog.HistoryEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.users[owner]; !ok {
		return nil, notFound("User")
	}
	out := make([]catalog.HistoryEntry, 0)
	for _, rec := range s.history {
		if rec.entry.UserID == owner {
			out = append(out, rec.entry)
		}
	}
	return out, nil
}

func (s *Store) HistoryEntry(_ context.Context, owner, id int64) (catalog.HistoryEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.historyIndexLocked(owner, id)
	if i < 0 {
		return catalog.HistoryEntry{}, notFound("Shopping History")
	}
	return s.history[i].entry, nil
}

func (s *Store) HistoryItems(_ context.Context, owner, id int64) ([]catalog.HistoryItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.historyIndexLocked(owner, id)
	if i < 0 {
		return nil, notFound("Shopping History")
	}
	return append([]catalog.HistoryItem{}, s.history[i].items...), nil
}

// RestoreHistory copies the items of a past trip back into the cart of owner.
// Products that no longer exist are reported as missing; products whose
// catalog data drifted are restored and reported as updated. A product that
// is already in the cart has its quantity raised instead of getting a second
// row.
func (s *Store) RestoreHistory(_ context.Context, owner, id int64) (catalog.RestoreResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.historyIndexLocked(owner, id)
	if i < 0 {
		return catalog.RestoreResult{}, notFound("Shopping History")
	}

	res := catalog.RestoreResult{
		Restored: []int64{},
		Updated:  []catalog.RestoredChange{},
		Missing:  []catalog.HistoryItem{},
	}
	for _, item := range s.history[i].items {
		if item.ProductID == nil {
			res.Missing = append(res.Missing, item)
			continue
		}
		p, ok := s.productLocked(*item.ProductID)
		if !ok {
			res.Missing = append(res.Missing, item)
			continue
		}
		if changed := drift(item, p); changed != nil {
			res.Updated = append(res.Updated, catalog.RestoredChange{ID: p.ID, ChangedFields: changed})
		}
		s.restoreRowLocked(owner, p.ID, item.Quantity)
		res.Restored = append(res.Restored, p.ID)
	}
	return res, nil
}

func (s *Store) restoreRowLocked(owner, productID int64, quantity int) {
	if quantity <= 0 {
		quantity = 1
	}
	j := slices.IndexFunc(s.cart, func(row catalog.CartItem) bool {
		return row.OwnerID == owner && row.ProductID == productID
	})
	if j >= 0 {
		s.cart[j].Quantity += quantity
		return
	}
	s.cart = append(s.cart, catalog.CartItem{
		ID:        s.nextID("cart"),
		ProductID: productID,
		Quantity:  quantity,
		OwnerID:   owner,
	})
}

// drift reports which snapshot fields no longer match the product, or nil
// when nothing changed. A discounted price paid is not compared.
func drift(item catalog.HistoryItem, p catalog.Product) map[string]bool {
	supermarketChanged := item.SupermarketID == nil || *item.SupermarketID != p.SupermarketID
	changed := map[string]bool{
		"name":           p.Name != item.Name,
		"category":       p.Category != item.Category,
		"unit":           p.Unit != item.Unit,
		"supermarket_id": supermarketChanged,
		"image":          p.Image != item.Image,
		"original_price": !item.WasDiscounted && !p.OriginalPrice.Equal(item.PricePaid),
	}
	for _, v := range changed {
		if v {
			return changed
		}
	}
	return nil
}

func (s *Store) DeleteHistory(_ context.Context, owner, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.historyIndexLocked(owner, id)
	if i < 0 {
		return notFound("Shopping History")
	}
	s.history = slices.Delete(s.history, i, i+1)
	return nil
}

func (s *Store) historyIndexLocked(owner, id int64) int {
	return slices.IndexFunc(s.history, func(rec historyRecord) bool {
		return rec.entry.ID == id && rec.entry.UserID == owner
	})
}
