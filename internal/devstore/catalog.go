package devstore

import (
	"context"
	"strings"

	"github.com/angelmondragon/spesa/internal/catalog"
	pkgerrors "github.com/angelmondragon/spesa/pkg/errors"
)

// ProductFilter narrows GET /product. Zero values do not filter.
type ProductFilter struct {
	SupermarketID  int64
	Category       string
	Search         string
	DiscountedOnly bool
}

func (f ProductFilter) match(p catalog.Product) bool {
	if f.SupermarketID > 0 && p.SupermarketID != f.SupermarketID {
		return false
	}
	if f.Category != "" && p.Category != f.Category {
		return false
	}
	if f.Search != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(f.Search)) {
		return false
	}
	if f.DiscountedOnly && (p.DiscountedPrice == nil || !p.DiscountedPrice.LessThan(p.OriginalPrice)) {
		return false
	}
	return true
}

func (s *Store) AddSupermarket(_ context.Context, sm catalog.Supermarket) (catalog.Supermarket, error) {
	if strings.TrimSpace(sm.Name) == "" {
		return catalog.Supermarket{}, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	sm.ID = s.nextID("supermarket")
	s.supermarkets = append(s.supermarkets, sm)
	return sm, nil
}

// AddProduct stores p. Its supermarket must exist and a discounted price
// must be lower than the original one.
func (s *Store) AddProduct(_ context.Context, p catalog.Product) (catalog.Product, error) {
	if strings.TrimSpace(p.Name) == "" {
		return catalog.Product{}, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if !p.OriginalPrice.IsPositive() {
		return catalog.Product{}, pkgerrors.New(pkgerrors.CodeValidation, "original_price must be positive")
	}
	if p.DiscountedPrice != nil && !p.DiscountedPrice.LessThan(p.OriginalPrice) {
		return catalog.Product{}, pkgerrors.New(pkgerrors.CodeValidation, "discounted_price must be lower than original_price")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.supermarketLocked(p.SupermarketID); !ok {
		return catalog.Product{}, notFound("Supermarket id")
	}
	p.ID = s.nextID("product")
	s.products = append(s.products, p)
	return p, nil
}

// RemoveProduct deletes a product. Cart rows pointing at it are left in
// place, the way the relational backend leaves dangling rows.
func (s *Store) RemoveProduct(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, p := range s.products {
		if p.ID == id {
			s.products = append(s.products[:i], s.products[i+1:]...)
			return nil
		}
	}
	return notFound("Product")
}

func (s *Store) AddRecipe(_ context.Context, r catalog.Recipe) (catalog.Recipe, error) {
	if strings.TrimSpace(r.Name) == "" {
		return catalog.Recipe{}, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	r.ID = s.nextID("recipe")
	s.recipes = append(s.recipes, r)
	return r, nil
}

func (s *Store) Products(_ context.Context, filter ProductFilter) ([]catalog.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if filter.SupermarketID > 0 {
		if _, ok := s.supermarketLocked(filter.SupermarketID); !ok {
			return nil, notFound("Supermarket")
		}
	}
	out := make([]catalog.Product, 0, len(s.products))
	for _, p := range s.products {
		if filter.match(p) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *Store) Product(_ context.Context, id int64) (catalog.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.productLocked(id)
	if !ok {
		return catalog.Product{}, notFound("Product")
	}
	return p, nil
}

func (s *Store) Supermarkets(context.Context) []catalog.Supermarket {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]catalog.Supermarket{}, s.supermarkets...)
}

func (s *Store) Supermarket(_ context.Context, id int64) (catalog.Supermarket, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sm, ok := s.supermarketLocked(id)
	if !ok {
		return catalog.Supermarket{}, notFound("Supermarket")
	}
	return sm, nil
}

// Recipes lists recipes, restricted to ownerID when it is positive.
func (s *Store) Recipes(_ context.Context, ownerID int64) []catalog.Recipe {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]catalog.Recipe, 0, len(s.recipes))
	for _, r := range s.recipes {
		if ownerID > 0 && r.OwnerID != ownerID {
			continue
		}
		out = append(out, r)
	}
	return out
}

func (s *Store) productLocked(id int64) (catalog.Product, bool) {
	for _, p := range s.products {
		if p.ID == id {
			return p, true
		}
	}
	return catalog.Product{}, false
}

func (s *Store) supermarketLocked(id int64) (catalog.Supermarket, bool) {
	for _, sm := range s.supermarkets {
		if sm.ID == id {
			return sm, true
		}
	}
	return catalog.Supermarket{}, false
}
