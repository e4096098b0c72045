// Package browse holds the product-list view state and the pure filter/sort
// engine that derives the working sequence from the catalog.
package browse

import (
	"cmp"
	"slices"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/angelmondragon/spesa/internal/catalog"
)

const (
	CategoryAll       = "all"
	CategorySale      = "sale"
	CategoryFavorites = "favorites"

	// AllStores disables the store filter.
	AllStores int64 = 0
)

// Criteria is everything DeriveView needs besides the collection.
type Criteria struct {
	Search    string
	Category  string
	Store     int64
	Favorites catalog.IDSet
}

// DeriveView filters and orders all by c. The input slice is never modified.
func DeriveView(all []catalog.Product, c Criteria) []catalog.Product {
	needle := strings.ToLower(c.Search)
	out := make([]catalog.Product, 0, len(all))
	for _, p := range all {
		if matchesSearch(p, needle) && matchesCategory(p, c) && matchesStore(p, c.Store) {
			out = append(out, p)
		}
	}
	slices.SortStableFunc(out, Comparator(c.Store != AllStores))
	return out
}

func matchesSearch(p catalog.Product, needle string) bool {
	return needle == "" || strings.Contains(strings.ToLower(p.Name), needle)
}

func matchesCategory(p catalog.Product, c Criteria) bool {
	switch c.Category {
	case "", CategoryAll:
		return true
	case CategorySale:
		return p.OnSale()
	case CategoryFavorites:
		return c.Favorites.Has(p.ID)
	default:
		return p.Category == c.Category
	}
}

func matchesStore(p catalog.Product, store int64) bool {
	return store == AllStores || p.SupermarketID == store
}

// Comparator orders products by aisle hint (missing hints last) when byAisle
// is set, otherwise by name with Italian collation.
func Comparator(byAisle bool) func(a, b catalog.Product) int {
	if byAisle {
		return func(a, b catalog.Product) int {
			return cmp.Compare(a.AisleRank(), b.AisleRank())
		}
	}
	col := collate.New(language.Italian)
	return func(a, b catalog.Product) int {
		return col.CompareString(a.Name, b.Name)
	}
}

// OffersPreview returns up to n discounted products in catalog order.
func OffersPreview(products []catalog.Product, n int) []catalog.Product {
	out := make([]catalog.Product, 0, n)
	for _, p := range products {
		if len(out) >= n {
			break
		}
		if p.OnSale() {
			out = append(out, p)
		}
	}
	return out
}
