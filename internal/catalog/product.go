package catalog

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// Product mirrors the /product payload. Collections of products are read-only
// snapshots; views derive from them and never mutate them.
type Product struct {
	ID              int64            `json:"id"`
	Name            string           `json:"name"`
	Category        string           `json:"category"`
	Unit            string           `json:"unit"`
	SupermarketID   int64            `json:"supermarket_id"`
	OriginalPrice   decimal.Decimal  `json:"original_price"`
	DiscountedPrice *decimal.Decimal `json:"discounted_price"`
	AisleOrder      *float64         `json:"aisle_order"`
	Image           string           `json:"image,omitempty"`
	Location        *string          `json:"location"`
	Calories        *float64         `json:"calories"`
	Fat             *float64         `json:"fat"`
	Carbs           *float64         `json:"carbs"`
	Protein         *float64         `json:"protein"`
}

// OnSale reports whether the product carries a discounted price.
func (p Product) OnSale() bool {
	return p.DiscountedPrice != nil
}

// UnitPrice is the price charged per unit: the discounted price when present.
func (p Product) UnitPrice() decimal.Decimal {
	if p.DiscountedPrice != nil {
		return *p.DiscountedPrice
	}
	return p.OriginalPrice
}

// DiscountPercent returns round((1 - discounted/original) * 100), or 0 when the
// product is not on sale or has no positive original price.
func (p Product) DiscountPercent() int {
	if p.DiscountedPrice == nil || !p.OriginalPrice.IsPositive() {
		return 0
	}
	ratio := p.DiscountedPrice.Div(p.OriginalPrice)
	pct := decimal.NewFromInt(1).Sub(ratio).Mul(decimal.NewFromInt(100)).Round(0)
	return int(pct.IntPart())
}

// AisleRank is the sort key used when browsing one store. Products without a
// hint rank after every product that has one.
func (p Product) AisleRank() float64 {
	if p.AisleOrder == nil {
		return math.Inf(1)
	}
	return *p.AisleOrder
}

// CategoryLabel falls back to a generic label for uncategorized products.
func (p Product) CategoryLabel() string {
	if c := strings.TrimSpace(p.Category); c != "" {
		return c
	}
	return "Product"
}

// Categories returns the distinct product categories in first-seen order.
func Categories(products []Product) []string {
	seen := make(map[string]struct{}, len(products))
	out := make([]string, 0)
	for _, p := range products {
		c := strings.TrimSpace(p.Category)
		if c == "" {
			continue
		}
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out
}

// ProductIndex resolves products by identity.
type ProductIndex map[int64]Product

func IndexProducts(products []Product) ProductIndex {
	idx := make(ProductIndex, len(products))
	for _, p := range products {
		idx[p.ID] = p
	}
	return idx
}

func (idx ProductIndex) Get(id int64) (Product, bool) {
	p, ok := idx[id]
	return p, ok
}
