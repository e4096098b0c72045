package catalog

import "github.com/shopspring/decimal"

// CartItem is the wire row returned by /cart.
type CartItem struct {
	ID        int64 `json:"id"`
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
	OwnerID   int64 `json:"owner_id,omitempty"`
	Checked   bool  `json:"checked"`
}

// CartRow is the denormalized join of a cart item with its product and
// supermarket, rebuilt on every load.
type CartRow struct {
	Item        CartItem
	Product     Product
	Supermarket *Supermarket
}

func (r CartRow) ID() int64 { return r.Item.ID }

// StoreName is the supermarket display name, empty when the store is unknown.
func (r CartRow) StoreName() string {
	if r.Supermarket == nil {
		return ""
	}
	return r.Supermarket.Name
}

// LineTotal is unit price times quantity.
func (r CartRow) LineTotal() decimal.Decimal {
	return r.Product.UnitPrice().Mul(decimal.NewFromInt(int64(r.Item.Quantity)))
}

// JoinCart builds rows for every item whose product is known. Items pointing at
// a product missing from the index are returned separately as orphans.
func JoinCart(items []CartItem, products ProductIndex, stores Lookup) (rows []CartRow, orphans []CartItem) {
	rows = make([]CartRow, 0, len(items))
	for _, item := range items {
		p, ok := products.Get(item.ProductID)
		if !ok {
			orphans = append(orphans, item)
			continue
		}
		rows = append(rows, JoinRow(item, p, stores))
	}
	return rows, orphans
}

// JoinRow joins a single item with an already resolved product.
func JoinRow(item CartItem, p Product, stores Lookup) CartRow {
	return CartRow{Item: item, Product: p, Supermarket: stores.Get(p.SupermarketID)}
}
