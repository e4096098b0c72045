package catalog

// Snapshot is the read-only catalog fetched once per load. Views derive from
// it and never mutate it.
type Snapshot struct {
	Products     []Product
	Supermarkets []Supermarket
	Index        ProductIndex
	Stores       Lookup
}

func NewSnapshot(products []Product, supermarkets []Supermarket) Snapshot {
	if products == nil {
		products = []Product{}
	}
	if supermarkets == nil {
		supermarkets = []Supermarket{}
	}
	return Snapshot{
		Products:     products,
		Supermarkets: supermarkets,
		Index:        IndexProducts(products),
		Stores:       NewLookup(supermarkets),
	}
}

// Join resolves cart rows against the snapshot. Rows whose product is not in
// the snapshot are returned as orphans.
func (s Snapshot) Join(items []CartItem) ([]CartRow, []CartItem) {
	return JoinCart(items, s.Index, s.Stores)
}
