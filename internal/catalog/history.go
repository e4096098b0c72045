package catalog

import "github.com/shopspring/decimal"

// HistoryEntry is one finalized shopping trip.
type HistoryEntry struct {
	ID         int64           `json:"id"`
	UserID     int64           `json:"user_id"`
	CreatedAt  string          `json:"created_at"`
	TotalPrice decimal.Decimal `json:"total_price"`
	TotalItems int             `json:"total_items"`
}

// HistoryItem is a product snapshot taken when a trip was finalized.
type HistoryItem struct {
	ID              int64           `json:"id"`
	HistoryID       int64           `json:"history_id"`
	ProductID       *int64          `json:"product_id"`
	Name            string          `json:"name"`
	Image           string          `json:"image,omitempty"`
	Unit            string          `json:"unit,omitempty"`
	PricePaid       decimal.Decimal `json:"price_paid"`
	WasDiscounted   bool            `json:"was_discounted"`
	Quantity        int             `json:"quantity"`
	Category        string          `json:"category,omitempty"`
	AisleOrder      *float64        `json:"aisle_order"`
	SupermarketID   *int64          `json:"supermarket_id"`
	SupermarketName string          `json:"supermarket_name,omitempty"`
}

// RestoreResult reports the outcome of copying a past trip back into the cart.
type RestoreResult struct {
	Restored []int64          `json:"restored"`
	Updated  []RestoredChange `json:"updated"`
	Missing  []HistoryItem    `json:"missing"`
}

// RestoredChange flags a product whose catalog data drifted since the trip.
type RestoredChange struct {
	ID            int64           `json:"id"`
	ChangedFields map[string]bool `json:"changed_fields"`
}

// FinalizeResult is the POST /cart/finalize response.
type FinalizeResult struct {
	FinalizedItems int `json:"finalized_items"`
}
