// Package history lists finalized shopping trips and copies them back into
// the cart.
package history

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/spesa/internal/catalog"
	pkgerrors "github.com/angelmondragon/spesa/pkg/errors"
	"github.com/angelmondragon/spesa/pkg/logger"
)

type API interface {
	History(ctx context.Context) ([]catalog.HistoryEntry, error)
	HistoryItems(ctx context.Context, id int64) ([]catalog.HistoryItem, error)
	RestoreHistory(ctx context.Context, id int64) (catalog.RestoreResult, error)
	DeleteHistory(ctx context.Context, id int64) error
}

type Service struct {
	api  API
	logg *logger.Logger
}

func NewService(api API, logg *logger.Logger) *Service {
	if logg == nil {
		logg = logger.Nop()
	}
	return &Service{api: api, logg: logg}
}

// List returns the trips newest first.
func (s *Service) List(ctx context.Context) ([]catalog.HistoryEntry, error) {
	entries, err := s.api.History(ctx)
	if err != nil {
		return nil, err
	}
	out := slices.Clone(entries)
	slices.SortStableFunc(out, func(a, b catalog.HistoryEntry) int {
		if c := cmp.Compare(b.CreatedAt, a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(b.ID, a.ID)
	})
	return out, nil
}

// Items returns the product snapshots of a trip grouped by store, in aisle
// order inside each store.
func (s *Service) Items(ctx context.Context, id int64) ([]catalog.HistoryItem, error) {
	items, err := s.api.HistoryItems(ctx, id)
	if err != nil {
		return nil, err
	}
	out := slices.Clone(items)
	slices.SortStableFunc(out, func(a, b catalog.HistoryItem) int {
		if c := strings.Compare(a.SupermarketName, b.SupermarketName); c != 0 {
			return c
		}
		return cmp.Compare(aisle(a), aisle(b))
	})
	return out, nil
}

func aisle(it catalog.HistoryItem) float64 {
	if it.AisleOrder == nil {
		return 1 << 30
	}
	return *it.AisleOrder
}

// Summary condenses a restore result for a notification.
type Summary struct {
	Restored int
	Updated  int
	Missing  []string
}

func (s Summary) String() string {
	msg := fmt.Sprintf("%d products restored", s.Restored)
	if s.Updated > 0 {
		msg += fmt.Sprintf(", %d changed since", s.Updated)
	}
	if len(s.Missing) > 0 {
		msg += fmt.Sprintf(", no longer available: %s", strings.Join(s.Missing, ", "))
	}
	return msg
}

// Restore copies trip id back into the cart. The caller reloads the cart
// afterwards: the server decides how rows merge.
func (s *Service) Restore(ctx context.Context, id int64) (Summary, error) {
	res, err := s.api.RestoreHistory(ctx, id)
	if err != nil {
		return Summary{}, err
	}
	summary := Summary{Restored: len(res.Restored), Updated: len(res.Updated)}
	for _, m := range res.Missing {
		summary.Missing = append(summary.Missing, m.Name)
	}
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"history_id": id,
		"restored":   summary.Restored,
		"updated":    summary.Updated,
		"missing":    len(summary.Missing),
	}), "history.restored")
	return summary, nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid history id")
	}
	return s.api.DeleteHistory(ctx, id)
}

// Total sums price paid times quantity.
func Total(items []catalog.HistoryItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.PricePaid.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	return total
}
