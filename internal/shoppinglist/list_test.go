package shoppinglist

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/spesa/internal/browse"
	"github.com/angelmondragon/spesa/internal/catalog"
)

func aisle(v float64) *float64 { return &v }

func row(id int64, name, store string, price string, qty int, checked bool, order *float64) catalog.CartRow {
	return catalog.CartRow{
		Item:        catalog.CartItem{ID: id, ProductID: id, Quantity: qty, Checked: checked},
		Product:     catalog.Product{ID: id, Name: name, OriginalPrice: decimal.RequireFromString(price), AisleOrder: order},
		Supermarket: &catalog.Supermarket{Name: store},
	}
}

func ids(rows []catalog.CartRow) []int64 {
	out := []int64{}
	for _, r := range rows {
		out = append(out, r.Item.ID)
	}
	return out
}

func TestTotalsExample(t *testing.T) {
	rows := []catalog.CartRow{
		row(1, "Pasta", "Coop", "5", 2, false, nil),
		row(2, "Sale", "Coop", "3", 1, true, nil),
	}
	totals := Compute(rows, AllStores)
	assert.True(t, totals.Total.Equal(decimal.NewFromInt(13)), totals.Total.String())
	assert.True(t, totals.Pending.Equal(decimal.NewFromInt(10)), totals.Pending.String())
}

func TestTotalsUseDiscountAndStoreFilter(t *testing.T) {
	discounted := decimal.RequireFromString("1.5")
	onSale := row(1, "Mele", "Coop", "2", 2, false, nil)
	onSale.Product.DiscountedPrice = &discounted
	rows := []catalog.CartRow{onSale, row(2, "Pere", "Conad", "4", 1, false, nil)}

	assert.Equal(t, "3", Compute(rows, "Coop").Total.String())
	assert.Equal(t, "7", Compute(rows, AllStores).Total.String())
	assert.True(t, Compute(nil, AllStores).Total.IsZero())
}

func TestBuildSplitsAndSorts(t *testing.T) {
	rows := []catalog.CartRow{
		row(1, "Zucchero", "Coop", "1", 1, false, aisle(2)),
		row(2, "Arance", "Conad", "1", 1, false, aisle(9)),
		row(3, "Burro", "Coop", "1", 1, true, nil),
		row(4, "Caffè", "Coop", "1", 1, false, aisle(1)),
	}

	all := Build(rows, AllStores, browse.StatusAll)
	assert.Equal(t, []int64{2, 4, 1}, ids(all.Pending), "name order across stores")
	assert.Equal(t, []int64{3}, ids(all.Bought))
	assert.Equal(t, []string{"Coop", "Conad"}, all.Stores)
	assert.True(t, all.ShowPending)
	assert.True(t, all.ShowBought)
	assert.False(t, all.Empty)

	coop := Build(rows, "Coop", browse.StatusAll)
	assert.Equal(t, []int64{4, 1}, ids(coop.Pending), "aisle order inside one store")
	assert.Equal(t, "Coop", coop.Store)

	conad := Build(rows, "Conad", browse.StatusAll)
	assert.Empty(t, conad.Bought)
	assert.True(t, conad.ShowBought, "section visibility looks at the whole cart")
}

func TestBuildResetsVanishedStore(t *testing.T) {
	rows := []catalog.CartRow{row(1, "Pane", "Coop", "1", 1, false, nil)}
	v := Build(rows, "Esselunga", "")
	assert.Equal(t, AllStores, v.Store)
	assert.Equal(t, browse.StatusAll, v.Status)
	assert.Len(t, v.Pending, 1)
}

func TestVisibleFollowsStatus(t *testing.T) {
	rows := []catalog.CartRow{
		row(1, "A", "Coop", "1", 1, false, nil),
		row(2, "B", "Coop", "1", 1, true, nil),
	}
	assert.Equal(t, []int64{1, 2}, Build(rows, AllStores, browse.StatusAll).VisibleIDs())
	assert.Equal(t, []int64{1}, Build(rows, AllStores, browse.StatusPending).VisibleIDs())
	assert.Equal(t, []int64{2}, Build(rows, AllStores, browse.StatusBought).VisibleIDs())
}

func TestSectionHeadingsFollowStatus(t *testing.T) {
	rows := []catalog.CartRow{
		row(1, "A", "Coop", "1", 1, false, nil),
		row(2, "B", "Coop", "1", 1, false, nil),
		row(3, "C", "Coop", "1", 1, true, nil),
	}

	all := Build(rows, AllStores, browse.StatusAll)
	assert.Equal(t, SectionPending, all.SectionAt(0))
	assert.Equal(t, SectionNone, all.SectionAt(1))
	assert.Equal(t, SectionBought, all.SectionAt(2))

	bought := Build(rows, AllStores, browse.StatusBought)
	require.Equal(t, []int64{3}, bought.VisibleIDs())
	assert.Equal(t, SectionBought, bought.SectionAt(0), "no pending rows are shown above it")

	pending := Build(rows, AllStores, browse.StatusPending)
	assert.Equal(t, SectionPending, pending.SectionAt(0))
	assert.Equal(t, SectionNone, pending.SectionAt(2))
}

func TestEmptyCart(t *testing.T) {
	v := Build(nil, AllStores, browse.StatusAll)
	require.True(t, v.Empty)
	assert.False(t, v.ShowPending)
	assert.False(t, v.ShowBought)
	assert.Empty(t, v.VisibleIDs())
}
