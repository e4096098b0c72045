package detail

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/angelmondragon/spesa/internal/catalog"
)

func ptr[T any](v T) *T { return &v }

func TestBuildOnSaleWithNutrition(t *testing.T) {
	discounted := decimal.RequireFromString("7.50")
	p := catalogProduct()
	p.DiscountedPrice = &discounted
	p.Calories = ptr(120.0)
	p.Protein = ptr(3.5)

	o := Build(p, storeAt("Via Roma 1"), 2)

	assert.Equal(t, "Yogurt", o.Title)
	assert.Equal(t, "Latticini", o.Category)
	assert.Equal(t, "Coop", o.Store)
	assert.Equal(t, "Via Roma 1", o.Location)
	assert.True(t, o.OnSale)
	assert.Equal(t, "-25%", o.Badge)
	assert.Equal(t, "€ 7,50", o.Price)
	assert.Equal(t, "€ 10,00", o.OriginalPrice)
	assert.Equal(t, "€ 15,00", o.LineTotal)
	assert.Equal(t, []Fact{
		{Label: "Calories", Value: "120 kcal"},
		{Label: "Fat", Value: "-"},
		{Label: "Carbs", Value: "-"},
		{Label: "Protein", Value: "3.5 g"},
	}, o.Nutrition)
}

func TestBuildFallbacks(t *testing.T) {
	p := catalogProduct()
	p.Category = ""
	p.Unit = ""

	o := Build(p, nil, 0)
	assert.Equal(t, "Product", o.Category)
	assert.Equal(t, "-", o.Store)
	assert.Equal(t, "-", o.Location)
	assert.Equal(t, "pz", o.Unit)
	assert.False(t, o.OnSale)
	assert.Empty(t, o.Badge)
	assert.Empty(t, o.LineTotal)

	p.Location = ptr("Corsia 4")
	assert.Equal(t, "Corsia 4", Build(p, storeAt("Via Roma 1"), 0).Location, "product location wins")
}

func catalogProduct() catalog.Product {
	return catalog.Product{ID: 1, Name: "Yogurt", Category: "Latticini", Unit: "125 g", OriginalPrice: decimal.RequireFromString("10.00")}
}

func storeAt(location string) *catalog.Supermarket {
	return &catalog.Supermarket{ID: 1, Name: "Coop", Location: &location}
}
