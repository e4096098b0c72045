// Package detail builds the product detail overlay.
package detail

import (
	"strconv"
	"strings"

	"github.com/angelmondragon/spesa/internal/catalog"
)

const missing = "-"

type Fact struct {
	Label string
	Value string
}

// Overlay is the display model of one product and its supermarket.
type Overlay struct {
	Title    string
	Category string
	Store    string
	Location string
	Unit     string
	Image    string

	Price         string
	OriginalPrice string
	OnSale        bool
	Badge         string

	// Quantity is the cart quantity, 0 when opened from the catalog.
	Quantity  int
	LineTotal string

	Nutrition []Fact
}

func Build(p catalog.Product, s *catalog.Supermarket, quantity int) Overlay {
	o := Overlay{
		Title:         p.Name,
		Category:      p.CategoryLabel(),
		Store:         missing,
		Location:      missing,
		Unit:          p.Unit,
		Image:         p.Image,
		Price:         catalog.FormatEuro(p.UnitPrice()),
		OriginalPrice: catalog.FormatEuro(p.OriginalPrice),
		OnSale:        p.OnSale(),
		Quantity:      quantity,
	}
	if o.Unit == "" {
		o.Unit = "pz"
	}
	if s != nil {
		o.Store = s.Name
	}
	switch {
	case p.Location != nil && strings.TrimSpace(*p.Location) != "":
		o.Location = *p.Location
	case s != nil && s.Location != nil && strings.TrimSpace(*s.Location) != "":
		o.Location = *s.Location
	}
	if o.OnSale {
		o.Badge = "-" + strconv.Itoa(p.DiscountPercent()) + "%"
	}
	if quantity > 0 {
		row := catalog.CartRow{Item: catalog.CartItem{Quantity: quantity}, Product: p}
		o.LineTotal = catalog.FormatEuro(row.LineTotal())
	}
	o.Nutrition = []Fact{
		{Label: "Calories", Value: amount(p.Calories, " kcal")},
		{Label: "Fat", Value: amount(p.Fat, " g")},
		{Label: "Carbs", Value: amount(p.Carbs, " g")},
		{Label: "Protein", Value: amount(p.Protein, " g")},
	}
	return o
}

func amount(v *float64, unit string) string {
	if v == nil {
		return missing
	}
	return strconv.FormatFloat(*v, 'f', -1, 64) + unit
}
