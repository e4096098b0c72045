package devstore

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/spesa/internal/catalog"
	"github.com/angelmondragon/spesa/pkg/auth"
)

const (
	DemoUsername = "demo"
	DemoPassword = "spesa123"
)

type seedProduct struct {
	name       string
	category   string
	unit       string
	store      int
	price      string
	discounted string
	aisle      float64
	kcal       float64
}

var seedStores = []catalog.Supermarket{
	{Name: "Conad", Location: strPtr("Via Roma 12, Bologna")},
	{Name: "Coop", Location: strPtr("Viale Europa 3, Firenze")},
	{Name: "Esselunga", Location: strPtr("Corso Buenos Aires 45, Milano")},
	{Name: "Lidl", Location: strPtr("Via Appia Nuova 210, Roma")},
}

var seedProducts = []seedProduct{
	{"Mele Golden", "Frutta", "kg", 0, "2.49", "", 1, 52},
	{"Banane", "Frutta", "kg", 0, "1.89", "1.49", 1.5, 89},
	{"Arance tarocco", "Frutta", "kg", 1, "2.20", "", 1, 47},
	{"Zucchine", "Verdura", "kg", 1, "2.90", "", 2, 17},
	{"Pomodori ciliegini", "Verdura", "500g", 2, "2.50", "1.99", 2, 18},
	{"Insalata iceberg", "Verdura", "pz", 3, "0.99", "", 2, 14},
	{"Latte intero", "Latticini", "1L", 0, "1.39", "", 6, 64},
	{"Mozzarella di bufala", "Latticini", "250g", 2, "3.90", "2.90", 6, 288},
	{"Parmigiano Reggiano", "Latticini", "300g", 0, "7.50", "", 6.5, 392},
	{"Yogurt greco", "Latticini", "500g", 3, "2.29", "", 6, 97},
	{"Pane casereccio", "Panetteria", "500g", 1, "2.10", "", 3, 265},
	{"Grissini torinesi", "Panetteria", "250g", 2, "1.80", "", 3, 412},
	{"Pasta spaghetti", "Dispensa", "500g", 0, "0.89", "", 4, 359},
	{"Riso arborio", "Dispensa", "1kg", 1, "2.79", "2.19", 4, 350},
	{"Passata di pomodoro", "Dispensa", "700g", 3, "1.09", "", 4.5, 36},
	{"Olio extravergine", "Dispensa", "1L", 2, "9.90", "7.90", 4, 884},
	{"Caffè macinato", "Dispensa", "250g", 0, "3.49", "", 5, 2},
	{"Acqua frizzante", "Bevande", "6x1.5L", 3, "1.99", "", 8, 0},
	{"Vino Chianti", "Bevande", "750ml", 1, "8.50", "", 8, 85},
	{"Petto di pollo", "Carne", "kg", 2, "9.80", "", 7, 165},
	{"Prosciutto crudo", "Carne", "100g", 0, "3.20", "2.60", 7, 268},
	{"Filetti di merluzzo", "Surgelati", "400g", 3, "4.99", "", 9, 82},
	{"Piselli surgelati", "Surgelati", "1kg", 1, "2.39", "", 9, 81},
	{"Tiramisù", "Dolci", "500g", 2, "5.50", "", 10, 283},
}

var seedRecipes = []string{"Spaghetti al pomodoro", "Risotto ai piselli", "Caprese"}

// Seed fills an empty store with supermarkets, products, a demo user and
// the demo user's recipes.
func (s *Store) Seed(ctx context.Context) error {
	stores := make([]catalog.Supermarket, 0, len(seedStores))
	for _, sm := range seedStores {
		created, err := s.AddSupermarket(ctx, sm)
		if err != nil {
			return fmt.Errorf("seed supermarket %s: %w", sm.Name, err)
		}
		stores = append(stores, created)
	}
	for _, sp := range seedProducts {
		aisle := sp.aisle
		kcal := sp.kcal
		p := catalog.Product{
			Name:          sp.name,
			Category:      sp.category,
			Unit:          sp.unit,
			SupermarketID: stores[sp.store].ID,
			OriginalPrice: decimal.RequireFromString(sp.price),
			AisleOrder:    &aisle,
			Calories:      &kcal,
		}
		if sp.discounted != "" {
			d := decimal.RequireFromString(sp.discounted)
			p.DiscountedPrice = &d
		}
		if _, err := s.AddProduct(ctx, p); err != nil {
			return fmt.Errorf("seed product %s: %w", sp.name, err)
		}
	}

	demo, err := s.CreateUser(ctx, catalog.Registration{
		Username:  DemoUsername,
		Email:     "demo@spesa.local",
		FirstName: "Giulia",
		LastName:  "Bianchi",
		Password:  DemoPassword,
		Role:      auth.RoleUser,
	})
	if err != nil {
		return fmt.Errorf("seed demo user: %w", err)
	}
	for _, name := range seedRecipes {
		if _, err := s.AddRecipe(ctx, catalog.Recipe{Name: name, OwnerID: demo.ID}); err != nil {
			return fmt.Errorf("seed recipe %s: %w", name, err)
		}
	}
	return nil
}

func strPtr(v string) *string { return &v }
