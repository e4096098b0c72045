package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/spesa/api/controllers"
	"github.com/angelmondragon/spesa/api/middleware"
	"github.com/angelmondragon/spesa/internal/devstore"
	"github.com/angelmondragon/spesa/pkg/config"
	"github.com/angelmondragon/spesa/pkg/logger"
)

// NewRouter mounts the grocery REST API served by cmd/devapi.
func NewRouter(cfg *config.Config, logg *logger.Logger, store *devstore.Store) http.Handler {
	if logg == nil {
		logg = logger.Nop()
	}
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.AccessLog(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
	})

	r.Route("/auth", func(r chi.Router) {
		r.Post("/", controllers.AuthRegister(store, logg))
		r.Post("/token", controllers.AuthToken(store, cfg.JWT, logg))
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))

		r.Get("/user", controllers.CurrentUser(store, logg))
		r.Get("/recipe", controllers.ListRecipes(store, logg))

		r.Route("/product", func(r chi.Router) {
			r.Get("/", controllers.ListProducts(store, logg))
			r.Get("/{id}", controllers.GetProduct(store, logg))
		})

		r.Route("/supermarket", func(r chi.Router) {
			r.Get("/", controllers.ListSupermarkets(store, logg))
			r.Get("/{id}", controllers.GetSupermarket(store, logg))
			r.Get("/{id}/products", controllers.SupermarketProducts(store, logg))
		})

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", controllers.ListCart(store, logg))
			r.Post("/", controllers.AddToCart(store, logg))
			r.Delete("/", controllers.ClearCart(store, logg))
			r.Post("/finalize", controllers.FinalizeCart(store, logg))
			r.Get("/{id}", controllers.GetCartItem(store, logg))
			r.Put("/{id}", controllers.UpdateCartItem(store, logg))
			r.Delete("/{id}", controllers.DeleteCartItem(store, logg))
		})

		r.Route("/favorite", func(r chi.Router) {
			r.Get("/", controllers.ListFavorites(store, logg))
			r.Post("/", controllers.AddFavorite(store, logg))
			r.Delete("/{id}", controllers.RemoveFavorite(store, logg))
		})

		r.Route("/shopping-history", func(r chi.Router) {
			r.Get("/", controllers.ListHistory(store, logg))
			r.Get("/{id}", controllers.GetHistory(store, logg))
			r.Delete("/{id}", controllers.DeleteHistory(store, logg))
			r.Get("/{id}/items", controllers.HistoryItems(store, logg))
			r.Post("/{id}/restore-cart", controllers.RestoreHistory(store, logg))
		})
	})

	return r
}
