package controllers

import (
	"net/http"

	"github.com/angelmondragon/spesa/api/middleware"
	"github.com/angelmondragon/spesa/api/responses"
	"github.com/angelmondragon/spesa/api/validators"
	"github.com/angelmondragon/spesa/internal/devstore"
	"github.com/angelmondragon/spesa/pkg/logger"
)

type favoriteRequest struct {
	ProductID int64 `json:"product_id" validate:"gt=0"`
}

// ListFavorites handles GET /favorite and answers a list of product ids.
func ListFavorites(store *devstore.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, store.Favorites(r.Context(), middleware.UserIDFromContext(r.Context())))
	}
}

func AddFavorite(store *devstore.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req favoriteRequest
		if err := validators.DecodeJSONBody(w, r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := store.AddFavorite(r.Context(), middleware.UserIDFromContext(r.Context()), req.ProductID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteCreated(w, map[string]any{"status": "added", "product_id": req.ProductID})
	}
}

// RemoveFavorite handles DELETE /favorite/{id}; id is a product id.
func RemoveFavorite(store *devstore.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.PathID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := store.RemoveFavorite(r.Context(), middleware.UserIDFromContext(r.Context()), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteNoContent(w)
	}
}
