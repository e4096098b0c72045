package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/angelmondragon/spesa/api/middleware"
	"github.com/angelmondragon/spesa/api/responses"
	"github.com/angelmondragon/spesa/api/validators"
	"github.com/angelmondragon/spesa/internal/catalog"
	"github.com/angelmondragon/spesa/internal/devstore"
	pkgerrors "github.com/angelmondragon/spesa/pkg/errors"
	"github.com/angelmondragon/spesa/pkg/logger"
)

type cartRequest struct {
	ProductID int64 `json:"product_id" validate:"gt=0"`
	Quantity  int   `json:"quantity" validate:"gt=0"`
	Checked   bool  `json:"checked"`
}

type cartUpdateRequest struct {
	Quantity *int  `json:"quantity" validate:"omitempty,gt=0"`
	Checked  *bool `json:"checked"`
}

// ListCart handles GET /cart, optionally restricted to one supermarket.
func ListCart(store *devstore.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		supermarketID, _, err := validators.QueryID(r, "supermarket_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		items, err := store.Cart(r.Context(), middleware.UserIDFromContext(r.Context()), supermarketID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, items)
	}
}

func GetCartItem(store *devstore.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.PathID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		item, err := store.CartItem(r.Context(), middleware.UserIDFromContext(r.Context()), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, item)
	}
}

// AddToCart handles POST /cart and answers the stored row.
func AddToCart(store *devstore.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req cartRequest
		if err := validators.DecodeJSONBody(w, r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		item, err := store.AddToCart(r.Context(), middleware.UserIDFromContext(r.Context()), req.ProductID, req.Quantity, req.Checked)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteCreated(w, item)
	}
}

// UpdateCartItem handles PUT /cart/{id}.
func UpdateCartItem(store *devstore.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.PathID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req cartUpdateRequest
		if err := validators.DecodeJSONBody(w, r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := store.UpdateCartItem(r.Context(), middleware.UserIDFromContext(r.Context()), id, req.Quantity, req.Checked); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteNoContent(w)
	}
}

func DeleteCartItem(store *devstore.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.PathID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := store.DeleteCartItem(r.Context(), middleware.UserIDFromContext(r.Context()), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteNoContent(w)
	}
}

// ClearCart handles DELETE /cart with the optional supermarket_id and
// checked filters.
func ClearCart(store *devstore.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var filter devstore.CartFilter
		supermarketID, ok, err := validators.QueryID(r, "supermarket_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if ok {
			filter.SupermarketID = &supermarketID
		}
		if raw := strings.TrimSpace(r.URL.Query().Get("checked")); raw != "" {
			checked, err := strconv.ParseBool(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "checked must be a boolean").
					WithDetails(map[string]string{"checked": "must be a boolean"}))
				return
			}
			filter.Checked = &checked
		}

		deleted, err := store.ClearCart(r.Context(), middleware.UserIDFromContext(r.Context()), filter)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if logg != nil {
			logg.Info(logg.WithField(r.Context(), "deleted", deleted), "cart.cleared")
		}
		responses.WriteNoContent(w)
	}
}

// FinalizeCart handles POST /cart/finalize.
func FinalizeCart(store *devstore.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		n, err := store.Finalize(r.Context(), middleware.UserIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if logg != nil {
			logg.Info(logg.WithField(r.Context(), "finalized_items", n), "cart.finalized")
		}
		responses.WriteSuccess(w, catalog.FinalizeResult{FinalizedItems: n})
	}
}
