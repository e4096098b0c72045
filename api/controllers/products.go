package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/angelmondragon/spesa/api/responses"
	"github.com/angelmondragon/spesa/api/validators"
	"github.com/angelmondragon/spesa/internal/devstore"
	pkgerrors "github.com/angelmondragon/spesa/pkg/errors"
	"github.com/angelmondragon/spesa/pkg/logger"
)

const maxCategoryLen = 100

// ListProducts handles GET /product with the optional supermarket_id,
// category, search and discounted_only filters.
func ListProducts(store *devstore.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filter, err := productFilter(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		products, err := store.Products(r.Context(), filter)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, products)
	}
}

func productFilter(r *http.Request) (devstore.ProductFilter, error) {
	var filter devstore.ProductFilter
	id, ok, err := validators.QueryID(r, "supermarket_id")
	if err != nil {
		return filter, err
	}
	if ok {
		filter.SupermarketID = id
	}

	q := r.URL.Query()
	filter.Category = q.Get("category")
	if len(filter.Category) > maxCategoryLen {
		return filter, pkgerrors.New(pkgerrors.CodeValidation, "category is too long").
			WithDetails(map[string]string{"category": "must be at most 100 characters"})
	}
	filter.Search = q.Get("search")
	if raw := strings.TrimSpace(q.Get("discounted_only")); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return filter, pkgerrors.New(pkgerrors.CodeValidation, "discounted_only must be a boolean").
				WithDetails(map[string]string{"discounted_only": "must be a boolean"})
		}
		filter.DiscountedOnly = v
	}
	return filter, nil
}

// GetProduct handles GET /product/{id}.
func GetProduct(store *devstore.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.PathID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		p, err := store.Product(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, p)
	}
}
