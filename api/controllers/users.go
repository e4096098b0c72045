package controllers

import (
	"net/http"

	"github.com/angelmondragon/spesa/api/middleware"
	"github.com/angelmondragon/spesa/api/responses"
	"github.com/angelmondragon/spesa/internal/devstore"
	"github.com/angelmondragon/spesa/pkg/logger"
)

// CurrentUser handles GET /user.
func CurrentUser(store *devstore.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := store.User(r.Context(), middleware.UserIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, user)
	}
}
