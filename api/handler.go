package api

import (
	"net/http"

	"github.com/angelmondragon/spesa/api/routes"
	"github.com/angelmondragon/spesa/internal/devstore"
	"github.com/angelmondragon/spesa/pkg/config"
	"github.com/angelmondragon/spesa/pkg/logger"
)

// NewHandler returns the HTTP handler that cmd/devapi wires into its server.
func NewHandler(cfg *config.Config, logg *logger.Logger, store *devstore.Store) http.Handler {
	return routes.NewRouter(cfg, logg, store)
}
