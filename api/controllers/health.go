package controllers

import (
	"net/http"

	"github.com/angelmondragon/spesa/api/responses"
	"github.com/angelmondragon/spesa/pkg/config"
)

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Spesa-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}
