package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/angelmondragon/spesa/api/responses"
	"github.com/angelmondragon/spesa/api/validators"
	"github.com/angelmondragon/spesa/internal/catalog"
	"github.com/angelmondragon/spesa/internal/devstore"
	pkgAuth "github.com/angelmondragon/spesa/pkg/auth"
	"github.com/angelmondragon/spesa/pkg/config"
	pkgerrors "github.com/angelmondragon/spesa/pkg/errors"
	"github.com/angelmondragon/spesa/pkg/logger"
)

type registerRequest struct {
	Username  string `json:"username" validate:"required,min=3,max=50"`
	Email     string `json:"email" validate:"required,email"`
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name" validate:"required"`
	Password  string `json:"password" validate:"required,min=6"`
	Role      string `json:"role" validate:"omitempty,oneof=user admin"`
}

// AuthRegister handles POST /auth.
func AuthRegister(store *devstore.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req registerRequest
		if err := validators.DecodeJSONBody(w, r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		user, err := store.CreateUser(r.Context(), catalog.Registration{
			Username:  strings.TrimSpace(req.Username),
			Email:     strings.TrimSpace(req.Email),
			FirstName: strings.TrimSpace(req.FirstName),
			LastName:  strings.TrimSpace(req.LastName),
			Password:  req.Password,
			Role:      req.Role,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if logg != nil {
			logg.Info(logg.WithField(r.Context(), "new_user_id", user.ID), "auth.registered")
		}
		responses.WriteCreated(w, user)
	}
}

// AuthToken handles the form-encoded POST /auth/token login.
func AuthToken(store *devstore.Store, cfg config.JWTConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid form body"))
			return
		}
		username := r.PostForm.Get("username")
		password := r.PostForm.Get("password")
		if username == "" || password == "" {
			details := map[string]string{}
			if username == "" {
				details["username"] = "is required"
			}
			if password == "" {
				details["password"] = "is required"
			}
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "validation failed").WithDetails(details))
			return
		}

		user, err := store.Authenticate(r.Context(), username, password)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		token, err := pkgAuth.MintAccessToken(cfg, time.Now(), pkgAuth.AccessTokenPayload{
			UserID:   user.ID,
			Username: user.Username,
			Role:     user.Role,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint jwt"))
			return
		}

		responses.WriteCreated(w, catalog.Token{AccessToken: token, TokenType: "bearer"})
	}
}
