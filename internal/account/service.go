// Package account signs users in and out and registers new accounts.
package account

import (
	"context"
	"strings"

	"github.com/angelmondragon/spesa/api/validators"
	"github.com/angelmondragon/spesa/internal/catalog"
	"github.com/angelmondragon/spesa/internal/session"
	"github.com/angelmondragon/spesa/pkg/auth"
	pkgerrors "github.com/angelmondragon/spesa/pkg/errors"
	"github.com/angelmondragon/spesa/pkg/logger"
)

const invalidCredentialsMessage = "Invalid email or password"

// API is the auth surface of the REST client.
type API interface {
	Login(ctx context.Context, username, password string) (catalog.Token, error)
	Register(ctx context.Context, payload catalog.Registration) error
	CurrentUser(ctx context.Context) (catalog.User, error)
}

// RegisterRequest is the registration form. The role is always user.
type RegisterRequest struct {
	Username  string
	Email     string
	FirstName string
	LastName  string
	Password  string
}

// ServiceParams bundles the dependencies required to build a Service.
type ServiceParams struct {
	API    API
	Tokens session.Store
	Logger *logger.Logger
}

type Service struct {
	api    API
	tokens session.Store
	logg   *logger.Logger
}

func NewService(params ServiceParams) (*Service, error) {
	if params.API == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "api client required")
	}
	if params.Tokens == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "session store required")
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	return &Service{api: params.API, tokens: params.Tokens, logg: logg}, nil
}

// Login exchanges credentials for a token, persists it and returns its claims.
// Any rejection by the server is reported as invalid credentials.
func (s *Service) Login(ctx context.Context, username, password string) (*auth.AccessTokenClaims, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "username and password are required")
	}

	token, err := s.api.Login(ctx, username, password)
	if err != nil {
		if pkgerrors.Is(err, pkgerrors.CodeNetwork) {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeRequestFailed, err, invalidCredentialsMessage)
	}
	if token.AccessToken == "" {
		return nil, pkgerrors.New(pkgerrors.CodeIntegrity, "login response carried no token")
	}
	claims, err := auth.ReadClaims(token.AccessToken)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeIntegrity, err, "login response carried an unreadable token")
	}
	if err := s.tokens.Save(ctx, token.AccessToken); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "could not store the session")
	}

	s.logg.Info(s.logg.WithUserID(ctx, claims.OwnerID()), "account.login")
	return claims, nil
}

// Register validates and submits a new account. It does not sign the user in.
func (s *Service) Register(ctx context.Context, req RegisterRequest) error {
	payload := catalog.Registration{
		Username:  strings.TrimSpace(req.Username),
		Email:     strings.TrimSpace(req.Email),
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
		Password:  req.Password,
		Role:      auth.RoleUser,
	}
	if err := validators.Struct(payload); err != nil {
		return err
	}
	if err := s.api.Register(ctx, payload); err != nil {
		return err
	}
	s.logg.Info(s.logg.WithField(ctx, "username", payload.Username), "account.registered")
	return nil
}

// Logout forgets the stored token.
func (s *Service) Logout(ctx context.Context) error {
	if err := s.tokens.Clear(ctx); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "could not clear the session")
	}
	s.logg.Info(ctx, "account.logout")
	return nil
}

// Claims returns the claims of the stored token, or nil when signed out.
func (s *Service) Claims(ctx context.Context) (*auth.AccessTokenClaims, error) {
	claims, err := session.CurrentClaims(ctx, s.tokens)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeIntegrity, err, "stored session is unreadable")
	}
	return claims, nil
}

func (s *Service) CurrentUser(ctx context.Context) (catalog.User, error) {
	return s.api.CurrentUser(ctx)
}
