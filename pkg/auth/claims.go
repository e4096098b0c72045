package auth

import (
	"github.com/golang-jwt/jwt/v5"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	UserID   int64
	Username string
	Role     string
}

// AccessTokenClaims mirrors the grocery API token: the username travels in
// sub, the numeric user id in id.
type AccessTokenClaims struct {
	UserID int64  `json:"id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

func validRole(role string) bool {
	return role == RoleUser || role == RoleAdmin
}
