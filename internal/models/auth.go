package models

import "github.com/golang-jwt/jwt/v5"

// JWTClaims is the subset of the identity provider's access token used by the API.
type JWTClaims struct {
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// UserID returns the subject of the token.
func (c *JWTClaims) UserID() string {
	return c.Subject
}
