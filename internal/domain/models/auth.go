package models

import "github.com/golang-jwt/jwt/v5"

// IdentityClaims is the subset of OIDC ID token claims the tracker relies on.
// The owner of every asset is the verified email address.
type IdentityClaims struct {
	jwt.RegisteredClaims
	Email         string `json:"email"`
	EmailVerified *bool  `json:"email_verified,omitempty"`
	Name          string `json:"name,omitempty"`
}

// GetOwner returns the identity used to scope asset access.
func (c *IdentityClaims) GetOwner() string {
	return c.Email
}
