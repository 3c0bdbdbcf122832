package auth

import "github.com/msb418/it-asset-tracker/internal/domain/models"

// TokenVerifier validates bearer tokens and yields the caller's identity.
// The middleware depends only on this, so OIDC and development tokens are
// interchangeable.
type TokenVerifier interface {
	// VerifyToken returns domain.ErrUnauthorized for any token that is
	// malformed, expired, wrongly signed or lacks a usable email.
	VerifyToken(tokenString string) (*models.IdentityClaims, error)

	// Close releases background resources such as JWKS refresh.
	Close() error
}
