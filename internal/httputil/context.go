package httputil

import (
	"context"
	"net/http"

	"github.com/msb418/it-asset-tracker/internal/domain/models"
)

type contextKey string

const (
	identityKey contextKey = "identity"
)

// WithIdentity stores the verified caller on the request context
func WithIdentity(r *http.Request, claims *models.IdentityClaims) *http.Request {
	ctx := context.WithValue(r.Context(), identityKey, claims)
	return r.WithContext(ctx)
}

// GetIdentity returns the verified caller, or nil when the request is anonymous
func GetIdentity(r *http.Request) *models.IdentityClaims {
	claims, _ := r.Context().Value(identityKey).(*models.IdentityClaims)
	return claims
}

// GetOwner returns the caller's owner identity (email), or "" if anonymous
func GetOwner(r *http.Request) string {
	if claims := GetIdentity(r); claims != nil {
		return claims.GetOwner()
	}
	return ""
}
