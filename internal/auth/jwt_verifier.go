package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"

	"github.com/msb418/it-asset-tracker/internal/domain"
	"github.com/msb418/it-asset-tracker/internal/domain/models"
)

// OIDCConfig describes the identity provider whose ID tokens are accepted.
type OIDCConfig struct {
	Issuer   string
	JWKSURL  string
	Audience string
}

// OIDCVerifier verifies provider-signed tokens against the provider's JWKS.
type OIDCVerifier struct {
	jwks     keyfunc.Keyfunc
	cancel   context.CancelFunc
	issuer   string
	audience string
	logger   *slog.Logger
}

// NewOIDCVerifier builds a verifier for cfg. When JWKSURL is empty it is
// resolved from the issuer's discovery document.
func NewOIDCVerifier(ctx context.Context, cfg OIDCConfig, logger *slog.Logger) (TokenVerifier, error) {
	jwksURL := cfg.JWKSURL
	if jwksURL == "" {
		if cfg.Issuer == "" {
			return nil, errors.New("OIDC issuer or JWKS URL is required")
		}
		doc, err := Discover(ctx, cfg.Issuer, nil)
		if err != nil {
			return nil, err
		}
		jwksURL = doc.JWKSURI
	}

	// keyfunc refreshes keys in the background until its context ends
	jwksCtx, cancel := context.WithCancel(context.Background())
	jwks, err := keyfunc.NewDefaultCtx(jwksCtx, []string{jwksURL})
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to create JWKS client: %w", err)
	}

	logger.Info("OIDC verifier initialized", "jwks_url", jwksURL, "issuer", cfg.Issuer)

	return &OIDCVerifier{
		jwks:     jwks,
		cancel:   cancel,
		issuer:   cfg.Issuer,
		audience: cfg.Audience,
		logger:   logger,
	}, nil
}

// VerifyToken validates signature, expiry, issuer and audience, then the
// identity claims.
func (v *OIDCVerifier) VerifyToken(tokenString string) (*models.IdentityClaims, error) {
	// Only asymmetric algorithms, to rule out alg confusion with the JWKS keys
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{"RS256", "ES256"}),
		jwt.WithExpirationRequired(),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}
	if v.audience != "" {
		opts = append(opts, jwt.WithAudience(v.audience))
	}

	token, err := jwt.ParseWithClaims(tokenString, &models.IdentityClaims{}, v.jwks.Keyfunc, opts...)
	if err != nil || !token.Valid {
		v.logger.Debug("token rejected", "error", err)
		return nil, domain.ErrUnauthorized
	}

	claims, ok := token.Claims.(*models.IdentityClaims)
	if !ok {
		return nil, domain.ErrUnauthorized
	}
	if err := checkIdentity(claims); err != nil {
		v.logger.Debug("token identity rejected", "error", err, "sub", claims.Subject)
		return nil, domain.ErrUnauthorized
	}
	return claims, nil
}

// Close stops the background JWKS refresh.
func (v *OIDCVerifier) Close() error {
	v.cancel()
	v.logger.Info("OIDC verifier closed")
	return nil
}

// checkIdentity requires a usable email and normalizes it, since the email
// is the owner key for every asset.
func checkIdentity(claims *models.IdentityClaims) error {
	claims.Email = strings.ToLower(strings.TrimSpace(claims.Email))
	if claims.Email == "" {
		return errors.New("token has no email claim")
	}
	if claims.EmailVerified != nil && !*claims.EmailVerified {
		return errors.New("email is not verified")
	}
	return nil
}
