package auth

import (
	"errors"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/msb418/it-asset-tracker/internal/domain"
	"github.com/msb418/it-asset-tracker/internal/domain/models"
)

const devIssuer = "asset-tracker-dev"

// DevVerifier signs and verifies HS256 tokens with a shared secret.
// It exists for local development and the CLI; never enable it in production.
type DevVerifier struct {
	secret []byte
	logger *slog.Logger
}

func NewDevVerifier(secret string, logger *slog.Logger) (*DevVerifier, error) {
	if len(secret) < 16 {
		return nil, errors.New("dev auth secret must be at least 16 characters")
	}
	return &DevVerifier{secret: []byte(secret), logger: logger}, nil
}

// IssueToken mints a token for email that expires after ttl.
func (v *DevVerifier) IssueToken(email, name string, ttl time.Duration) (string, error) {
	now := time.Now()
	verified := true
	claims := &models.IdentityClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    devIssuer,
			Subject:   email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Email:         email,
		EmailVerified: &verified,
		Name:          name,
	}
	if err := checkIdentity(claims); err != nil {
		return "", err
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
}

func (v *DevVerifier) VerifyToken(tokenString string) (*models.IdentityClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.IdentityClaims{},
		func(*jwt.Token) (interface{}, error) { return v.secret, nil },
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(devIssuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !token.Valid {
		v.logger.Debug("dev token rejected", "error", err)
		return nil, domain.ErrUnauthorized
	}

	claims := token.Claims.(*models.IdentityClaims)
	if err := checkIdentity(claims); err != nil {
		return nil, domain.ErrUnauthorized
	}
	return claims, nil
}

func (v *DevVerifier) Close() error { return nil }

// ChainVerifier accepts a token if any of its verifiers does.
type ChainVerifier []TokenVerifier

func (c ChainVerifier) VerifyToken(tokenString string) (*models.IdentityClaims, error) {
	for _, v := range c {
		if claims, err := v.VerifyToken(tokenString); err == nil {
			return claims, nil
		}
	}
	return nil, domain.ErrUnauthorized
}

func (c ChainVerifier) Close() error {
	var errs []error
	for _, v := range c {
		errs = append(errs, v.Close())
	}
	return errors.Join(errs...)
}
