package auth

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/msb418/it-asset-tracker/internal/domain"
	"github.com/msb418/it-asset-tracker/internal/domain/models"
)

const testSecret = "0123456789abcdef-test"

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newDev(t *testing.T) *DevVerifier {
	t.Helper()
	v, err := NewDevVerifier(testSecret, discardLogger())
	require.NoError(t, err)
	return v
}

func TestDevVerifier_RoundTrip(t *testing.T) {
	v := newDev(t)

	token, err := v.IssueToken("  Alice@Example.com ", "Alice", time.Hour)
	require.NoError(t, err)

	claims, err := v.VerifyToken(token)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", claims.GetOwner())
	assert.Equal(t, "Alice", claims.Name)
}

func TestDevVerifier_Rejects(t *testing.T) {
	v := newDev(t)
	other, err := NewDevVerifier("another-secret-value", discardLogger())
	require.NoError(t, err)

	foreign, err := other.IssueToken("a@example.com", "", time.Hour)
	require.NoError(t, err)
	expired, err := v.IssueToken("a@example.com", "", -time.Minute)
	require.NoError(t, err)

	noEmail := jwt.NewWithClaims(jwt.SigningMethodHS256, &models.IdentityClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    devIssuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	noEmailToken, err := noEmail.SignedString([]byte(testSecret))
	require.NoError(t, err)

	unverified := false
	notVerified := jwt.NewWithClaims(jwt.SigningMethodHS256, &models.IdentityClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    devIssuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Email:         "a@example.com",
		EmailVerified: &unverified,
	})
	notVerifiedToken, err := notVerified.SignedString([]byte(testSecret))
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{"garbage", "not-a-token"},
		{"wrong secret", foreign},
		{"expired", expired},
		{"missing email", noEmailToken},
		{"unverified email", notVerifiedToken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := v.VerifyToken(tt.token)
			assert.ErrorIs(t, err, domain.ErrUnauthorized)
		})
	}
}

func TestNewDevVerifier_ShortSecret(t *testing.T) {
	_, err := NewDevVerifier("short", discardLogger())
	assert.Error(t, err)
}

func TestChainVerifier(t *testing.T) {
	first, err := NewDevVerifier("first-secret-value", discardLogger())
	require.NoError(t, err)
	second := newDev(t)
	chain := ChainVerifier{first, second}

	token, err := second.IssueToken("b@example.com", "", time.Hour)
	require.NoError(t, err)

	claims, err := chain.VerifyToken(token)
	require.NoError(t, err)
	assert.Equal(t, "b@example.com", claims.Email)

	_, err = chain.VerifyToken("junk")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	assert.NoError(t, chain.Close())
}

func TestDiscover(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/.well-known/openid-configuration" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"issuer":"https://id.example.com","jwks_uri":"https://id.example.com/keys"}`)
	}))
	defer srv.Close()

	meta, err := Discover(context.Background(), srv.URL+"/", srv.Client())
	require.NoError(t, err)
	assert.Equal(t, "https://id.example.com/keys", meta.JWKSURI)

	_, err = Discover(context.Background(), srv.URL+"/missing", srv.Client())
	assert.Error(t, err)
}
