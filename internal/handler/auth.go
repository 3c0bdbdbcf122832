package handler

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"github.com/msb418/it-asset-tracker/internal/httputil"
)

// TokenIssuer mints bearer tokens for the demo login.
type TokenIssuer interface {
	IssueToken(email, name string, ttl time.Duration) (string, error)
}

// DevAuthHandler implements the non-production demo login
type DevAuthHandler struct {
	issuer TokenIssuer
	ttl    time.Duration
	logger *slog.Logger
}

// NewDevAuthHandler creates a new demo login handler
func NewDevAuthHandler(issuer TokenIssuer, ttl time.Duration, logger *slog.Logger) *DevAuthHandler {
	return &DevAuthHandler{issuer: issuer, ttl: ttl, logger: logger}
}

type devTokenRequest struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

type devTokenResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// IssueToken mints a short-lived token for any well-formed email
// POST /auth/dev/token {email, name}
func (h *DevAuthHandler) IssueToken(w http.ResponseWriter, r *http.Request) {
	var req devTokenRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	req.Email = strings.TrimSpace(req.Email)

	err := validation.ValidateStruct(&req,
		validation.Field(&req.Email, validation.Required, is.EmailFormat),
		validation.Field(&req.Name, validation.Length(0, 200)),
	)
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	expires := time.Now().Add(h.ttl).UTC()
	token, err := h.issuer.IssueToken(req.Email, req.Name, h.ttl)
	if err != nil {
		handleError(w, err, h.logger)
		return
	}

	h.logger.Info("dev token issued", "email", strings.ToLower(req.Email))
	httputil.RespondJSON(w, http.StatusOK, devTokenResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresAt:   expires,
	})
}
