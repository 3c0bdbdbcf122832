// Package client is a small HTTP client for the asset API, used by assetctl.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/msb418/it-asset-tracker/internal/domain/models"
	"github.com/msb418/it-asset-tracker/internal/listview"
)

// Client talks to the API with a bearer token.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// New creates a client. A nil httpClient uses one with a 30 second timeout.
func New(baseURL, token string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: httpClient,
	}
}

// WithToken returns a copy of c using token.
func (c *Client) WithToken(token string) *Client {
	cp := *c
	cp.token = token
	return &cp
}

// APIError is a non-2xx response, decoded from problem+json when possible.
type APIError struct {
	Status int
	Title  string
	Detail string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%d %s: %s", e.Status, e.Title, e.Detail)
	}
	return fmt.Sprintf("%d %s", e.Status, e.Title)
}

// IsStatus reports whether err is an APIError with the given status.
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == status
}

// Token is the demo login response.
type Token struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// Identity is the caller as the server sees it.
type Identity struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// DevLogin obtains a demo token for email.
func (c *Client) DevLogin(ctx context.Context, email, name string) (*Token, error) {
	var tok Token
	err := c.doJSON(ctx, http.MethodPost, "/auth/dev/token", nil,
		map[string]string{"email": email, "name": name}, &tok)
	if err != nil {
		return nil, err
	}
	return &tok, nil
}

func (c *Client) Me(ctx context.Context) (*Identity, error) {
	var id Identity
	if err := c.doJSON(ctx, http.MethodGet, "/api/me", nil, nil, &id); err != nil {
		return nil, err
	}
	return &id, nil
}

// List fetches the page described by st from the active list, or the
// trash when trash is set.
func (c *Client) List(ctx context.Context, st listview.State, trash bool) (*models.AssetPage, error) {
	path := "/api/assets"
	if trash {
		path = "/api/assets/trash"
	}
	var page models.AssetPage
	if err := c.doJSON(ctx, http.MethodGet, path, st.Values(), nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (c *Client) Get(ctx context.Context, id string) (*models.Asset, error) {
	var asset models.Asset
	if err := c.doJSON(ctx, http.MethodGet, "/api/assets/"+url.PathEscape(id), nil, nil, &asset); err != nil {
		return nil, err
	}
	return &asset, nil
}

// Create posts fields (wire names) and returns the new id.
func (c *Client) Create(ctx context.Context, fields map[string]interface{}) (string, error) {
	var resp struct {
		ID string `json:"id"`
	}
	if err := c.doJSON(ctx, http.MethodPost, "/api/assets", nil, fields, &resp); err != nil {
		return "", err
	}
	return resp.ID, nil
}

// Update patches fields; a nil value clears the field.
func (c *Client) Update(ctx context.Context, id string, fields map[string]interface{}) (*models.Asset, error) {
	var asset models.Asset
	if err := c.doJSON(ctx, http.MethodPatch, "/api/assets/"+url.PathEscape(id), nil, fields, &asset); err != nil {
		return nil, err
	}
	return &asset, nil
}

// Delete moves an asset to the trash.
func (c *Client) Delete(ctx context.Context, id string) error {
	return c.doJSON(ctx, http.MethodDelete, "/api/assets/"+url.PathEscape(id), nil, nil, nil)
}

func (c *Client) Restore(ctx context.Context, id string) error {
	return c.doJSON(ctx, http.MethodPost, "/api/assets/"+url.PathEscape(id)+"/restore", nil, nil, nil)
}

// Destroy permanently removes a trashed asset.
func (c *Client) Destroy(ctx context.Context, id string) error {
	return c.doJSON(ctx, http.MethodDelete, "/api/assets/"+url.PathEscape(id)+"/permanent", nil, nil, nil)
}

// Bulk applies action to ids.
func (c *Client) Bulk(ctx context.Context, action models.BulkAction, ids []string) (*models.MutationResult, error) {
	var res models.MutationResult
	body := map[string]interface{}{"ids": ids, "action": action}
	if err := c.doJSON(ctx, http.MethodPost, "/api/assets/bulk", nil, body, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// PermanentDelete removes trashed assets by id and returns how many went.
func (c *Client) PermanentDelete(ctx context.Context, ids []string) (int64, error) {
	var res struct {
		Deleted int64 `json:"deleted"`
	}
	if err := c.doJSON(ctx, http.MethodPost, "/api/assets/permanent", nil, map[string]interface{}{"ids": ids}, &res); err != nil {
		return 0, err
	}
	return res.Deleted, nil
}

// Labels returns the printable HTML for ids.
func (c *Client) Labels(ctx context.Context, ids []string) ([]byte, error) {
	body, _, err := c.doRaw(ctx, http.MethodPost, "/api/assets/labels", nil, map[string]interface{}{"ids": ids})
	return body, err
}

// Export downloads the filtered active list and returns the file and its
// suggested name.
func (c *Client) Export(ctx context.Context, st listview.State, format string) ([]byte, string, error) {
	q := st.Values()
	q.Del("page")
	q.Del("pageSize")
	if format != "" {
		q.Set("format", format)
	}

	body, header, err := c.doRaw(ctx, http.MethodGet, "/api/assets/export", q, nil)
	if err != nil {
		return nil, "", err
	}

	filename := "assets." + format
	if _, params, err := mime.ParseMediaType(header.Get("Content-Disposition")); err == nil && params["filename"] != "" {
		filename = params["filename"]
	}
	return body, filename, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, query url.Values, in, out interface{}) error {
	body, _, err := c.doRaw(ctx, method, path, query, in)
	if err != nil {
		return err
	}
	if out == nil || len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func (c *Client) doRaw(ctx context.Context, method, path string, query url.Values, in interface{}) ([]byte, http.Header, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{Status: resp.StatusCode, Title: http.StatusText(resp.StatusCode)}
		var problem struct {
			Title  string `json:"title"`
			Detail string `json:"detail"`
		}
		if json.Unmarshal(body, &problem) == nil {
			if problem.Title != "" {
				apiErr.Title = problem.Title
			}
			apiErr.Detail = problem.Detail
		}
		return nil, nil, apiErr
	}

	return body, resp.Header, nil
}
