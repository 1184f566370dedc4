package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/iudanet/portfolio/pkg/api"
)

// Error is a non-2xx answer of the server
type Error struct {
	Message    string
	StatusCode int
}

func (e *Error) Error() string {
	return fmt.Sprintf("server error (%d): %s", e.StatusCode, e.Message)
}

// IsUnauthorized reports whether err is a 401 answer
func IsUnauthorized(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized
}

// Client talks to the portfolio JSON API
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// NewClient creates a new API client
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return fmt.Errorf("stopped after 10 redirects")
				}
				// keep the bearer token across redirects
				if len(via) > 0 && via[0].Header.Get("Authorization") != "" {
					req.Header.Set("Authorization", via[0].Header.Get("Authorization"))
				}
				return nil
			},
		},
	}
}

// BaseURL returns the server address
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Login exchanges credentials for a token pair
func (c *Client) Login(ctx context.Context, req api.LoginRequest) (*api.TokenResponse, error) {
	var resp api.TokenResponse
	if err := c.doRequest(ctx, http.MethodPost, "/api/v1/auth/login", "", req, &resp); err != nil {
		return nil, fmt.Errorf("login request failed: %w", err)
	}
	return &resp, nil
}

// Refresh rotates the token pair
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*api.TokenResponse, error) {
	var resp api.TokenResponse
	if err := c.doRequest(ctx, http.MethodPost, "/api/v1/auth/refresh", refreshToken, nil, &resp); err != nil {
		return nil, fmt.Errorf("refresh request failed: %w", err)
	}
	return &resp, nil
}

// Logout revokes the refresh tokens of the user
func (c *Client) Logout(ctx context.Context, accessToken string) error {
	if err := c.doRequest(ctx, http.MethodPost, "/api/v1/auth/logout", accessToken, nil, nil); err != nil {
		return fmt.Errorf("logout request failed: %w", err)
	}
	return nil
}

// Health returns the server health
func (c *Client) Health(ctx context.Context) (*api.HealthResponse, error) {
	var resp api.HealthResponse
	if err := c.doRequest(ctx, http.MethodGet, "/api/v1/health", "", nil, &resp); err != nil {
		return nil, fmt.Errorf("health request failed: %w", err)
	}
	return &resp, nil
}

// Snapshot returns the admin view of the content state
func (c *Client) Snapshot(ctx context.Context, token string) (json.RawMessage, error) {
	return c.raw(ctx, http.MethodGet, "/api/v1/admin/portfolio", token, nil)
}

// Reload refetches content from the backend
func (c *Client) Reload(ctx context.Context, token string) (json.RawMessage, error) {
	return c.raw(ctx, http.MethodPost, "/api/v1/admin/reload", token, nil)
}

// Initialize writes seed content into missing records
func (c *Client) Initialize(ctx context.Context, token string) (json.RawMessage, error) {
	return c.raw(ctx, http.MethodPost, "/api/v1/admin/initialize", token, nil)
}

// PatchSingleton merges payload into a singleton record
func (c *Client) PatchSingleton(ctx context.Context, token, kind string, payload json.RawMessage) (json.RawMessage, error) {
	return c.raw(ctx, http.MethodPatch, "/api/v1/admin/singletons/"+url.PathEscape(kind), token, payload)
}

// AddRow appends a row to a collection
func (c *Client) AddRow(ctx context.Context, token, kind string, payload json.RawMessage) (json.RawMessage, error) {
	return c.raw(ctx, http.MethodPost, collectionPath(kind), token, payload)
}

// UpdateRow merges payload into a row
func (c *Client) UpdateRow(ctx context.Context, token, kind, id string, payload json.RawMessage) (json.RawMessage, error) {
	return c.raw(ctx, http.MethodPatch, collectionPath(kind, id), token, payload)
}

// DeleteRow removes a row
func (c *Client) DeleteRow(ctx context.Context, token, kind, id string) error {
	if err := c.doRequest(ctx, http.MethodDelete, collectionPath(kind, id), token, nil, nil); err != nil {
		return fmt.Errorf("delete request failed: %w", err)
	}
	return nil
}

// Reorder sets the row order of a collection
func (c *Client) Reorder(ctx context.Context, token, kind string, ids []string) (json.RawMessage, error) {
	return c.raw(ctx, http.MethodPut, collectionPath(kind, "order"), token, api.ReorderRequest{IDs: ids})
}

// UploadRequest describes a file to upload. Either Folder or Path is set.
type UploadRequest struct {
	Body     io.Reader
	Folder   string
	Path     string
	Filename string
}

// Upload stores a file and returns its public URL
func (c *Client) Upload(ctx context.Context, token string, req UploadRequest) (*api.UploadResponse, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for name, value := range map[string]string{"folder": req.Folder, "path": req.Path} {
		if value == "" {
			continue
		}
		if err := mw.WriteField(name, value); err != nil {
			return nil, fmt.Errorf("failed to write form field: %w", err)
		}
	}
	part, err := mw.CreateFormFile("file", req.Filename)
	if err != nil {
		return nil, fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := io.Copy(part, req.Body); err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finish form: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v1/admin/uploads", &body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", mw.FormDataContentType())
	httpReq.Header.Set("Authorization", "Bearer "+token)

	var resp api.UploadResponse
	if err := c.do(httpReq, &resp); err != nil {
		return nil, fmt.Errorf("upload request failed: %w", err)
	}
	return &resp, nil
}

// DeleteUpload removes a stored file
func (c *Client) DeleteUpload(ctx context.Context, token, objectPath string) error {
	path := "/api/v1/admin/uploads?path=" + url.QueryEscape(objectPath)
	if err := c.doRequest(ctx, http.MethodDelete, path, token, nil, nil); err != nil {
		return fmt.Errorf("delete upload request failed: %w", err)
	}
	return nil
}

func collectionPath(kind string, rest ...string) string {
	path := "/api/v1/admin/collections/" + url.PathEscape(kind)
	for _, segment := range rest {
		path += "/" + url.PathEscape(segment)
	}
	return path
}

func (c *Client) raw(ctx context.Context, method, path, token string, body any) (json.RawMessage, error) {
	var result json.RawMessage
	if err := c.doRequest(ctx, method, path, token, body, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// doRequest sends a JSON request. An empty token sends no Authorization
// header.
func (c *Client) doRequest(ctx context.Context, method, path, token string, body, result any) error {
	var bodyReader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	return c.do(req, result)
}

func (c *Client) do(req *http.Request, result any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &Error{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(respBody))}
		var errResp api.ErrorResponse
		if err := json.Unmarshal(respBody, &errResp); err == nil && errResp.Error != "" {
			apiErr.Message = errResp.Message
			if apiErr.Message == "" {
				apiErr.Message = errResp.Error
			}
		}
		return apiErr
	}

	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}
