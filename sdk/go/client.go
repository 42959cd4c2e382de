// Package lde provides the Go client for the lead dialogue engine HTTP API.
package lde

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// Client is the dialogue engine API client.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// ClientConfig configures the client.
type ClientConfig struct {
	BaseURL string
	Timeout time.Duration
}

// NewClient creates a new API client.
func NewClient(config ClientConfig) *Client {
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: config.Timeout},
		baseURL:    config.BaseURL,
	}
}

// CreateSession opens a new conversation and returns its id and greeting.
func (c *Client) CreateSession(ctx context.Context) (*Session, error) {
	var resp Session
	if err := c.post(ctx, "/api/sessions", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SendMessage runs one turn of the conversation.
func (c *Client) SendMessage(ctx context.Context, sessionID, message string) (*TurnResult, error) {
	req := messageRequest{SessionID: sessionID, Message: message}
	var resp TurnResult
	if err := c.post(ctx, "/api/message", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Lead returns the lead record captured so far for a session.
func (c *Client) Lead(ctx context.Context, sessionID string) (*LeadRecord, error) {
	var resp struct {
		Lead LeadRecord `json:"lead"`
	}
	if err := c.get(ctx, "/api/sessions/"+url.PathEscape(sessionID)+"/lead", &resp); err != nil {
		return nil, err
	}
	return &resp.Lead, nil
}

// SearchProducts queries the product catalog.
func (c *Client) SearchProducts(ctx context.Context, query string, limit int) ([]ProductMatch, error) {
	q := url.Values{"q": {query}}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	var resp []ProductMatch
	if err := c.get(ctx, "/api/products/search?"+q.Encode(), &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// ReloadKnowledge asks the server to reload its knowledge-base file.
func (c *Client) ReloadKnowledge(ctx context.Context) (*ReloadResult, error) {
	var resp ReloadResult
	if err := c.post(ctx, "/api/knowledge/reload", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Stats returns server-side counters.
func (c *Client) Stats(ctx context.Context) (*Stats, error) {
	var resp Stats
	if err := c.get(ctx, "/api/stats", &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Health reports whether the server answers its health check.
func (c *Client) Health(ctx context.Context) error {
	return c.get(ctx, "/health", nil)
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var apiErr apiError
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err == nil && apiErr.Message != "" {
			return &APIError{Status: resp.StatusCode, Message: apiErr.Message}
		}
		return &APIError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
