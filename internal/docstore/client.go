package docstore

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/goccy/go-json"
)

// Client is a Resource backed by a remote document API. Documents live under
// /api/resource/{doctype}/{name}; named methods are invoked via /api/method.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a document API client for the given base URL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *Client) resourceURL(doctype, name string) string {
	return fmt.Sprintf("%s/api/resource/%s/%s",
		c.baseURL, url.PathEscape(doctype), url.PathEscape(name))
}

// Load implements Resource.
func (c *Client) Load(ctx context.Context, doctype, name string) (json.RawMessage, error) {
	body, err := c.do(ctx, http.MethodGet, c.resourceURL(doctype, name), nil)
	if err != nil {
		return nil, err
	}
	return body, nil
}

// Save implements Resource.
func (c *Client) Save(ctx context.Context, doctype, name string, doc any) error {
	payload, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode %s %s: %w", doctype, name, err)
	}
	_, err = c.do(ctx, http.MethodPut, c.resourceURL(doctype, name), payload)
	return err
}

// Delete implements Resource.
func (c *Client) Delete(ctx context.Context, doctype, name string) error {
	_, err := c.do(ctx, http.MethodDelete, c.resourceURL(doctype, name), nil)
	return err
}

// Call implements Resource.
func (c *Client) Call(ctx context.Context, doctype, name, method string, args map[string]any) (json.RawMessage, error) {
	payload, err := json.Marshal(map[string]any{
		"doctype": doctype,
		"name":    name,
		"method":  method,
		"args":    args,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode call args: %w", err)
	}
	return c.do(ctx, http.MethodPost, c.baseURL+"/api/method", payload)
}

func (c *Client) do(ctx context.Context, method, u string, body []byte) (json.RawMessage, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("document store request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrNotFound
	case resp.StatusCode >= 400:
		return nil, fmt.Errorf("document store returned %d: %s", resp.StatusCode, data)
	}
	return data, nil
}
