// Package docstore is the narrow interface to the external document
// database used for cross-device persistence. Collections are
// slash-separated paths like "schools/school-1/state".
package docstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// Document is one stored record.
type Document struct {
	ID     string         `json:"id"`
	Fields map[string]any `json:"fields"`
}

// Client calls the document store over HTTP.
type Client struct {
	BaseURL string
	HTTP    *http.Client
	Skip    bool
}

// New creates a client. With skip set, writes are acknowledged without
// leaving the process and reads return not-found.
func New(baseURL string, skip bool) *Client {
	return &Client{
		BaseURL: baseURL,
		Skip:    skip,
		HTTP:    &http.Client{Timeout: 15 * time.Second},
	}
}

// Get fetches one document; nil when it does not exist.
func (c *Client) Get(ctx context.Context, path, id string) (*Document, error) {
	if c.Skip {
		return nil, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.docURL(path, id), nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("docstore: get %s/%s: %w", path, id, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode >= 300 {
		return nil, statusError("get", path, resp)
	}

	doc := Document{ID: id}
	if err := json.NewDecoder(resp.Body).Decode(&doc.Fields); err != nil {
		return nil, fmt.Errorf("docstore: decode %s/%s: %w", path, id, err)
	}
	return &doc, nil
}

// Set writes a document at a known id. With merge the stored fields
// are combined server-side; without it the document is replaced.
func (c *Client) Set(ctx context.Context, path, id string, fields map[string]any, merge bool) error {
	if c.Skip {
		return nil
	}

	u := c.docURL(path, id)
	if merge {
		u += "?merge=true"
	}
	body, _ := json.Marshal(fields)
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, u, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("docstore: set %s/%s: %w", path, id, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return statusError("set", path, resp)
	}
	return nil
}

// Add creates a document with a server-assigned id and returns it.
func (c *Client) Add(ctx context.Context, path string, fields map[string]any) (string, error) {
	if c.Skip {
		return "mock-doc", nil
	}

	body, _ := json.Marshal(fields)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.collectionURL(path), bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return "", fmt.Errorf("docstore: add %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return "", statusError("add", path, resp)
	}

	var out struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("docstore: decode add %s: %w", path, err)
	}
	return out.ID, nil
}

// Query lists documents in a collection where field equals value.
func (c *Client) Query(ctx context.Context, path, field string, equals string) ([]Document, error) {
	if c.Skip {
		return nil, nil
	}

	u := c.collectionURL(path) + "?field=" + url.QueryEscape(field) + "&equals=" + url.QueryEscape(equals)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("docstore: query %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return nil, statusError("query", path, resp)
	}

	var out struct {
		Documents []Document `json:"documents"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("docstore: decode query %s: %w", path, err)
	}
	return out.Documents, nil
}

func (c *Client) collectionURL(path string) string {
	return c.BaseURL + "/v1/" + path
}

func (c *Client) docURL(path, id string) string {
	return c.collectionURL(path) + "/" + url.PathEscape(id)
}

func statusError(op, path string, resp *http.Response) error {
	raw, _ := io.ReadAll(resp.Body)
	return fmt.Errorf("docstore: %s %s failed %s: %s", op, path, resp.Status, string(raw))
}
