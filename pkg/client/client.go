// Package client is a small Go client for the Fibertrack REST API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func New(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("baseURL is required")
	}

	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Query holds the listing parameters of a collection.
type Query struct {
	Page    int
	PerPage int
	Filter  string
	Sort    string
	// Status is a set of visibility classes: active, archived, deleted
	Status []string
}

func (q Query) values() url.Values {
	v := url.Values{}
	if q.Page > 0 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	if q.PerPage > 0 {
		v.Set("per_page", strconv.Itoa(q.PerPage))
	}
	if q.Filter != "" {
		v.Set("filter", q.Filter)
	}
	if q.Sort != "" {
		v.Set("sort", q.Sort)
	}
	if len(q.Status) > 0 {
		v.Set("status", strings.Join(q.Status, ","))
	}
	return v
}

// Meta is the pagination block of a listing.
type Meta struct {
	CurrentPage int   `json:"current_page"`
	PerPage     int   `json:"per_page"`
	Total       int64 `json:"total"`
	LastPage    int   `json:"last_page"`
	From        *int  `json:"from"`
	To          *int  `json:"to"`
}

// Envelope is the common response body. Data is left raw so callers can
// decode into their own types.
type Envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message,omitempty"`
	Data    json.RawMessage `json:"data"`
	Meta    *Meta           `json:"meta,omitempty"`
}

// BulkResult reports a bulk lifecycle action.
type BulkResult struct {
	Action    string `json:"action"`
	Processed []uint `json:"processed"`
	Skipped   []uint `json:"skipped"`
}

// Error is returned for any non-2xx response.
type Error struct {
	StatusCode  int               `json:"code"`
	Message     string            `json:"message"`
	Details     string            `json:"details,omitempty"`
	FieldErrors map[string]string `json:"field_errors,omitempty"`
}

func (e *Error) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("fibertrack: %d %s: %s", e.StatusCode, e.Message, e.Details)
	}
	return fmt.Sprintf("fibertrack: %d %s", e.StatusCode, e.Message)
}

// List fetches one page of a collection.
func (c *Client) List(ctx context.Context, kind string, q Query) (*Envelope, error) {
	return c.do(ctx, http.MethodGet, "/api/v1/"+kind, q.values(), nil)
}

// Get fetches one entity, soft-deleted included.
func (c *Client) Get(ctx context.Context, kind string, id uint) (*Envelope, error) {
	return c.do(ctx, http.MethodGet, fmt.Sprintf("/api/v1/%s/%d", kind, id), nil, nil)
}

// Create posts a new entity.
func (c *Client) Create(ctx context.Context, kind string, entity interface{}) (*Envelope, error) {
	return c.do(ctx, http.MethodPost, "/api/v1/"+kind, nil, entity)
}

// Update applies a partial update.
func (c *Client) Update(ctx context.Context, kind string, id uint, fields interface{}) (*Envelope, error) {
	return c.do(ctx, http.MethodPatch, fmt.Sprintf("/api/v1/%s/%d", kind, id), nil, fields)
}

// Archive, Unarchive, Delete and Restore drive the lifecycle of one entity.
func (c *Client) Archive(ctx context.Context, kind string, id uint) (*Envelope, error) {
	return c.do(ctx, http.MethodPatch, fmt.Sprintf("/api/v1/%s/%d/archive", kind, id), nil, nil)
}

func (c *Client) Unarchive(ctx context.Context, kind string, id uint) (*Envelope, error) {
	return c.do(ctx, http.MethodPatch, fmt.Sprintf("/api/v1/%s/%d/unarchive", kind, id), nil, nil)
}

func (c *Client) Delete(ctx context.Context, kind string, id uint) (*Envelope, error) {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/v1/%s/%d", kind, id), nil, nil)
}

func (c *Client) Restore(ctx context.Context, kind string, id uint) (*Envelope, error) {
	return c.do(ctx, http.MethodPatch, fmt.Sprintf("/api/v1/%s/%d/restore", kind, id), nil, nil)
}

// Bulk applies archive, delete or restore to a set of ids.
func (c *Client) Bulk(ctx context.Context, kind, action string, ids []uint) (*BulkResult, error) {
	env, err := c.do(ctx, http.MethodPost, "/api/v1/"+kind+"/bulk", nil, map[string]interface{}{
		"action": action,
		"ids":    ids,
	})
	if err != nil {
		return nil, err
	}

	var res BulkResult
	if err := json.Unmarshal(env.Data, &res); err != nil {
		return nil, fmt.Errorf("failed to decode bulk result: %w", err)
	}
	return &res, nil
}

// Stats fetches the network rollup, optionally for a single location.
func (c *Client) Stats(ctx context.Context, locationID uint) (*Envelope, error) {
	v := url.Values{}
	if locationID > 0 {
		v.Set("location_id", strconv.FormatUint(uint64(locationID), 10))
	}
	return c.do(ctx, http.MethodGet, "/api/v1/stats", v, nil)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body interface{}) (*Envelope, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode >= 300 {
		apiErr := &Error{StatusCode: resp.StatusCode}
		if json.Unmarshal(raw, apiErr) != nil || apiErr.Message == "" {
			apiErr.Message = http.StatusText(resp.StatusCode)
		}
		apiErr.StatusCode = resp.StatusCode
		return nil, apiErr
	}

	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &env, nil
}
