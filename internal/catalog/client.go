// Package catalog pushes extracted records to the downstream catalog service.
package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/dgallion1/reportgest/internal/record"
)

// KeyPrefix is the catalog path records are stored under.
const KeyPrefix = "catalog/records/"

// RetryableError marks failures worth retrying: transport errors and 5xx or
// 429 responses.
type RetryableError struct {
	Err error
}

func (e *RetryableError) Error() string { return e.Err.Error() }
func (e *RetryableError) Unwrap() error { return e.Err }

// Client communicates with the catalog HTTP API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// PutRequest is the body for PUT /kv/{key}.
type PutRequest struct {
	Value  *record.Record `json:"value"`
	Source string         `json:"source,omitempty"`
	Failed bool           `json:"failed,omitempty"`
}

// Key returns the catalog key for a SKU.
func Key(sku string) string {
	return KeyPrefix + url.PathEscape(sku)
}

// PutRecord stores or replaces a record under its SKU.
func (c *Client) PutRecord(ctx context.Context, rec *record.Record, failed bool) error {
	if rec == nil || rec.SKU == "" {
		return errors.New("put record: missing sku")
	}
	body, err := json.Marshal(PutRequest{Value: rec, Source: rec.File, Failed: failed})
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}
	key := Key(rec.SKU)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPut, c.baseURL+"/kv/"+key, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return &RetryableError{Err: fmt.Errorf("put record: %w", err)}
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return statusError("put record", key, resp)
	}
	return nil
}

// GetRecord retrieves a record by SKU. It returns nil, nil when the catalog
// has no such record.
func (c *Client) GetRecord(ctx context.Context, sku string) (*record.Record, error) {
	key := Key(sku)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/kv/"+key, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, &RetryableError{Err: fmt.Errorf("get record: %w", err)}
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, statusError("get record", key, resp)
	}

	var node struct {
		Value record.Record `json:"value"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&node); err != nil {
		return nil, fmt.Errorf("decode record: %w", err)
	}
	return &node.Value, nil
}

// DeleteRecord removes a record from the catalog.
func (c *Client) DeleteRecord(ctx context.Context, sku string) error {
	key := Key(sku)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.baseURL+"/kv/"+key, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return &RetryableError{Err: fmt.Errorf("delete record: %w", err)}
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent && resp.StatusCode != http.StatusNotFound {
		return statusError("delete record", key, resp)
	}
	return nil
}

func statusError(op, key string, resp *http.Response) error {
	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
	err := fmt.Errorf("%s %s: status %d: %s", op, key, resp.StatusCode, string(respBody))
	if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
		return &RetryableError{Err: err}
	}
	return err
}

// Close releases idle connections.
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}
