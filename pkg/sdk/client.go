package sdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client wraps calls to the smartmarket backend
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 120 * time.Second},
	}
}

// APIError is a non-2xx response decoded from the response envelope
type APIError struct {
	Method     string
	Path       string
	StatusCode int
	Message    string
	Detail     any
}

func (e *APIError) Error() string {
	if e.Detail != nil {
		return fmt.Sprintf("[BACKEND]: backend '%s %s' failed: %d: %s (%v)", e.Method, e.Path, e.StatusCode, e.Message, e.Detail)
	}
	return fmt.Sprintf("[BACKEND]: backend '%s %s' failed: %d: %s", e.Method, e.Path, e.StatusCode, e.Message)
}

// itemPath builds an item route with an escaped id
func itemPath(id string, rest ...string) string {
	parts := append([]string{"/api/items", url.PathEscape(id)}, rest...)
	return strings.Join(parts, "/")
}

// doJSON is a helper to perform JSON requests to the backend
func (c *Client) doJSON(ctx context.Context, method, path string, in any, out any) error {
	// Create request body if input is provided
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewBuffer(b)
	}

	// Create the request
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-API-KEY", c.apiKey)
	}

	// Perform the request
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// On error, decode the envelope when there is one
		b, _ := io.ReadAll(resp.Body)
		apiErr := &APIError{Method: method, Path: path, StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(b))}

		var envelope ApiResponse[any]
		if json.Unmarshal(b, &envelope) == nil && envelope.Message != "" {
			apiErr.Message = envelope.Message
			apiErr.Detail = envelope.Error
		}
		return apiErr
	}

	// If no output expected, return early
	if out == nil {
		return nil
	}

	// Decode the response body into the output struct
	dec := json.NewDecoder(resp.Body)
	return dec.Decode(out)
}
