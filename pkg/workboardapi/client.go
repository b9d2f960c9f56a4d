// Package workboardapi provides a hand-rolled WorkBoard REST API client.
//
// All requests go through Client.do to keep security behavior consistent:
// the base URL is a fixed constant (SSRF guard), the token travels in the
// Authorization header only, every request carries a timeout, and response
// bodies are capped before parsing.
package workboardapi

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

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
)

const serverURL = "https://www.myworkboard.com/wb/apis"

// Response size cap to prevent memory exhaustion (10MB). Checked against the
// actual body length so chunked responses without Content-Length are covered.
const maxResponseSize = 10 * 1024 * 1024

const requestTimeout = 30 * time.Second

// Client is an HTTP client for the WorkBoard API authenticated with a
// static bearer token.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// NewClient creates a WorkBoard API client with the given access token.
func NewClient(token string) *Client {
	return &Client{
		baseURL: serverURL,
		token:   token,
		http:    &http.Client{Timeout: requestTimeout},
	}
}

// do issues a request and returns the decoded JSON body. Non-success status
// codes are mapped to the typed errors in errors.go; any message text taken
// from the response is scrubbed of the token first.
func (c *Client) do(ctx context.Context, method, path string, params url.Values, body any) (any, error) {
	var reqBody io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, errors.Wrap(err, "marshal request body")
		}
		reqBody = bytes.NewReader(b)
	}

	reqURL := c.baseURL + path
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, reqBody)
	if err != nil {
		return nil, errors.Wrap(err, "create request")
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		// Transport failures surface as a generic API error with the
		// token scrubbed from whatever text the transport produced.
		return nil, &APIError{Code: 0, Message: scrub("request failed: "+err.Error(), c.token)}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize+1))
	if err != nil {
		return nil, &APIError{Code: 0, Message: scrub("read response: "+err.Error(), c.token)}
	}
	if len(raw) > maxResponseSize {
		return nil, &APIError{Code: 0, Message: "Response too large"}
	}

	// Cheap shape probe before the full decode. The API sometimes returns
	// HTML error pages with a JSON content type.
	switch jx.DecodeBytes(raw).Next() {
	case jx.Object, jx.Array:
	default:
		return nil, &APIError{Code: resp.StatusCode, Message: "Invalid JSON response"}
	}

	var data any
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, &APIError{Code: resp.StatusCode, Message: scrub("Invalid JSON response: "+err.Error(), c.token)}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, c.errorFor(resp.StatusCode, data)
	}
	return data, nil
}

// errorFor maps an error response to the typed error taxonomy.
func (c *Client) errorFor(status int, data any) error {
	msg := "Unknown error"
	var obj map[string]any
	if m, ok := data.(map[string]any); ok {
		obj = m
		switch v := m["message"].(type) {
		case string:
			msg = v
		case map[string]any:
			msg = fmt.Sprintf("%v", v)
		}
	}

	switch status {
	case http.StatusUnauthorized:
		return &PermissionDeniedError{RequiredScope: "Valid API token"}
	case http.StatusForbidden:
		return &PermissionDeniedError{RequiredScope: "Required permission scope"}
	case http.StatusNotFound:
		return &NotFoundError{Resource: "Resource", Identifier: scrub(msg, c.token)}
	case http.StatusTooManyRequests:
		return &RateLimitError{RetryAfter: retryAfterHint(obj)}
	}
	return &APIError{Code: status, Message: scrub(msg, c.token)}
}

// retryAfterHint extracts the optional retry_after field from a 429 body.
func retryAfterHint(obj map[string]any) int {
	if obj == nil {
		return 0
	}
	switch v := obj["retry_after"].(type) {
	case float64:
		return int(v)
	case string:
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return 0
}

// Get makes a GET request.
func (c *Client) Get(ctx context.Context, path string, params url.Values) (any, error) {
	return c.do(ctx, http.MethodGet, path, params, nil)
}

// Post makes a POST request with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body any) (any, error) {
	return c.do(ctx, http.MethodPost, path, nil, body)
}

// Put makes a PUT request with a JSON body.
func (c *Client) Put(ctx context.Context, path string, body any) (any, error) {
	return c.do(ctx, http.MethodPut, path, nil, body)
}

// Patch makes a PATCH request with a JSON body.
func (c *Client) Patch(ctx context.Context, path string, body any) (any, error) {
	return c.do(ctx, http.MethodPatch, path, nil, body)
}

// Delete makes a DELETE request.
func (c *Client) Delete(ctx context.Context, path string) (any, error) {
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}
