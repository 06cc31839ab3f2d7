// Package api is the HTTP client for the zebra backend. It attaches
// bearer-token auth, normalizes request paths against the configured base
// URL, and maps failures onto the error kinds in errors.go.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/existflow/zebra/internal/logger"
)

// Credentials supplies the bearer token and is cleared on a 401
type Credentials interface {
	Token() string
	Clear() error
}

// Client talks to the zebra backend
type Client struct {
	baseURL string
	creds   Credentials
	http    *http.Client
}

// NewClient creates a client for the given base URL
func NewClient(baseURL string, creds Credentials) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		creds:   creds,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// do performs a JSON request. A 2xx response with an empty body returns
// (nil, nil); callers must treat nil as "no data".
func (c *Client) do(ctx context.Context, method, path string, body interface{}) (json.RawMessage, error) {
	resp, err := c.send(ctx, method, path, body, "")
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if len(data) == 0 {
		return nil, nil
	}
	if !json.Valid(data) {
		logger.Error("malformed response body", logger.F("path", path))
		return nil, fmt.Errorf("%w: body is not valid JSON", ErrDecode)
	}
	return json.RawMessage(data), nil
}

// doBlob performs a request for an opaque binary payload
func (c *Client) doBlob(ctx context.Context, path, accept string) ([]byte, error) {
	resp, err := c.send(ctx, http.MethodGet, path, nil, accept)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	return io.ReadAll(resp.Body)
}

func (c *Client) send(ctx context.Context, method, path string, body interface{}, accept string) (*http.Response, error) {
	url := c.baseURL + "/" + strings.TrimLeft(path, "/")

	var reader io.Reader
	hasBody := body != nil
	if hasBody {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, err
	}
	if hasBody {
		req.Header.Set("Content-Type", "application/json")
	}
	if accept != "" {
		req.Header.Set("Accept", accept)
	}
	if token := c.creds.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	logger.Debug("http request", logger.F("method", method), logger.F("url", url))

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		resp.Body.Close()
		if err := c.creds.Clear(); err != nil {
			logger.Warn("failed to clear credentials", logger.F("error", err))
		}
		return nil, ErrUnauthorized
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		data, _ := io.ReadAll(resp.Body)
		msg := resp.Status
		var e struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(data, &e) == nil && e.Error != "" {
			msg = e.Error
		}
		logger.Error("http error",
			logger.F("url", url),
			logger.F("status", resp.StatusCode),
			logger.F("message", msg))
		return nil, &RequestError{Status: resp.StatusCode, Message: msg}
	}

	return resp, nil
}

// decodeInto unmarshals a response payload, mapping parse failures onto
// ErrDecode rather than handing back raw text.
func decodeInto(data json.RawMessage, v interface{}) error {
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return nil
}
