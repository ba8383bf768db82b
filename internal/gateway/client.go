// Package gateway is the client's only path to the API. Every call is a
// single request with no retry; failures come back as *Error carrying the
// message the user should see.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"care_wallet/internal/domain"
	"care_wallet/internal/schema"

	"github.com/tidwall/gjson"
)

// FallbackMessage is shown when the server gives no usable error text.
const FallbackMessage = "An error occurred. Please try again."

const maxBody = 1 << 20

// Error is a failed call. Status is 0 when the request never got a response.
type Error struct {
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Err }

// Message returns the text to show for err.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	return FallbackMessage
}

// Client calls the care wallet API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient returns a client for the API at baseURL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Submit POSTs payload to path with the bearer token and decodes a 2xx body
// into out.
func (c *Client) Submit(ctx context.Context, path, token string, payload, out any) error {
	return c.do(ctx, http.MethodPost, path, token, payload, out)
}

// CurrentUser returns the identity behind token.
func (c *Client) CurrentUser(ctx context.Context, token string) (*domain.User, error) {
	var resp schema.UserResponse
	if err := c.do(ctx, http.MethodGet, "/api/auth/me", token, nil, &resp); err != nil {
		return nil, err
	}
	return resp.User, nil
}

func (c *Client) do(ctx context.Context, method, path, token string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return &Error{Message: FallbackMessage, Err: fmt.Errorf("marshal request body: %w", err)}
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return &Error{Message: FallbackMessage, Err: fmt.Errorf("create request: %w", err)}
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &Error{Message: FallbackMessage, Err: fmt.Errorf("request failed: %w", err)}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return &Error{Status: resp.StatusCode, Message: FallbackMessage, Err: fmt.Errorf("read response body: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := FallbackMessage
		if gjson.ValidBytes(raw) {
			if v := gjson.GetBytes(raw, "error"); v.Type == gjson.String && v.Str != "" {
				msg = v.Str
			}
		}
		return &Error{Status: resp.StatusCode, Message: msg}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &Error{Status: resp.StatusCode, Message: FallbackMessage, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}
