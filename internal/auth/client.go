// Package auth talks to the remote login endpoint of the accounting backend.
//
// The client never returns transport errors to its callers: every outcome is
// folded into a core.LoginResult carrying a message fit for the login form.
package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/leapstack-labs/ledgerdesk/pkg/core"
)

// LoginPath is the login endpoint relative to the API base URL.
const LoginPath = "/Login/Auth.php"

// User-facing failure messages.
const (
	MessageConnectionError = "Unable to reach the server. Please try again."
	MessageLoginFailed     = "Login failed"
)

// DefaultTimeout bounds a login request when the config does not set one.
const DefaultTimeout = 15 * time.Second

// maxResponseBytes caps how much of a response body is read.
const maxResponseBytes = 1 << 20

// Request is the credentials payload sent to the endpoint.
type Request struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Response is the payload the endpoint answers with.
type Response struct {
	Success bool            `json:"s"`
	Data    json.RawMessage `json:"d,omitempty"`
	Message string          `json:"message,omitempty"`
}

// UnmarshalJSON accepts the loose success flags the backend emits, such as
// 1 or "1", using the same rules as permission flags.
func (r *Response) UnmarshalJSON(data []byte) error {
	var wire struct {
		S       json.RawMessage `json:"s"`
		D       json.RawMessage `json:"d"`
		Message string          `json:"message"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}

	var flag any
	if len(wire.S) > 0 {
		if err := json.Unmarshal(wire.S, &flag); err != nil {
			return fmt.Errorf("success flag: %w", err)
		}
	}
	*r = Response{Success: core.Truthy(flag), Data: wire.D, Message: wire.Message}
	return nil
}

// Config configures a Client.
type Config struct {
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// Client logs users in against the remote endpoint.
type Client struct {
	endpoint string
	http     *http.Client
	logger   *slog.Logger
}

// NewClient creates a Client for the API at cfg.BaseURL.
func NewClient(cfg Config) *Client {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Client{
		endpoint: strings.TrimSuffix(cfg.BaseURL, "/") + LoginPath,
		http:     httpClient,
		logger:   logger,
	}
}

// Endpoint returns the full login URL.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Login sends the credentials and normalizes the answer.
func (c *Client) Login(ctx context.Context, username, password string) core.LoginResult {
	resp, err := c.post(ctx, Request{Username: username, Password: password})
	if err != nil {
		c.logger.Warn("login request failed", "endpoint", c.endpoint, "username", username, "error", err)
		return core.LoginFailed(MessageConnectionError)
	}

	if !resp.Success {
		msg := strings.TrimSpace(resp.Message)
		if msg == "" {
			msg = MessageLoginFailed
		}
		c.logger.Info("login rejected", "username", username, "message", msg)
		return core.LoginFailed(msg)
	}

	user, err := decodeUser(resp.Data)
	if err != nil {
		c.logger.Warn("login response carried no usable user", "username", username, "error", err)
		return core.LoginFailed(MessageConnectionError)
	}

	c.logger.Info("login accepted", "username", username, "role", user.Role)
	return core.LoginSucceeded(user)
}

func (c *Client) post(ctx context.Context, body Request) (*Response, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	res, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(res.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if res.StatusCode < 200 || res.StatusCode > 299 {
		return nil, fmt.Errorf("unexpected status %d", res.StatusCode)
	}

	var out Response
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &out, nil
}

func decodeUser(data json.RawMessage) (core.User, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return core.User{}, fmt.Errorf("missing user payload")
	}
	var u core.User
	if err := json.Unmarshal(data, &u); err != nil {
		return core.User{}, fmt.Errorf("failed to decode user: %w", err)
	}
	return u, nil
}
