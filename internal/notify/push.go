package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ErrSendFailed wraps transport failures and non-2xx responses from the
// push service.
var ErrSendFailed = errors.New("push notification send failed")

// Notifier delivers one push notification to a device.
type Notifier interface {
	Send(ctx context.Context, deviceToken, title, body string) error
}

// ClientConfig holds configuration for the push-notification client.
type ClientConfig struct {
	// BaseURL of the push service.
	BaseURL string

	// ServerKey authorizes send calls.
	ServerKey string

	// HTTPClient overrides the default client (tests).
	HTTPClient *http.Client
}

// ApplyDefaults applies default values to unset configuration fields.
func (c *ClientConfig) ApplyDefaults() {
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{Timeout: 30 * time.Second}
	}
}

// Validate checks that the push client configuration is valid.
func (c *ClientConfig) Validate() error {
	if c.BaseURL == "" {
		return errors.New("push base URL is required")
	}
	if c.ServerKey == "" {
		return errors.New("push server key is required")
	}
	return nil
}

// Client sends push notifications over an FCM-style HTTP API.
type Client struct {
	cfg ClientConfig
}

// NewClient creates a push-notification client.
func NewClient(cfg ClientConfig) (*Client, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Client{cfg: cfg}, nil
}

type sendRequest struct {
	To           string       `json:"to"`
	Notification notification `json:"notification"`
}

type notification struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// Send posts one notification to the device identified by deviceToken.
func (c *Client) Send(ctx context.Context, deviceToken, title, body string) error {
	if deviceToken == "" {
		return fmt.Errorf("%w: empty device token", ErrSendFailed)
	}

	payload, err := json.Marshal(sendRequest{
		To:           deviceToken,
		Notification: notification{Title: title, Body: body},
	})
	if err != nil {
		return fmt.Errorf("failed to marshal push request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/fcm/send", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "key="+c.cfg.ServerKey)

	resp, err := c.cfg.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSendFailed, err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("%w: status %d: %s", ErrSendFailed, resp.StatusCode, detail)
	}

	return nil
}
