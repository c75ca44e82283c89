package genai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/rs/zerolog"
)

// ErrUnavailable wraps transport failures and upstream 5xx/429 responses.
// Callers surface it as a retryable upstream error.
var ErrUnavailable = errors.New("generation service unavailable")

// Turn roles for conversation replay.
const (
	RoleUser  = "user"
	RoleModel = "model"
)

// Turn is one role-tagged message of a conversation. Prior session history
// is replayed as an explicit turn list on every call; the service itself
// holds no conversation state.
type Turn struct {
	Role string
	Text string
}

// ChatRequest is one stateless generation call: a system instruction, the
// replayed history, and the new user prompt.
type ChatRequest struct {
	SystemInstruction string
	History           []Turn
	Prompt            string
}

// TextClient sends one chat turn to a generative-text service and returns
// the raw reply text.
type TextClient interface {
	Send(ctx context.Context, req ChatRequest) (string, error)
}

// ClientConfig holds configuration for the generative-text client.
type ClientConfig struct {
	// BaseURL of the generative-language API.
	BaseURL string
	APIKey  string

	// Model name, e.g. "gemini-1.5-flash".
	Model string

	// MaxAttempts bounds retries on transport failures and 5xx/429.
	// Default: 3
	MaxAttempts int

	// HTTPClient overrides the default client (tests).
	HTTPClient *http.Client
}

// ApplyDefaults applies default values to unset configuration fields.
func (c *ClientConfig) ApplyDefaults() {
	if c.Model == "" {
		c.Model = "gemini-1.5-flash"
	}
	if c.MaxAttempts == 0 {
		c.MaxAttempts = 3
	}
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{Timeout: 60 * time.Second}
	}
}

// Validate checks that the client configuration is valid.
func (c *ClientConfig) Validate() error {
	if c.BaseURL == "" {
		return errors.New("generation base URL is required")
	}
	if c.APIKey == "" {
		return errors.New("generation API key is required")
	}
	return nil
}

// Client calls a Gemini-style generateContent endpoint with a structured
// JSON response schema.
type Client struct {
	cfg        ClientConfig
	httpClient *http.Client
}

// NewClient creates a generative-text client.
func NewClient(cfg ClientConfig) (*Client, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Client{cfg: cfg, httpClient: cfg.HTTPClient}, nil
}

type wirePart struct {
	Text string `json:"text"`
}

type wireContent struct {
	Role  string     `json:"role,omitempty"`
	Parts []wirePart `json:"parts"`
}

type wireGenerationConfig struct {
	Temperature      float64 `json:"temperature"`
	TopP             float64 `json:"topP"`
	TopK             int     `json:"topK"`
	MaxOutputTokens  int     `json:"maxOutputTokens"`
	ResponseMIMEType string  `json:"responseMimeType"`
}

type wireRequest struct {
	SystemInstruction *wireContent         `json:"systemInstruction,omitempty"`
	Contents          []wireContent        `json:"contents"`
	GenerationConfig  wireGenerationConfig `json:"generationConfig"`
}

type wireResponse struct {
	Candidates []struct {
		Content struct {
			Parts []wirePart `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// Send posts one generateContent call and returns the first candidate's
// text. Transport failures and 5xx/429 are retried with exponential
// backoff; other HTTP errors fail immediately.
func (c *Client) Send(ctx context.Context, req ChatRequest) (string, error) {
	body, err := json.Marshal(c.buildWireRequest(req))
	if err != nil {
		return "", fmt.Errorf("failed to marshal generation request: %w", err)
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent", c.cfg.BaseURL, c.cfg.Model)

	operation := func() (string, error) {
		return c.doOnce(ctx, url, body)
	}

	text, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxTries(uint(c.cfg.MaxAttempts)),
	)
	if err != nil {
		return "", err
	}

	return text, nil
}

func (c *Client) doOnce(ctx context.Context, url string, body []byte) (string, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", backoff.Permanent(err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-Goog-Api-Key", c.cfg.APIKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close() //nolint:errcheck

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: reading response: %v", ErrUnavailable, err)
	}

	switch {
	case resp.StatusCode == http.StatusOK:
		// handled below
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		zerolog.Ctx(ctx).Warn().
			Int("status", resp.StatusCode).
			Msg("generation service returned retryable error")
		return "", fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	default:
		return "", backoff.Permanent(fmt.Errorf("generation request rejected: status %d: %s", resp.StatusCode, payload))
	}

	var wire wireResponse
	if err := json.Unmarshal(payload, &wire); err != nil {
		return "", backoff.Permanent(fmt.Errorf("%w: %v", ErrSchemaViolation, err))
	}

	if len(wire.Candidates) == 0 || len(wire.Candidates[0].Content.Parts) == 0 {
		return "", backoff.Permanent(fmt.Errorf("%w: empty candidate list", ErrSchemaViolation))
	}

	return wire.Candidates[0].Content.Parts[0].Text, nil
}

func (c *Client) buildWireRequest(req ChatRequest) wireRequest {
	contents := make([]wireContent, 0, len(req.History)+1)
	for _, turn := range req.History {
		contents = append(contents, wireContent{
			Role:  turn.Role,
			Parts: []wirePart{{Text: turn.Text}},
		})
	}
	contents = append(contents, wireContent{
		Role:  RoleUser,
		Parts: []wirePart{{Text: req.Prompt}},
	})

	wire := wireRequest{
		Contents: contents,
		GenerationConfig: wireGenerationConfig{
			Temperature:      1,
			TopP:             0.95,
			TopK:             64,
			MaxOutputTokens:  8192,
			ResponseMIMEType: "application/json",
		},
	}

	if req.SystemInstruction != "" {
		wire.SystemInstruction = &wireContent{
			Parts: []wirePart{{Text: req.SystemInstruction}},
		}
	}

	return wire
}
