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

	"github.com/chroniclehq/chronicle/internal/client"
)

// ImageClientConfig holds configuration for the image-generation client.
type ImageClientConfig struct {
	// BaseURL of the image-generation API.
	BaseURL string
	APIKey  string

	// Model name, e.g. "dall-e-2".
	Model string

	// HTTPClient overrides the default client (tests).
	HTTPClient *http.Client

	// DownloadClient fetches generated asset URLs. Defaults to an
	// httpcache-backed client since asset URLs are stable.
	DownloadClient *http.Client
}

// ApplyDefaults applies default values to unset configuration fields.
func (c *ImageClientConfig) ApplyDefaults() {
	if c.Model == "" {
		c.Model = "dall-e-2"
	}
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{Timeout: 120 * time.Second}
	}
	if c.DownloadClient == nil {
		c.DownloadClient = client.NewInMemoryCachingHTTPClient(60 * time.Second)
	}
}

// Validate checks that the image client configuration is valid.
func (c *ImageClientConfig) Validate() error {
	if c.BaseURL == "" {
		return errors.New("image base URL is required")
	}
	if c.APIKey == "" {
		return errors.New("image API key is required")
	}
	return nil
}

// ImageClient calls an OpenAI-style image-generation endpoint and
// downloads the resulting asset.
type ImageClient struct {
	cfg ImageClientConfig
}

// NewImageClient creates an image-generation client.
func NewImageClient(cfg ImageClientConfig) (*ImageClient, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &ImageClient{cfg: cfg}, nil
}

type imageRequest struct {
	Model          string `json:"model"`
	Prompt         string `json:"prompt"`
	N              int    `json:"n"`
	Size           string `json:"size"`
	ResponseFormat string `json:"response_format"`
}

type imageResponse struct {
	Data []struct {
		URL string `json:"url"`
	} `json:"data"`
}

// Generate produces one 1024x1024 image for the prompt and returns the
// downloaded asset bytes. No retry, no content validation beyond HTTP
// success.
func (c *ImageClient) Generate(ctx context.Context, prompt string) ([]byte, error) {
	body, err := json.Marshal(imageRequest{
		Model:          c.cfg.Model,
		Prompt:         prompt,
		N:              1,
		Size:           "1024x1024",
		ResponseFormat: "url",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal image request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/v1/images/generations", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.cfg.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close() //nolint:errcheck

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading response: %v", ErrUnavailable, err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d: %s", ErrUnavailable, resp.StatusCode, payload)
	}

	var wire imageResponse
	if err := json.Unmarshal(payload, &wire); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSchemaViolation, err)
	}
	if len(wire.Data) == 0 || wire.Data[0].URL == "" {
		return nil, fmt.Errorf("%w: no image URL in response", ErrSchemaViolation)
	}

	return c.download(ctx, wire.Data[0].URL)
}

func (c *ImageClient) download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.cfg.DownloadClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: downloading asset: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: asset download status %d", ErrUnavailable, resp.StatusCode)
	}

	return io.ReadAll(resp.Body)
}
