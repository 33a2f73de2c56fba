package shortener

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"post-orchestrator/internal/domain"
	"post-orchestrator/internal/infra/httpclient"
)

const (
	tinyURLDefaultBaseURL = "https://api.tinyurl.com"

	// Shortening is decorative. The short timeout keeps a slow shortener
	// from delaying post composition.
	tinyURLTimeout = 5 * time.Second
)

// TinyURLClient shortens links through the TinyURL API.
type TinyURLClient struct {
	BaseURL string
	apiKey  string
	client  *http.Client
}

// NewTinyURLClient creates the URL shortener.
func NewTinyURLClient(apiKey string) domain.URLShortener {
	return &TinyURLClient{
		BaseURL: tinyURLDefaultBaseURL,
		apiKey:  apiKey,
		client:  httpclient.NewPooledClient(tinyURLTimeout),
	}
}

type tinyURLRequest struct {
	URL string `json:"url"`
}

type tinyURLResponse struct {
	Data struct {
		TinyURL string `json:"tiny_url"`
	} `json:"data"`
}

func (c *TinyURLClient) Shorten(ctx context.Context, rawURL string) (string, error) {
	jsonData, err := json.Marshal(tinyURLRequest{URL: rawURL})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.BaseURL+"/create", bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to call tinyurl: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("tinyurl returned status %d: %s", resp.StatusCode, body)
	}

	var parsed tinyURLResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	if parsed.Data.TinyURL == "" {
		return "", fmt.Errorf("tinyurl returned empty link")
	}
	return parsed.Data.TinyURL, nil
}
