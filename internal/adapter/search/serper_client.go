package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"post-orchestrator/internal/domain"
	"post-orchestrator/internal/infra/httpclient"
)

const (
	serperDefaultBaseURL = "https://google.serper.dev"
	serperTimeout        = 30 * time.Second

	// Serper's free tier allows 50 requests per minute. The limiter stays
	// below that so retries never trip the provider-side limit.
	serperRequestsPerSecond = 0.75
	serperBurst             = 3
)

// SerperClient queries the Serper news search API.
type SerperClient struct {
	BaseURL string
	apiKey  string
	client  *http.Client
	limiter *rate.Limiter
	logger  *slog.Logger
}

// NewSerperClient creates the Serper search provider.
func NewSerperClient(apiKey string, logger *slog.Logger) *SerperClient {
	return &SerperClient{
		BaseURL: serperDefaultBaseURL,
		apiKey:  apiKey,
		client:  httpclient.NewPooledClient(serperTimeout),
		limiter: rate.NewLimiter(rate.Limit(serperRequestsPerSecond), serperBurst),
		logger:  logger,
	}
}

func (c *SerperClient) Name() string { return "serper" }

type serperRequest struct {
	Query string `json:"q"`
	Num   int    `json:"num"`
}

type serperResponse struct {
	News []serperNewsItem `json:"news"`
}

type serperNewsItem struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Source  string `json:"source"`
	Snippet string `json:"snippet"`
	Date    string `json:"date"`
}

// Search runs one news query. Items missing a title or link are dropped at
// the boundary so downstream stages only see presentable candidates.
func (c *SerperClient) Search(ctx context.Context, query string, maxResults int) ([]domain.CandidateArticle, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	start := time.Now()

	jsonData, err := json.Marshal(serperRequest{Query: query, Num: maxResults})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.BaseURL+"/news", bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-KEY", c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call serper: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("serper returned status %d: %s", resp.StatusCode, body)
	}

	var parsed serperResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	articles := make([]domain.CandidateArticle, 0, len(parsed.News))
	for i, item := range parsed.News {
		if item.Title == "" || item.Link == "" {
			continue
		}
		articles = append(articles, domain.CandidateArticle{
			Title:       item.Title,
			URL:         item.Link,
			Source:      item.Source,
			Snippet:     item.Snippet,
			PublishedAt: item.Date,
			Position:    i,
		})
	}

	c.logger.Info("serper_search_completed",
		slog.String("query", query),
		slog.Int("results", len(articles)),
		slog.Duration("elapsed", time.Since(start)))

	return articles, nil
}
