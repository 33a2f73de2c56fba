package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"post-orchestrator/internal/domain"
)

const (
	summaryMaxLength   = 200
	summaryMaxRetries  = 2
	summaryBaseDelay   = 2 * time.Second
	summaryMaxTokens   = 300
	summaryConcurrency = 3
)

// SummarizeInput carries the ranked articles and the caller's preferred
// provider.
type SummarizeInput struct {
	Articles  []domain.ScoredArticle
	Preferred domain.ProviderID
}

// SummarizeOutput records which providers were attempted for the batch.
type SummarizeOutput struct {
	Articles       []domain.SummarizedArticle
	ProvidersTried []domain.ProviderID
	FinalProvider  domain.ProviderID
}

// SummarizeUsecase produces one summary per article using an ordered
// provider chain. Provider selection is made once per batch: a provider is
// abandoned only when it cannot summarize any article at all; individual
// failures fall back to the truncated original snippet.
type SummarizeUsecase interface {
	Execute(ctx context.Context, input SummarizeInput) (*SummarizeOutput, error)
}

type summarizeUsecase struct {
	registry *domain.ProviderRegistry
	prompts  PromptBuilder
	logger   *slog.Logger
	sleep    func(ctx context.Context, d time.Duration) error
}

// NewSummarizeUsecase creates the summarization stage.
func NewSummarizeUsecase(registry *domain.ProviderRegistry, prompts PromptBuilder, logger *slog.Logger) SummarizeUsecase {
	return &summarizeUsecase{
		registry: registry,
		prompts:  prompts,
		logger:   logger,
		sleep:    sleepContext,
	}
}

func (u *summarizeUsecase) Execute(ctx context.Context, input SummarizeInput) (*SummarizeOutput, error) {
	if len(input.Articles) == 0 {
		return &SummarizeOutput{Articles: []domain.SummarizedArticle{}}, nil
	}

	order := domain.ProviderOrder(input.Preferred)

	var tried []domain.ProviderID
	var lastErr error

	for _, providerID := range order {
		tried = append(tried, providerID)

		client, err := u.registry.Client(providerID)
		if err != nil {
			// Missing credentials: skip to the next provider without a call.
			lastErr = err
			u.logger.Warn("provider_unavailable",
				slog.String("provider", string(providerID)),
				slog.String("error", err.Error()))
			continue
		}

		articles, err := u.summarizeBatch(ctx, input.Articles, client)
		if err != nil {
			lastErr = err
			u.logger.Warn("provider_failed",
				slog.String("provider", string(providerID)),
				slog.String("error", err.Error()))
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			continue
		}

		u.logger.Info("batch_summarized",
			slog.String("provider", string(providerID)),
			slog.Int("articles", len(articles)),
			slog.Int("providers_tried", len(tried)))

		return &SummarizeOutput{
			Articles:       articles,
			ProvidersTried: tried,
			FinalProvider:  providerID,
		}, nil
	}

	triedNames := make([]string, len(tried))
	for i, p := range tried {
		triedNames[i] = string(p)
	}
	return nil, &domain.LanguageProviderError{ProvidersTried: triedNames, Err: lastErr}
}

// summarizeBatch runs per-article generation on a bounded pool, preserving
// input order. The provider fails the batch only when every article fell
// back to its snippet.
func (u *summarizeUsecase) summarizeBatch(ctx context.Context, articles []domain.ScoredArticle, client domain.LanguageModelProvider) ([]domain.SummarizedArticle, error) {
	results := make([]domain.SummarizedArticle, len(articles))
	generated := make([]bool, len(articles))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(summaryConcurrency)

	for i, article := range articles {
		g.Go(func() error {
			summary, err := u.generateSummary(gctx, article, client)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				u.logger.Warn("article_summary_failed",
					slog.String("provider", string(client.ID())),
					slog.String("title", truncateForLog(article.Title)),
					slog.String("error", err.Error()))
				results[i] = projectArticle(article, truncateSummary(article.Snippet))
				return nil
			}
			results[i] = projectArticle(article, summary)
			generated[i] = true
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	anyGenerated := false
	for _, ok := range generated {
		if ok {
			anyGenerated = true
			break
		}
	}
	if !anyGenerated {
		return nil, fmt.Errorf("provider %s failed to summarize any article", client.ID())
	}

	return results, nil
}

// generateSummary retries a single article with exponential backoff and
// hard-truncates the output.
func (u *summarizeUsecase) generateSummary(ctx context.Context, article domain.ScoredArticle, client domain.LanguageModelProvider) (string, error) {
	messages := u.prompts.BuildSummaryPrompt(article, summaryMaxLength)

	var lastErr error
	for attempt := 0; attempt <= summaryMaxRetries; attempt++ {
		text, err := client.Complete(ctx, messages, summaryMaxTokens)
		if err == nil {
			summary := strings.TrimSpace(text)
			if summary == "" {
				err = fmt.Errorf("empty summary returned")
			} else {
				return truncateSummary(summary), nil
			}
		}
		lastErr = err

		if attempt == summaryMaxRetries {
			break
		}
		if sleepErr := u.sleep(ctx, summaryBaseDelay*(1<<attempt)); sleepErr != nil {
			return "", sleepErr
		}
	}
	return "", fmt.Errorf("summary generation failed after %d attempts: %w", summaryMaxRetries+1, lastErr)
}

func projectArticle(article domain.ScoredArticle, summary string) domain.SummarizedArticle {
	return domain.SummarizedArticle{
		Title:          article.Title,
		URL:            article.URL,
		Source:         article.Source,
		Summary:        summary,
		PublishedAt:    article.PublishedAt,
		RelevanceScore: article.RelevanceScore,
		TrustedSource:  article.TrustedSource,
		ContentHash:    article.ContentHash,
	}
}

func truncateSummary(s string) string {
	if len(s) <= summaryMaxLength {
		return s
	}
	return truncateRunes(s, summaryMaxLength-3) + "..."
}

func truncateForLog(s string) string {
	return truncateRunes(s, 50)
}
