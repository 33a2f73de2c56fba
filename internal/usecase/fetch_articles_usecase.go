package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"post-orchestrator/internal/domain"
)

const (
	fetchMaxRetries     = 3
	fetchBaseDelay      = time.Second
	searchProviderLimit = 20
)

// FetchArticlesInput identifies the search to run.
type FetchArticlesInput struct {
	Topic string
	Date  string
	Count int
}

// FetchArticlesUsecase queries the search provider with retry and
// exponential backoff, returning normalized candidate articles.
type FetchArticlesUsecase interface {
	Execute(ctx context.Context, input FetchArticlesInput) ([]domain.CandidateArticle, error)
}

type fetchArticlesUsecase struct {
	search domain.SearchProvider
	logger *slog.Logger
	sleep  func(ctx context.Context, d time.Duration) error
}

// NewFetchArticlesUsecase creates the fetch stage.
func NewFetchArticlesUsecase(search domain.SearchProvider, logger *slog.Logger) FetchArticlesUsecase {
	return &fetchArticlesUsecase{
		search: search,
		logger: logger,
		sleep:  sleepContext,
	}
}

// Execute builds the "{topic} after:{date}" query and fetches with up to
// four attempts. Exhaustion surfaces an UpstreamServiceError carrying the
// last underlying error.
func (u *fetchArticlesUsecase) Execute(ctx context.Context, input FetchArticlesInput) ([]domain.CandidateArticle, error) {
	query := buildSearchQuery(input.Topic, input.Date)

	count := input.Count
	if count > searchProviderLimit {
		count = searchProviderLimit
	}

	var lastErr error
	for attempt := 0; attempt <= fetchMaxRetries; attempt++ {
		articles, err := u.search.Search(ctx, query, count)
		if err == nil {
			u.logger.Info("articles_fetched",
				slog.String("query", query),
				slog.Int("count", len(articles)),
				slog.Int("attempts", attempt+1))
			return articles, nil
		}
		lastErr = err

		if attempt == fetchMaxRetries {
			break
		}

		delay := fetchBaseDelay * (1 << attempt)
		u.logger.Warn("fetch_retrying",
			slog.String("query", query),
			slog.Int("attempt", attempt+1),
			slog.Int("max_attempts", fetchMaxRetries+1),
			slog.Duration("delay", delay),
			slog.String("error", err.Error()))

		if err := u.sleep(ctx, delay); err != nil {
			return nil, err
		}
	}

	u.logger.Error("fetch_retries_exhausted",
		slog.String("query", query),
		slog.String("error", lastErr.Error()))

	return nil, &domain.UpstreamServiceError{
		Service: u.search.Name(),
		Err:     fmt.Errorf("search failed after %d attempts: %w", fetchMaxRetries+1, lastErr),
	}
}

func buildSearchQuery(topic, date string) string {
	return fmt.Sprintf("%s after:%s", strings.TrimSpace(topic), date)
}

// sleepContext blocks for d or until ctx is cancelled, whichever comes first.
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
