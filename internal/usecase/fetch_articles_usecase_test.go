package usecase

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"post-orchestrator/internal/domain"
)

// stubSearchProvider records queries and replays canned responses in order.
type stubSearchProvider struct {
	queries   []string
	limits    []int
	responses []searchResponse
}

type searchResponse struct {
	articles []domain.CandidateArticle
	err      error
}

func (s *stubSearchProvider) Search(ctx context.Context, query string, maxResults int) ([]domain.CandidateArticle, error) {
	s.queries = append(s.queries, query)
	s.limits = append(s.limits, maxResults)
	resp := s.responses[0]
	if len(s.responses) > 1 {
		s.responses = s.responses[1:]
	}
	return resp.articles, resp.err
}

func (s *stubSearchProvider) Name() string { return "stub-search" }

func newFetchFixture(search *stubSearchProvider) (*fetchArticlesUsecase, *[]time.Duration) {
	var slept []time.Duration
	u := &fetchArticlesUsecase{
		search: search,
		logger: slog.New(slog.NewJSONHandler(io.Discard, nil)),
		sleep: func(ctx context.Context, d time.Duration) error {
			slept = append(slept, d)
			return nil
		},
	}
	return u, &slept
}

func TestFetchArticlesUsecase_Execute_FirstAttemptSucceeds(t *testing.T) {
	search := &stubSearchProvider{responses: []searchResponse{
		{articles: []domain.CandidateArticle{{Title: "AI breakthrough announced", URL: "https://example.com/a"}}},
	}}
	u, slept := newFetchFixture(search)

	articles, err := u.Execute(context.Background(), FetchArticlesInput{
		Topic: "  artificial intelligence  ",
		Date:  "2025-01-15",
		Count: 5,
	})
	require.NoError(t, err)

	assert.Len(t, articles, 1)
	assert.Equal(t, []string{"artificial intelligence after:2025-01-15"}, search.queries)
	assert.Equal(t, []int{5}, search.limits)
	assert.Empty(t, *slept)
}

func TestFetchArticlesUsecase_Execute_RetriesWithBackoff(t *testing.T) {
	search := &stubSearchProvider{responses: []searchResponse{
		{err: errors.New("rate limited")},
		{err: errors.New("rate limited")},
		{articles: []domain.CandidateArticle{{Title: "Recovered", URL: "https://example.com/b"}}},
	}}
	u, slept := newFetchFixture(search)

	articles, err := u.Execute(context.Background(), FetchArticlesInput{Topic: "ai", Date: "2025-01-15", Count: 3})
	require.NoError(t, err)

	assert.Len(t, articles, 1)
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, *slept)
	assert.Len(t, search.queries, 3)
}

func TestFetchArticlesUsecase_Execute_ExhaustsRetries(t *testing.T) {
	search := &stubSearchProvider{responses: []searchResponse{
		{err: errors.New("service unavailable")},
	}}
	u, slept := newFetchFixture(search)

	_, err := u.Execute(context.Background(), FetchArticlesInput{Topic: "ai", Date: "2025-01-15", Count: 3})
	require.Error(t, err)

	var upstreamErr *domain.UpstreamServiceError
	require.ErrorAs(t, err, &upstreamErr)
	assert.Equal(t, "stub-search", upstreamErr.Service)
	assert.Len(t, search.queries, 4)
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second, 4 * time.Second}, *slept)
}

func TestFetchArticlesUsecase_Execute_CapsRequestedCount(t *testing.T) {
	search := &stubSearchProvider{responses: []searchResponse{
		{articles: []domain.CandidateArticle{}},
	}}
	u, _ := newFetchFixture(search)

	_, err := u.Execute(context.Background(), FetchArticlesInput{Topic: "ai", Date: "2025-01-15", Count: 50})
	require.NoError(t, err)

	assert.Equal(t, []int{searchProviderLimit}, search.limits)
}

func TestFetchArticlesUsecase_Execute_CancelledDuringBackoff(t *testing.T) {
	search := &stubSearchProvider{responses: []searchResponse{
		{err: errors.New("rate limited")},
	}}
	u := &fetchArticlesUsecase{
		search: search,
		logger: slog.New(slog.NewJSONHandler(io.Discard, nil)),
		sleep: func(ctx context.Context, d time.Duration) error {
			return context.Canceled
		},
	}

	_, err := u.Execute(context.Background(), FetchArticlesInput{Topic: "ai", Date: "2025-01-15", Count: 3})
	assert.ErrorIs(t, err, context.Canceled)
}
