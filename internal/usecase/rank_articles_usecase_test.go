package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"post-orchestrator/internal/domain"
	"post-orchestrator/internal/usecase"
)

// MockTopicProfileRepository mocks the TopicProfileRepository interface.
type MockTopicProfileRepository struct {
	mock.Mock
}

func (m *MockTopicProfileRepository) FindByName(ctx context.Context, topicName string) (*domain.TopicProfile, error) {
	args := m.Called(ctx, topicName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TopicProfile), args.Error(1)
}

func (m *MockTopicProfileRepository) Upsert(ctx context.Context, profile *domain.TopicProfile) error {
	args := m.Called(ctx, profile)
	return args.Error(0)
}

func (m *MockTopicProfileRepository) List(ctx context.Context) ([]domain.TopicProfile, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.TopicProfile), args.Error(1)
}

func candidate(position int, title, url, source, snippet string) domain.CandidateArticle {
	return domain.CandidateArticle{
		Title:    title,
		URL:      url,
		Source:   source,
		Snippet:  snippet,
		Position: position,
	}
}

const fillerSnippet = "This snippet is comfortably long enough to pass the quality filter."

func newRanker(profiles *MockTopicProfileRepository) usecase.RankArticlesUsecase {
	return usecase.NewRankArticlesUsecase(profiles, domain.NewContentHashPolicy(), testLogger())
}

func TestRankArticlesUsecase_Execute_FullPipeline(t *testing.T) {
	profiles := new(MockTopicProfileRepository)
	profiles.On("FindByName", mock.Anything, "ai").Return(&domain.TopicProfile{
		TopicName:      "ai",
		Keywords:       []string{"machine learning", "neural"},
		TrustedSources: []string{"techcrunch.com"},
		PriorityWeight: 1.5,
	}, nil)

	raw := []domain.CandidateArticle{
		candidate(0, "Machine learning models advance", "https://example.com/1", "Example", fillerSnippet),
		candidate(1, "Neural networks explained simply", "https://techcrunch.com/2", "TechCrunch", fillerSnippet),
		candidate(2, "Machine learning models advance", "https://example.com/1", "Example", fillerSnippet),
		candidate(3, "short", "https://example.com/3", "Example", fillerSnippet),
		candidate(4, "A long enough title about gardening", "https://example.com/4", "Example", "tiny"),
		candidate(5, "No URL host on this article at all", "not-a-url", "Example", fillerSnippet),
		candidate(6, "Unrelated story about sports results", "https://example.com/5", "Example", fillerSnippet),
		candidate(7, "Another machine learning milestone", "https://example.com/6", "Example", fillerSnippet),
	}

	ranked, err := newRanker(profiles).Execute(context.Background(), usecase.RankArticlesInput{
		Topic:    "AI",
		Articles: raw,
		Limit:    3,
	})
	require.NoError(t, err)

	require.Len(t, ranked, 3)

	// Scores are non-increasing and every survivor carries a unique hash.
	hashes := make(map[string]bool)
	for i, a := range ranked {
		if i > 0 {
			assert.LessOrEqual(t, a.RelevanceScore, ranked[i-1].RelevanceScore)
		}
		assert.NotEmpty(t, a.ContentHash)
		assert.False(t, hashes[a.ContentHash])
		hashes[a.ContentHash] = true
	}

	// The trusted-source article won on the boost.
	assert.Equal(t, "https://techcrunch.com/2", ranked[0].URL)
	assert.True(t, ranked[0].TrustedSource)
}

func TestRankArticlesUsecase_Execute_DeduplicatesByURLAndTitle(t *testing.T) {
	profiles := new(MockTopicProfileRepository)
	profiles.On("FindByName", mock.Anything, mock.AnythingOfType("string")).Return(nil, nil)

	raw := []domain.CandidateArticle{
		candidate(0, "Quantum computing reaches milestone", "https://example.com/q1", "Example", fillerSnippet),
		candidate(1, "Quantum Computing Reaches Milestone", "https://other.com/q2", "Other", fillerSnippet),
		candidate(2, "A different quantum computing story", "https://example.com/q1", "Example", fillerSnippet),
	}

	ranked, err := newRanker(profiles).Execute(context.Background(), usecase.RankArticlesInput{
		Topic:    "quantum",
		Articles: raw,
		Limit:    10,
	})
	require.NoError(t, err)

	require.Len(t, ranked, 1)
	assert.Equal(t, "https://example.com/q1", ranked[0].URL)
}

func TestRankArticlesUsecase_Execute_NeutralScoreWithoutProfile(t *testing.T) {
	profiles := new(MockTopicProfileRepository)
	profiles.On("FindByName", mock.Anything, mock.AnythingOfType("string")).Return(nil, nil)

	raw := []domain.CandidateArticle{
		candidate(0, "An article about obscure topics", "https://example.com/x", "Example", fillerSnippet),
		candidate(1, "Another article about obscure topics today", "https://example.com/y", "Example", fillerSnippet),
	}

	ranked, err := newRanker(profiles).Execute(context.Background(), usecase.RankArticlesInput{
		Topic:    "numismatics",
		Articles: raw,
		Limit:    10,
	})
	require.NoError(t, err)

	require.Len(t, ranked, 2)
	for _, a := range ranked {
		assert.InDelta(t, 0.5, a.RelevanceScore, 1e-9)
	}
	// Ties resolve by earlier search position.
	assert.Equal(t, 0, ranked[0].Position)
}

func TestRankArticlesUsecase_Execute_CanonicalTopicFallback(t *testing.T) {
	profiles := new(MockTopicProfileRepository)
	profiles.On("FindByName", mock.Anything, "generative ai startups").Return(nil, nil)
	profiles.On("FindByName", mock.Anything, "ai").Return(&domain.TopicProfile{
		TopicName: "ai",
		Keywords:  []string{"startup"},
	}, nil)

	raw := []domain.CandidateArticle{
		candidate(0, "Startup raises a funding round", "https://example.com/f", "Example", fillerSnippet),
		candidate(1, "A completely unrelated article here", "https://example.com/g", "Example", fillerSnippet),
	}

	ranked, err := newRanker(profiles).Execute(context.Background(), usecase.RankArticlesInput{
		Topic:    "Generative AI Startups",
		Articles: raw,
		Limit:    10,
	})
	require.NoError(t, err)

	require.Len(t, ranked, 2)
	assert.Equal(t, "https://example.com/f", ranked[0].URL)
	assert.Greater(t, ranked[0].RelevanceScore, ranked[1].RelevanceScore)
	profiles.AssertExpectations(t)
}

func TestRankArticlesUsecase_Execute_ProfileLookupFailureIsNotFatal(t *testing.T) {
	profiles := new(MockTopicProfileRepository)
	profiles.On("FindByName", mock.Anything, mock.AnythingOfType("string")).Return(nil, errors.New("connection refused"))

	raw := []domain.CandidateArticle{
		candidate(0, "An article that still gets ranked", "https://example.com/z", "Example", fillerSnippet),
	}

	ranked, err := newRanker(profiles).Execute(context.Background(), usecase.RankArticlesInput{
		Topic:    "ai",
		Articles: raw,
		Limit:    5,
	})
	require.NoError(t, err)
	require.Len(t, ranked, 1)
	assert.InDelta(t, 0.5, ranked[0].RelevanceScore, 1e-9)
}

func TestRankArticlesUsecase_Execute_EmptyInput(t *testing.T) {
	profiles := new(MockTopicProfileRepository)

	ranked, err := newRanker(profiles).Execute(context.Background(), usecase.RankArticlesInput{
		Topic: "ai",
		Limit: 5,
	})
	require.NoError(t, err)
	assert.Empty(t, ranked)
	profiles.AssertNotCalled(t, "FindByName", mock.Anything, mock.Anything)
}
