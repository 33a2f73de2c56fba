package usecase_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"post-orchestrator/internal/domain"
	"post-orchestrator/internal/usecase"
)

// MockQuotaGate mocks the QuotaGateUsecase interface.
type MockQuotaGate struct {
	mock.Mock
}

func (m *MockQuotaGate) Admit(ctx context.Context, input usecase.AdmitRequestInput) (domain.QuotaCounters, error) {
	args := m.Called(ctx, input)
	return args.Get(0).(domain.QuotaCounters), args.Error(1)
}

func (m *MockQuotaGate) Counters(ctx context.Context, sessionID uuid.UUID) (domain.QuotaCounters, error) {
	args := m.Called(ctx, sessionID)
	return args.Get(0).(domain.QuotaCounters), args.Error(1)
}

// MockFetcher mocks the FetchArticlesUsecase interface.
type MockFetcher struct {
	mock.Mock
}

func (m *MockFetcher) Execute(ctx context.Context, input usecase.FetchArticlesInput) ([]domain.CandidateArticle, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CandidateArticle), args.Error(1)
}

// MockRanker mocks the RankArticlesUsecase interface.
type MockRanker struct {
	mock.Mock
}

func (m *MockRanker) Execute(ctx context.Context, input usecase.RankArticlesInput) ([]domain.ScoredArticle, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ScoredArticle), args.Error(1)
}

// MockSummarizer mocks the SummarizeUsecase interface.
type MockSummarizer struct {
	mock.Mock
}

func (m *MockSummarizer) Execute(ctx context.Context, input usecase.SummarizeInput) (*usecase.SummarizeOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.SummarizeOutput), args.Error(1)
}

// MockArticleCache mocks the ArticleCacheRepository interface.
type MockArticleCache struct {
	mock.Mock
}

func (m *MockArticleCache) ExistsByHash(ctx context.Context, contentHash string) (bool, error) {
	args := m.Called(ctx, contentHash)
	return args.Bool(0), args.Error(1)
}

func (m *MockArticleCache) Insert(ctx context.Context, topic, date string, article domain.SummarizedArticle) error {
	args := m.Called(ctx, topic, date, article)
	return args.Error(0)
}

type newsPipelineFixture struct {
	quota      *MockQuotaGate
	fetcher    *MockFetcher
	ranker     *MockRanker
	summarizer *MockSummarizer
	cache      *MockArticleCache
	uc         usecase.NewsPipelineUsecase
}

func newNewsPipelineFixture() *newsPipelineFixture {
	f := &newsPipelineFixture{
		quota:      new(MockQuotaGate),
		fetcher:    new(MockFetcher),
		ranker:     new(MockRanker),
		summarizer: new(MockSummarizer),
		cache:      new(MockArticleCache),
	}
	f.uc = usecase.NewNewsPipelineUsecase(
		usecase.NewInputValidator(10),
		f.quota,
		f.fetcher,
		f.ranker,
		f.summarizer,
		f.cache,
		testLogger(),
	)
	return f
}

func newsPipelineInput() usecase.NewsPipelineInput {
	return usecase.NewsPipelineInput{
		Topic:     "artificial intelligence",
		Date:      yesterday(),
		Count:     2,
		Model:     domain.ProviderClaude,
		SessionID: testSessionID,
	}
}

func TestNewsPipelineUsecase_Execute_Success(t *testing.T) {
	f := newNewsPipelineFixture()
	input := newsPipelineInput()

	candidates := []domain.CandidateArticle{
		{Title: "AI breakthrough in reasoning", URL: "https://example.com/1"},
		{Title: "New model released this week", URL: "https://example.com/2"},
		{Title: "A third article gets cut here", URL: "https://example.com/3"},
	}
	ranked := []domain.ScoredArticle{
		{CandidateArticle: candidates[0], RelevanceScore: 0.9, ContentHash: "hash-1"},
		{CandidateArticle: candidates[1], RelevanceScore: 0.7, ContentHash: "hash-2"},
	}
	summarized := &usecase.SummarizeOutput{
		Articles: []domain.SummarizedArticle{
			{Title: candidates[0].Title, URL: candidates[0].URL, Summary: "Summary one.", ContentHash: "hash-1"},
			{Title: candidates[1].Title, URL: candidates[1].URL, Summary: "Summary two.", ContentHash: "hash-2"},
		},
		ProvidersTried: []domain.ProviderID{domain.ProviderClaude},
		FinalProvider:  domain.ProviderClaude,
	}

	f.quota.On("Admit", mock.Anything, mock.MatchedBy(func(in usecase.AdmitRequestInput) bool {
		return in.SessionID.String() == testSessionID && in.Topic == input.Topic
	})).Return(domain.QuotaCounters{DailyUsed: 1, DailyLimit: 10, Remaining: 9, Available: true}, nil)
	f.fetcher.On("Execute", mock.Anything, usecase.FetchArticlesInput{Topic: input.Topic, Date: input.Date, Count: 2}).Return(candidates, nil)
	f.ranker.On("Execute", mock.Anything, usecase.RankArticlesInput{Topic: input.Topic, Articles: candidates, Limit: 2}).Return(ranked, nil)
	f.summarizer.On("Execute", mock.Anything, usecase.SummarizeInput{Articles: ranked, Preferred: domain.ProviderClaude}).Return(summarized, nil)
	f.cache.On("ExistsByHash", mock.Anything, "hash-1").Return(false, nil)
	f.cache.On("ExistsByHash", mock.Anything, "hash-2").Return(true, nil)
	f.cache.On("Insert", mock.Anything, input.Topic, input.Date, summarized.Articles[0]).Return(nil)

	out, err := f.uc.Execute(context.Background(), input)
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, out.WorkflowID)
	assert.Len(t, out.Articles, 2)
	assert.Equal(t, 3, out.FetchedCount)
	assert.Equal(t, 2, out.RankedCount)
	assert.Equal(t, domain.ProviderClaude, out.FinalProvider)
	assert.Equal(t, 1, out.Quota.DailyUsed)
	f.cache.AssertExpectations(t)
}

func TestNewsPipelineUsecase_Execute_ValidationStopsEverything(t *testing.T) {
	f := newNewsPipelineFixture()
	input := newsPipelineInput()
	input.Topic = ""

	_, err := f.uc.Execute(context.Background(), input)
	require.Error(t, err)

	var validationErr *domain.ValidationError
	require.ErrorAs(t, err, &validationErr)
	f.quota.AssertNotCalled(t, "Admit", mock.Anything, mock.Anything)
	f.fetcher.AssertNotCalled(t, "Execute", mock.Anything, mock.Anything)
}

func TestNewsPipelineUsecase_Execute_QuotaRejectionStopsFetch(t *testing.T) {
	f := newNewsPipelineFixture()
	input := newsPipelineInput()

	f.quota.On("Admit", mock.Anything, mock.AnythingOfType("usecase.AdmitRequestInput")).
		Return(domain.QuotaCounters{}, &domain.QuotaExceededError{Window: "daily", Used: 10, Limit: 10})

	_, err := f.uc.Execute(context.Background(), input)
	require.Error(t, err)

	var quotaErr *domain.QuotaExceededError
	require.ErrorAs(t, err, &quotaErr)
	f.fetcher.AssertNotCalled(t, "Execute", mock.Anything, mock.Anything)
}

func TestNewsPipelineUsecase_Execute_CacheFailuresAreNotFatal(t *testing.T) {
	f := newNewsPipelineFixture()
	input := newsPipelineInput()

	candidates := []domain.CandidateArticle{{Title: "Only article here today", URL: "https://example.com/1"}}
	ranked := []domain.ScoredArticle{{CandidateArticle: candidates[0], RelevanceScore: 0.9, ContentHash: "hash-1"}}
	summarized := &usecase.SummarizeOutput{
		Articles:      []domain.SummarizedArticle{{Title: candidates[0].Title, Summary: "Summary.", ContentHash: "hash-1"}},
		FinalProvider: domain.ProviderClaude,
	}

	f.quota.On("Admit", mock.Anything, mock.AnythingOfType("usecase.AdmitRequestInput")).Return(domain.QuotaCounters{Available: true}, nil)
	f.fetcher.On("Execute", mock.Anything, mock.AnythingOfType("usecase.FetchArticlesInput")).Return(candidates, nil)
	f.ranker.On("Execute", mock.Anything, mock.AnythingOfType("usecase.RankArticlesInput")).Return(ranked, nil)
	f.summarizer.On("Execute", mock.Anything, mock.AnythingOfType("usecase.SummarizeInput")).Return(summarized, nil)
	f.cache.On("ExistsByHash", mock.Anything, "hash-1").Return(false, assert.AnError)

	out, err := f.uc.Execute(context.Background(), input)
	require.NoError(t, err)
	assert.Len(t, out.Articles, 1)
}

func TestNewsPipelineUsecase_Execute_CancelledBetweenStages(t *testing.T) {
	f := newNewsPipelineFixture()
	input := newsPipelineInput()

	ctx, cancel := context.WithCancel(context.Background())

	f.quota.On("Admit", mock.Anything, mock.AnythingOfType("usecase.AdmitRequestInput")).
		Run(func(args mock.Arguments) { cancel() }).
		Return(domain.QuotaCounters{Available: true}, nil)

	_, err := f.uc.Execute(ctx, input)
	assert.ErrorIs(t, err, context.Canceled)
	f.fetcher.AssertNotCalled(t, "Execute", mock.Anything, mock.Anything)
}
