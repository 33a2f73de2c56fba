package usecase

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"post-orchestrator/internal/domain"
)

// NewsPipelineInput is the request for a full news generation run.
type NewsPipelineInput struct {
	Topic     string
	Date      string
	Count     int
	Model     domain.ProviderID
	SessionID string
}

// NewsPipelineOutput is the result of a completed run.
type NewsPipelineOutput struct {
	WorkflowID     uuid.UUID                  `json:"workflow_id"`
	Topic          string                     `json:"topic"`
	Date           string                     `json:"date"`
	Articles       []domain.SummarizedArticle `json:"articles"`
	FetchedCount   int                        `json:"fetched_count"`
	RankedCount    int                        `json:"ranked_count"`
	ProvidersTried []domain.ProviderID        `json:"providers_tried"`
	FinalProvider  domain.ProviderID          `json:"final_provider"`
	Quota          domain.QuotaCounters       `json:"quota"`
}

// NewsPipelineUsecase chains validation, quota admission, fetching, ranking
// and summarization. Each stage boundary checks the request context so a
// disconnected caller stops consuming upstream budget.
type NewsPipelineUsecase interface {
	Execute(ctx context.Context, input NewsPipelineInput) (*NewsPipelineOutput, error)
}

type newsPipelineUsecase struct {
	validator  *InputValidator
	quota      QuotaGateUsecase
	fetcher    FetchArticlesUsecase
	ranker     RankArticlesUsecase
	summarizer SummarizeUsecase
	cache      domain.ArticleCacheRepository
	logger     *slog.Logger
}

// NewNewsPipelineUsecase wires the news generation pipeline.
func NewNewsPipelineUsecase(
	validator *InputValidator,
	quota QuotaGateUsecase,
	fetcher FetchArticlesUsecase,
	ranker RankArticlesUsecase,
	summarizer SummarizeUsecase,
	cache domain.ArticleCacheRepository,
	logger *slog.Logger,
) NewsPipelineUsecase {
	return &newsPipelineUsecase{
		validator:  validator,
		quota:      quota,
		fetcher:    fetcher,
		ranker:     ranker,
		summarizer: summarizer,
		cache:      cache,
		logger:     logger,
	}
}

func (u *newsPipelineUsecase) Execute(ctx context.Context, input NewsPipelineInput) (*NewsPipelineOutput, error) {
	if err := u.validator.Validate(input.Topic, input.Date, input.Count, input.Model, input.SessionID); err != nil {
		return nil, err
	}
	sessionID := uuid.MustParse(input.SessionID)
	workflowID := uuid.New()

	logger := u.logger.With(
		slog.String("workflow_id", workflowID.String()),
		slog.String("topic", input.Topic),
		slog.String("date", input.Date))

	counters, err := u.quota.Admit(ctx, AdmitRequestInput{
		SessionID: sessionID,
		Topic:     input.Topic,
		Date:      input.Date,
	})
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	candidates, err := u.fetcher.Execute(ctx, FetchArticlesInput{
		Topic: input.Topic,
		Date:  input.Date,
		Count: input.Count,
	})
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ranked, err := u.ranker.Execute(ctx, RankArticlesInput{
		Topic:    input.Topic,
		Articles: candidates,
		Limit:    input.Count,
	})
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	summarized, err := u.summarizer.Execute(ctx, SummarizeInput{
		Articles:  ranked,
		Preferred: input.Model,
	})
	if err != nil {
		return nil, err
	}

	u.cacheResults(ctx, logger, input.Topic, input.Date, summarized.Articles)

	logger.Info("news_pipeline_completed",
		slog.Int("fetched", len(candidates)),
		slog.Int("ranked", len(ranked)),
		slog.Int("summarized", len(summarized.Articles)),
		slog.String("final_provider", string(summarized.FinalProvider)))

	return &NewsPipelineOutput{
		WorkflowID:     workflowID,
		Topic:          input.Topic,
		Date:           input.Date,
		Articles:       summarized.Articles,
		FetchedCount:   len(candidates),
		RankedCount:    len(ranked),
		ProvidersTried: summarized.ProvidersTried,
		FinalProvider:  summarized.FinalProvider,
		Quota:          counters,
	}, nil
}

// cacheResults records summarized articles keyed by content hash. The cache
// is best-effort; failures are logged and never fail the pipeline.
func (u *newsPipelineUsecase) cacheResults(ctx context.Context, logger *slog.Logger, topic, date string, articles []domain.SummarizedArticle) {
	cached := 0
	for _, article := range articles {
		exists, err := u.cache.ExistsByHash(ctx, article.ContentHash)
		if err != nil {
			logger.Warn("result_cache_lookup_failed",
				slog.String("content_hash", article.ContentHash),
				slog.String("error", err.Error()))
			continue
		}
		if exists {
			continue
		}
		if err := u.cache.Insert(ctx, topic, date, article); err != nil {
			logger.Warn("result_cache_insert_failed",
				slog.String("content_hash", article.ContentHash),
				slog.String("error", err.Error()))
			continue
		}
		cached++
	}
	if cached > 0 {
		logger.Info("results_cached", slog.Int("count", cached))
	}
}
