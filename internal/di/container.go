package di

import (
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"post-orchestrator/internal/adapter/httpapi"
	"post-orchestrator/internal/adapter/llm"
	"post-orchestrator/internal/adapter/repository"
	"post-orchestrator/internal/adapter/search"
	"post-orchestrator/internal/adapter/shortener"
	"post-orchestrator/internal/domain"
	"post-orchestrator/internal/infra/config"
	"post-orchestrator/internal/usecase"
	"post-orchestrator/internal/worker"
)

// ApplicationComponents holds all wired dependencies for the application.
type ApplicationComponents struct {
	// Repositories
	LedgerRepo  domain.LedgerRepository
	PostRepo    domain.PostRepository
	JobRepo     domain.PostJobRepository
	ProfileRepo domain.TopicProfileRepository

	// Usecases
	NewsPipeline usecase.NewsPipelineUsecase
	PostPipeline usecase.PostPipelineUsecase
	QuotaGate    usecase.QuotaGateUsecase

	// HTTP handler
	Handler *httpapi.Handler

	// Worker
	Worker *worker.JobWorker
}

// NewApplicationComponents wires all dependencies from config and database pool.
func NewApplicationComponents(cfg *config.Config, pool *pgxpool.Pool, log *slog.Logger) (*ApplicationComponents, error) {
	// Repositories
	ledgerRepo := repository.NewLedgerRepository(pool)
	cacheRepo := repository.NewArticleCacheRepository(pool)
	postRepo := repository.NewPostRepository(pool)
	jobRepo := repository.NewPostJobRepository(pool)
	profileRepo, err := repository.NewTopicProfileRepository(pool)
	if err != nil {
		return nil, err
	}
	txManager := repository.NewPostgresTransactionManager(pool)

	// Language model providers. Only clients with credentials join the
	// registry; the fallback chain skips the rest.
	var providers []domain.LanguageModelProvider
	if cfg.AnthropicAPIKey != "" {
		providers = append(providers, llm.NewAnthropicClient(cfg.AnthropicAPIKey))
	}
	if cfg.OpenAIAPIKey != "" {
		providers = append(providers, llm.NewOpenAIClient(cfg.OpenAIAPIKey))
	}
	if cfg.GeminiAPIKey != "" {
		providers = append(providers, llm.NewGeminiClient(cfg.GeminiAPIKey, nil))
	}
	registry := domain.NewProviderRegistry(providers...)
	if !registry.Available() {
		log.Warn("no language model providers configured, generation requests will fail")
	}

	// External clients
	searchClient := search.NewSerperClient(cfg.SerperAPIKey, log)
	urlShortener := shortener.NewTinyURLClient(cfg.TinyURLAPIKey)

	// Domain services
	fingerprint := domain.NewFingerprintPolicy()
	contentHash := domain.NewContentHashPolicy()
	prompts := usecase.NewPromptBuilder()
	validator := usecase.NewInputValidator(cfg.MaxArticles)

	// Pipeline stages
	quotaGate := usecase.NewQuotaGateUsecase(ledgerRepo, txManager, fingerprint, usecase.QuotaConfig{
		DailyLimit:   cfg.DailyQuota,
		MonthlyLimit: cfg.MonthlyQuota,
	}, log)
	fetcher := usecase.NewFetchArticlesUsecase(searchClient, log)
	ranker := usecase.NewRankArticlesUsecase(profileRepo, contentHash, log)
	summarizer := usecase.NewSummarizeUsecase(registry, prompts, log)
	composer := usecase.NewComposePostUsecase(registry, prompts, urlShortener, log)

	// Pipelines
	newsPipeline := usecase.NewNewsPipelineUsecase(validator, quotaGate, fetcher, ranker, summarizer, cacheRepo, log)
	postPipeline := usecase.NewPostPipelineUsecase(validator, composer, postRepo, log)

	// HTTP handler
	handler := httpapi.NewHandler(newsPipeline, quotaGate, validator, jobRepo, postRepo, log)

	// Worker
	jobWorker := worker.NewJobWorker(jobRepo, postPipeline, log)

	return &ApplicationComponents{
		LedgerRepo:   ledgerRepo,
		PostRepo:     postRepo,
		JobRepo:      jobRepo,
		ProfileRepo:  profileRepo,
		NewsPipeline: newsPipeline,
		PostPipeline: postPipeline,
		QuotaGate:    quotaGate,
		Handler:      handler,
		Worker:       jobWorker,
	}, nil
}
