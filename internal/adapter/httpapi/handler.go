package httpapi

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"post-orchestrator/internal/domain"
	"post-orchestrator/internal/usecase"
)

// Handler exposes the pipelines over HTTP.
type Handler struct {
	newsPipeline usecase.NewsPipelineUsecase
	quotaGate    usecase.QuotaGateUsecase
	validator    *usecase.InputValidator
	jobs         domain.PostJobRepository
	posts        domain.PostRepository
	logger       *slog.Logger
}

// NewHandler creates the HTTP handler.
func NewHandler(
	newsPipeline usecase.NewsPipelineUsecase,
	quotaGate usecase.QuotaGateUsecase,
	validator *usecase.InputValidator,
	jobs domain.PostJobRepository,
	posts domain.PostRepository,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		newsPipeline: newsPipeline,
		quotaGate:    quotaGate,
		validator:    validator,
		jobs:         jobs,
		posts:        posts,
		logger:       logger,
	}
}

// RegisterRoutes mounts every endpoint on e.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", h.Health)
	e.POST("/v1/news/generate", h.GenerateNews)
	e.POST("/v1/posts/generate", h.EnqueuePostJob)
	e.GET("/v1/posts/jobs/:id", h.GetPostJob)
	e.GET("/v1/sessions/:id/quota", h.GetQuota)
}

// Health reports liveness.
// (GET /health)
func (h *Handler) Health(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

type generateNewsRequest struct {
	Topic     string `json:"topic"`
	Date      string `json:"date"`
	Count     int    `json:"count"`
	Model     string `json:"model"`
	SessionID string `json:"session_id"`
}

// GenerateNews runs the synchronous news pipeline.
// (POST /v1/news/generate)
func (h *Handler) GenerateNews(ctx echo.Context) error {
	var req generateNewsRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	output, err := h.newsPipeline.Execute(ctx.Request().Context(), usecase.NewsPipelineInput{
		Topic:     req.Topic,
		Date:      req.Date,
		Count:     req.Count,
		Model:     domain.ProviderID(req.Model),
		SessionID: req.SessionID,
	})
	if err != nil {
		return h.writeError(ctx, err)
	}
	return ctx.JSON(http.StatusOK, output)
}

type enqueuePostJobRequest struct {
	Topic      string                     `json:"topic"`
	Model      string                     `json:"model"`
	SessionID  string                     `json:"session_id"`
	WorkflowID string                     `json:"workflow_id"`
	Articles   []domain.SummarizedArticle `json:"articles"`
}

// EnqueuePostJob validates the request and queues it for the worker.
// (POST /v1/posts/generate)
func (h *Handler) EnqueuePostJob(ctx echo.Context) error {
	var req enqueuePostJobRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	model := domain.ProviderID(req.Model)
	if err := h.validator.ValidatePostRequest(req.Topic, model, req.SessionID, req.Articles); err != nil {
		return h.writeError(ctx, err)
	}

	workflowID := req.WorkflowID
	if workflowID == "" {
		workflowID = uuid.NewString()
	}

	now := time.Now().UTC()
	job := &domain.PostJob{
		ID:         uuid.New(),
		SessionID:  uuid.MustParse(req.SessionID),
		WorkflowID: workflowID,
		Topic:      req.Topic,
		Model:      model,
		Articles:   req.Articles,
		Status:     domain.JobStatusQueued,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := h.jobs.Enqueue(ctx.Request().Context(), job); err != nil {
		return h.writeError(ctx, &domain.PersistenceError{Operation: "job_enqueue", Err: err})
	}

	return ctx.JSON(http.StatusAccepted, map[string]string{
		"job_id":      job.ID.String(),
		"workflow_id": workflowID,
		"status":      string(domain.JobStatusQueued),
	})
}

type postJobResponse struct {
	JobID        string              `json:"job_id"`
	WorkflowID   string              `json:"workflow_id"`
	Status       domain.JobStatus    `json:"status"`
	ErrorMessage *string             `json:"error_message,omitempty"`
	Posts        []postRecordPayload `json:"posts,omitempty"`
}

type postRecordPayload struct {
	ID        int64           `json:"id"`
	Kind      domain.PostKind `json:"kind"`
	Content   string          `json:"content"`
	CharCount int             `json:"char_count"`
	ModelUsed string          `json:"model_used"`
	CreatedAt time.Time       `json:"created_at"`
}

// GetPostJob reports job status; completed jobs include their posts.
// (GET /v1/posts/jobs/:id)
func (h *Handler) GetPostJob(ctx echo.Context) error {
	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, map[string]string{"error": "invalid job id"})
	}

	job, err := h.jobs.FindByID(ctx.Request().Context(), id)
	if err != nil {
		return h.writeError(ctx, &domain.PersistenceError{Operation: "job_lookup", Err: err})
	}
	if job == nil {
		return ctx.JSON(http.StatusNotFound, map[string]string{"error": "job not found"})
	}

	resp := postJobResponse{
		JobID:        job.ID.String(),
		WorkflowID:   job.WorkflowID,
		Status:       job.Status,
		ErrorMessage: job.ErrorMessage,
	}

	if job.Status == domain.JobStatusCompleted {
		records, err := h.posts.FindByWorkflow(ctx.Request().Context(), job.WorkflowID)
		if err != nil {
			return h.writeError(ctx, &domain.PersistenceError{Operation: "post_lookup", Err: err})
		}
		for _, rec := range records {
			resp.Posts = append(resp.Posts, postRecordPayload{
				ID:        rec.ID,
				Kind:      rec.Kind,
				Content:   rec.Content,
				CharCount: rec.CharCount,
				ModelUsed: rec.ModelUsed,
				CreatedAt: rec.CreatedAt,
			})
		}
	}

	return ctx.JSON(http.StatusOK, resp)
}

// GetQuota reports current usage without consuming anything.
// (GET /v1/sessions/:id/quota)
func (h *Handler) GetQuota(ctx echo.Context) error {
	sessionID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, map[string]string{"error": "invalid session id"})
	}

	counters, err := h.quotaGate.Counters(ctx.Request().Context(), sessionID)
	if err != nil {
		return h.writeError(ctx, err)
	}
	return ctx.JSON(http.StatusOK, counters)
}

// writeError maps the error taxonomy onto HTTP statuses.
func (h *Handler) writeError(ctx echo.Context, err error) error {
	var validationErr *domain.ValidationError
	if errors.As(err, &validationErr) {
		return ctx.JSON(http.StatusBadRequest, map[string]interface{}{
			"error":      "validation_failed",
			"violations": validationErr.Violations,
		})
	}

	var dupErr *domain.DuplicateRequestError
	if errors.As(err, &dupErr) {
		return ctx.JSON(http.StatusConflict, map[string]string{
			"error":         "duplicate_request",
			"first_seen_at": dupErr.FirstSeenAt.UTC().Format(time.RFC3339),
		})
	}

	var quotaErr *domain.QuotaExceededError
	if errors.As(err, &quotaErr) {
		return ctx.JSON(http.StatusTooManyRequests, map[string]interface{}{
			"error":  "quota_exceeded",
			"window": quotaErr.Window,
			"used":   quotaErr.Used,
			"limit":  quotaErr.Limit,
		})
	}

	var upstreamErr *domain.UpstreamServiceError
	if errors.As(err, &upstreamErr) {
		h.logger.Error("upstream_failure", slog.String("service", upstreamErr.Service), slog.String("error", err.Error()))
		return ctx.JSON(http.StatusBadGateway, map[string]string{
			"error":   "upstream_unavailable",
			"service": upstreamErr.Service,
		})
	}

	var providerErr *domain.LanguageProviderError
	if errors.As(err, &providerErr) {
		h.logger.Error("providers_exhausted", slog.Any("providers_tried", providerErr.ProvidersTried), slog.String("error", err.Error()))
		return ctx.JSON(http.StatusServiceUnavailable, map[string]interface{}{
			"error":           "language_providers_unavailable",
			"providers_tried": providerErr.ProvidersTried,
		})
	}

	h.logger.Error("request_failed", slog.String("error", err.Error()))
	return ctx.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
}
