package usecase

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"post-orchestrator/internal/domain"
)

// PostPipelineInput carries the summarized articles to turn into posts.
type PostPipelineInput struct {
	Topic      string
	Model      domain.ProviderID
	SessionID  string
	WorkflowID string
	Articles   []domain.SummarizedArticle
}

// PostPipelineOutput holds both composed variants and their stored records.
type PostPipelineOutput struct {
	LongForm  domain.ComposedPost `json:"long_form"`
	ShortForm domain.ComposedPost `json:"short_form"`
	LongID    int64               `json:"long_form_id"`
	ShortID   int64               `json:"short_form_id"`
}

// PostPipelineUsecase composes the long-form and short-form posts from an
// already summarized article set and persists both with provenance.
type PostPipelineUsecase interface {
	Execute(ctx context.Context, input PostPipelineInput) (*PostPipelineOutput, error)
}

type postPipelineUsecase struct {
	validator *InputValidator
	composer  ComposePostUsecase
	posts     domain.PostRepository
	logger    *slog.Logger
}

// NewPostPipelineUsecase wires the post generation pipeline.
func NewPostPipelineUsecase(
	validator *InputValidator,
	composer ComposePostUsecase,
	posts domain.PostRepository,
	logger *slog.Logger,
) PostPipelineUsecase {
	return &postPipelineUsecase{
		validator: validator,
		composer:  composer,
		posts:     posts,
		logger:    logger,
	}
}

func (u *postPipelineUsecase) Execute(ctx context.Context, input PostPipelineInput) (*PostPipelineOutput, error) {
	if err := u.validator.ValidatePostRequest(input.Topic, input.Model, input.SessionID, input.Articles); err != nil {
		return nil, err
	}
	sessionID := uuid.MustParse(input.SessionID)

	workflowID := input.WorkflowID
	if workflowID == "" {
		workflowID = uuid.NewString()
	}

	composeInput := ComposeInput{
		Topic:     input.Topic,
		Articles:  input.Articles,
		Preferred: input.Model,
	}

	longForm, err := u.composer.ComposeLongForm(ctx, composeInput)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	shortForm, err := u.composer.ComposeShortForm(ctx, composeInput)
	if err != nil {
		return nil, err
	}

	longID, err := u.savePost(ctx, sessionID, workflowID, input, longForm)
	if err != nil {
		return nil, err
	}
	shortID, err := u.savePost(ctx, sessionID, workflowID, input, shortForm)
	if err != nil {
		return nil, err
	}

	u.logger.Info("post_pipeline_completed",
		slog.String("workflow_id", workflowID),
		slog.String("topic", input.Topic),
		slog.Int("long_form_chars", longForm.Post.CharCount),
		slog.Int("short_form_chars", shortForm.Post.CharCount),
		slog.Int("articles", len(input.Articles)))

	return &PostPipelineOutput{
		LongForm:  longForm.Post,
		ShortForm: shortForm.Post,
		LongID:    longID,
		ShortID:   shortID,
	}, nil
}

func (u *postPipelineUsecase) savePost(ctx context.Context, sessionID uuid.UUID, workflowID string, input PostPipelineInput, composed *ComposeOutput) (int64, error) {
	record := &domain.PostRecord{
		SessionID:     sessionID,
		Kind:          composed.Post.Kind,
		Content:       composed.Post.Content,
		CharCount:     composed.Post.CharCount,
		ModelUsed:     string(composed.Provider),
		WorkflowID:    workflowID,
		ArticlesCount: len(input.Articles),
		Topic:         input.Topic,
	}

	id, err := u.posts.Save(ctx, record)
	if err != nil {
		return 0, &domain.PersistenceError{Operation: "post_save", Err: err}
	}
	return id, nil
}
