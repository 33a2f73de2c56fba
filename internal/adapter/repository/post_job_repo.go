package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"post-orchestrator/internal/domain"
)

type postJobRepository struct {
	pool *pgxpool.Pool
}

// NewPostJobRepository creates the asynchronous post-job queue repository.
func NewPostJobRepository(pool *pgxpool.Pool) domain.PostJobRepository {
	return &postJobRepository{pool: pool}
}

func (r *postJobRepository) Enqueue(ctx context.Context, job *domain.PostJob) error {
	query := `
		INSERT INTO post_jobs (id, session_id, workflow_id, topic, model, articles, status, error_message, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	articlesBytes, err := json.Marshal(job.Articles)
	if err != nil {
		return fmt.Errorf("failed to marshal job articles: %w", err)
	}

	_, err = executor(ctx, r.pool).Exec(ctx, query,
		job.ID,
		job.SessionID,
		job.WorkflowID,
		job.Topic,
		job.Model,
		articlesBytes,
		job.Status,
		job.ErrorMessage,
		job.CreatedAt,
		job.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to enqueue job: %w", err)
	}
	return nil
}

// AcquireNextJob claims the oldest queued job and marks it processing in one
// statement. SKIP LOCKED lets multiple workers poll the same queue without
// blocking each other.
func (r *postJobRepository) AcquireNextJob(ctx context.Context) (*domain.PostJob, error) {
	query := `
		WITH next_job AS (
			SELECT id
			FROM post_jobs
			WHERE status = 'queued'
			ORDER BY created_at ASC
			LIMIT 1
			FOR UPDATE SKIP LOCKED
		)
		UPDATE post_jobs
		SET status = 'processing', updated_at = $1
		FROM next_job
		WHERE post_jobs.id = next_job.id
		RETURNING post_jobs.id, post_jobs.session_id, post_jobs.workflow_id, post_jobs.topic,
		          post_jobs.model, post_jobs.articles, post_jobs.status, post_jobs.error_message,
		          post_jobs.created_at, post_jobs.updated_at
	`

	var job domain.PostJob
	var articlesBytes []byte

	err := executor(ctx, r.pool).QueryRow(ctx, query, time.Now().UTC()).Scan(
		&job.ID,
		&job.SessionID,
		&job.WorkflowID,
		&job.Topic,
		&job.Model,
		&articlesBytes,
		&job.Status,
		&job.ErrorMessage,
		&job.CreatedAt,
		&job.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to acquire next job: %w", err)
	}

	if err := json.Unmarshal(articlesBytes, &job.Articles); err != nil {
		return nil, fmt.Errorf("failed to unmarshal job articles: %w", err)
	}
	return &job, nil
}

func (r *postJobRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.JobStatus, errorMessage *string) error {
	query := `
		UPDATE post_jobs
		SET status = $1, error_message = $2, updated_at = $3
		WHERE id = $4
	`
	_, err := executor(ctx, r.pool).Exec(ctx, query, status, errorMessage, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to update job status: %w", err)
	}
	return nil
}

func (r *postJobRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.PostJob, error) {
	query := `
		SELECT id, session_id, workflow_id, topic, model, articles, status, error_message, created_at, updated_at
		FROM post_jobs
		WHERE id = $1
	`

	var job domain.PostJob
	var articlesBytes []byte

	err := executor(ctx, r.pool).QueryRow(ctx, query, id).Scan(
		&job.ID,
		&job.SessionID,
		&job.WorkflowID,
		&job.Topic,
		&job.Model,
		&articlesBytes,
		&job.Status,
		&job.ErrorMessage,
		&job.CreatedAt,
		&job.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find job: %w", err)
	}

	if err := json.Unmarshal(articlesBytes, &job.Articles); err != nil {
		return nil, fmt.Errorf("failed to unmarshal job articles: %w", err)
	}
	return &job, nil
}
