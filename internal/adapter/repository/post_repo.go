package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"post-orchestrator/internal/domain"
)

type postRepository struct {
	pool *pgxpool.Pool
}

// NewPostRepository creates the composed-post repository.
func NewPostRepository(pool *pgxpool.Pool) domain.PostRepository {
	return &postRepository{pool: pool}
}

func (r *postRepository) Save(ctx context.Context, record *domain.PostRecord) (int64, error) {
	query := `
		INSERT INTO posts
			(session_id, kind, content, char_count, model_used, workflow_id, articles_count, topic, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`
	err := executor(ctx, r.pool).QueryRow(ctx, query,
		record.SessionID,
		record.Kind,
		record.Content,
		record.CharCount,
		record.ModelUsed,
		record.WorkflowID,
		record.ArticlesCount,
		record.Topic,
	).Scan(&record.ID, &record.CreatedAt, &record.UpdatedAt)
	if err != nil {
		return 0, fmt.Errorf("failed to insert post: %w", err)
	}
	return record.ID, nil
}

func (r *postRepository) FindByWorkflow(ctx context.Context, workflowID string) ([]domain.PostRecord, error) {
	query := `
		SELECT id, session_id, kind, content, char_count,
		       edited, COALESCE(edited_content, ''), COALESCE(edited_char_count, 0),
		       model_used, workflow_id, articles_count, topic, created_at, updated_at
		FROM posts
		WHERE workflow_id = $1
		ORDER BY id ASC
	`
	rows, err := executor(ctx, r.pool).Query(ctx, query, workflowID)
	if err != nil {
		return nil, fmt.Errorf("failed to query posts: %w", err)
	}
	defer rows.Close()

	var records []domain.PostRecord
	for rows.Next() {
		var rec domain.PostRecord
		err := rows.Scan(
			&rec.ID,
			&rec.SessionID,
			&rec.Kind,
			&rec.Content,
			&rec.CharCount,
			&rec.Edited,
			&rec.EditedContent,
			&rec.EditedCharCount,
			&rec.ModelUsed,
			&rec.WorkflowID,
			&rec.ArticlesCount,
			&rec.Topic,
			&rec.CreatedAt,
			&rec.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan post: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read posts: %w", err)
	}
	return records, nil
}

// UpdateContent stores the edited variant next to the generated one. The
// original content column is never overwritten.
func (r *postRepository) UpdateContent(ctx context.Context, id int64, content string) error {
	query := `
		UPDATE posts
		SET edited = TRUE, edited_content = $1, edited_char_count = $2, updated_at = NOW()
		WHERE id = $3
	`
	tag, err := executor(ctx, r.pool).Exec(ctx, query, content, len(content), id)
	if err != nil {
		return fmt.Errorf("failed to update post content: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("post %d not found", id)
	}
	return nil
}
