package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"post-orchestrator/internal/domain"
)

type articleCacheRepository struct {
	pool *pgxpool.Pool
}

// NewArticleCacheRepository creates the summarized-article cache repository.
func NewArticleCacheRepository(pool *pgxpool.Pool) domain.ArticleCacheRepository {
	return &articleCacheRepository{pool: pool}
}

func (r *articleCacheRepository) ExistsByHash(ctx context.Context, contentHash string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM article_cache WHERE content_hash = $1)`

	var exists bool
	err := executor(ctx, r.pool).QueryRow(ctx, query, contentHash).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check article cache: %w", err)
	}
	return exists, nil
}

// Insert stores one summarized article. A concurrent writer may have cached
// the same hash already; the conflict clause keeps the write idempotent.
func (r *articleCacheRepository) Insert(ctx context.Context, topic, date string, article domain.SummarizedArticle) error {
	query := `
		INSERT INTO article_cache
			(content_hash, topic, date, title, url, source, summary, relevance_score, trusted_source, published_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW())
		ON CONFLICT (content_hash) DO NOTHING
	`
	_, err := executor(ctx, r.pool).Exec(ctx, query,
		article.ContentHash,
		topic,
		date,
		article.Title,
		article.URL,
		article.Source,
		article.Summary,
		article.RelevanceScore,
		article.TrustedSource,
		article.PublishedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert cached article: %w", err)
	}
	return nil
}
