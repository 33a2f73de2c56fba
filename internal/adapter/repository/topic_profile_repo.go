package repository

import (
	"context"
	"errors"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"post-orchestrator/internal/domain"
)

const profileCacheSize = 128

type topicProfileRepository struct {
	pool  *pgxpool.Pool
	cache *lru.Cache[string, domain.TopicProfile]
}

// NewTopicProfileRepository creates the topic profile repository with a
// read-through cache. Profiles change rarely; ranking reads them on every
// request, so lookups by name are served from memory after the first hit.
func NewTopicProfileRepository(pool *pgxpool.Pool) (domain.TopicProfileRepository, error) {
	cache, err := lru.New[string, domain.TopicProfile](profileCacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create profile cache: %w", err)
	}
	return &topicProfileRepository{pool: pool, cache: cache}, nil
}

func (r *topicProfileRepository) FindByName(ctx context.Context, topicName string) (*domain.TopicProfile, error) {
	if profile, ok := r.cache.Get(topicName); ok {
		return &profile, nil
	}

	query := `
		SELECT topic_name, keywords, trusted_sources, priority_weight, updated_at
		FROM topic_profiles
		WHERE topic_name = $1
	`
	row := executor(ctx, r.pool).QueryRow(ctx, query, topicName)

	var profile domain.TopicProfile
	err := row.Scan(&profile.TopicName, &profile.Keywords, &profile.TrustedSources, &profile.PriorityWeight, &profile.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan topic profile: %w", err)
	}

	r.cache.Add(topicName, profile)
	return &profile, nil
}

func (r *topicProfileRepository) Upsert(ctx context.Context, profile *domain.TopicProfile) error {
	query := `
		INSERT INTO topic_profiles (topic_name, keywords, trusted_sources, priority_weight, updated_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (topic_name) DO UPDATE
		SET keywords = EXCLUDED.keywords,
		    trusted_sources = EXCLUDED.trusted_sources,
		    priority_weight = EXCLUDED.priority_weight,
		    updated_at = NOW()
	`
	_, err := executor(ctx, r.pool).Exec(ctx, query,
		profile.TopicName,
		profile.Keywords,
		profile.TrustedSources,
		profile.PriorityWeight,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert topic profile: %w", err)
	}

	r.cache.Remove(profile.TopicName)
	return nil
}

func (r *topicProfileRepository) List(ctx context.Context) ([]domain.TopicProfile, error) {
	query := `
		SELECT topic_name, keywords, trusted_sources, priority_weight, updated_at
		FROM topic_profiles
		ORDER BY topic_name ASC
	`
	rows, err := executor(ctx, r.pool).Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query topic profiles: %w", err)
	}
	defer rows.Close()

	var profiles []domain.TopicProfile
	for rows.Next() {
		var profile domain.TopicProfile
		err := rows.Scan(&profile.TopicName, &profile.Keywords, &profile.TrustedSources, &profile.PriorityWeight, &profile.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan topic profile: %w", err)
		}
		profiles = append(profiles, profile)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read topic profiles: %w", err)
	}
	return profiles, nil
}
