package usecase

import (
	"context"
	"log/slog"
	"net/url"
	"sort"
	"strings"

	"post-orchestrator/internal/domain"
)

const (
	minTitleLength   = 10
	minSnippetLength = 20

	keywordTitleWeight   = 0.4
	keywordSnippetWeight = 0.2
	keywordSourceWeight  = 0.1
	neutralScore         = 0.5
)

// canonicalTopics is the fixed substring-fallback chain for profile lookup.
var canonicalTopics = []string{"ai", "finance", "healthcare", "technology", "business"}

// RankArticlesInput carries the candidates and the requested result size.
type RankArticlesInput struct {
	Topic    string
	Articles []domain.CandidateArticle
	Limit    int
}

// RankArticlesUsecase filters, deduplicates, scores, boosts, sorts and
// truncates the candidate set. An empty input short-circuits to an empty
// output; downstream stages tolerate zero articles.
type RankArticlesUsecase interface {
	Execute(ctx context.Context, input RankArticlesInput) ([]domain.ScoredArticle, error)
}

type rankArticlesUsecase struct {
	profiles    domain.TopicProfileRepository
	contentHash domain.ContentHashPolicy
	logger      *slog.Logger
}

// NewRankArticlesUsecase creates the ranking stage.
func NewRankArticlesUsecase(
	profiles domain.TopicProfileRepository,
	contentHash domain.ContentHashPolicy,
	logger *slog.Logger,
) RankArticlesUsecase {
	return &rankArticlesUsecase{
		profiles:    profiles,
		contentHash: contentHash,
		logger:      logger,
	}
}

func (u *rankArticlesUsecase) Execute(ctx context.Context, input RankArticlesInput) ([]domain.ScoredArticle, error) {
	if len(input.Articles) == 0 {
		return []domain.ScoredArticle{}, nil
	}

	filtered := filterByQuality(input.Articles)
	deduplicated := removeDuplicates(filtered)

	profile := u.resolveProfile(ctx, input.Topic)

	scored := scoreRelevance(deduplicated, profile.Keywords)
	scored = boostTrustedSources(scored, profile)

	ranked := rankAndTruncate(scored, input.Limit)

	for i := range ranked {
		ranked[i].ContentHash = u.contentHash.Compute(ranked[i].Title, ranked[i].URL)
	}

	u.logger.Info("articles_ranked",
		slog.String("topic", input.Topic),
		slog.Int("raw_count", len(input.Articles)),
		slog.Int("quality_filtered", len(filtered)),
		slog.Int("deduplicated", len(deduplicated)),
		slog.Int("returned", len(ranked)),
		slog.Bool("neutral_profile", profile.IsNeutral()))

	return ranked, nil
}

// resolveProfile tries an exact profile match, then canonical topic names as
// substring fallback, then gives up and ranks neutrally. Profile lookup
// failures are not fatal to the batch.
func (u *rankArticlesUsecase) resolveProfile(ctx context.Context, topic string) domain.TopicProfile {
	name := strings.ToLower(strings.TrimSpace(topic))

	profile, err := u.profiles.FindByName(ctx, name)
	if err != nil {
		u.logger.Warn("topic_profile_lookup_failed",
			slog.String("topic", name),
			slog.String("error", err.Error()))
		return domain.NeutralProfile()
	}
	if profile != nil {
		return *profile
	}

	for _, canonical := range canonicalTopics {
		if !strings.Contains(name, canonical) {
			continue
		}
		profile, err = u.profiles.FindByName(ctx, canonical)
		if err != nil || profile == nil {
			continue
		}
		u.logger.Info("topic_profile_fallback",
			slog.String("topic", name),
			slog.String("canonical", canonical))
		return *profile
	}

	u.logger.Info("topic_profile_missing", slog.String("topic", name))
	return domain.NeutralProfile()
}

// filterByQuality drops articles that cannot be presented: missing title or
// URL, too-short title or snippet, or a URL without a host.
func filterByQuality(articles []domain.CandidateArticle) []domain.CandidateArticle {
	filtered := make([]domain.CandidateArticle, 0, len(articles))
	for _, a := range articles {
		if a.Title == "" || a.URL == "" {
			continue
		}
		if len(a.Title) < minTitleLength || len(a.Snippet) < minSnippetLength {
			continue
		}
		if hostOf(a.URL) == "" {
			continue
		}
		filtered = append(filtered, a)
	}
	return filtered
}

// removeDuplicates drops repeats within the batch, matching on exact URL and
// on the normalized title.
func removeDuplicates(articles []domain.CandidateArticle) []domain.CandidateArticle {
	seenURLs := make(map[string]bool, len(articles))
	seenTitles := make(map[string]bool, len(articles))
	deduplicated := make([]domain.CandidateArticle, 0, len(articles))

	for _, a := range articles {
		titleKey := strings.ToLower(strings.TrimSpace(a.Title))
		if seenURLs[a.URL] || seenTitles[titleKey] {
			continue
		}
		seenURLs[a.URL] = true
		seenTitles[titleKey] = true
		deduplicated = append(deduplicated, a)
	}
	return deduplicated
}

// scoreRelevance assigns each article a score in [0,1]. Title matches are
// rewarded far more than snippet or source matches. With no keywords every
// article is neutral at 0.5.
func scoreRelevance(articles []domain.CandidateArticle, keywords []string) []domain.ScoredArticle {
	scored := make([]domain.ScoredArticle, 0, len(articles))

	if len(keywords) == 0 {
		for _, a := range articles {
			scored = append(scored, domain.ScoredArticle{CandidateArticle: a, RelevanceScore: neutralScore})
		}
		return scored
	}

	for _, a := range articles {
		title := strings.ToLower(a.Title)
		snippet := strings.ToLower(a.Snippet)
		source := strings.ToLower(a.Source)

		score := 0.0
		for _, keyword := range keywords {
			kw := strings.ToLower(keyword)
			if strings.Contains(title, kw) {
				score += keywordTitleWeight
			}
			if strings.Contains(snippet, kw) {
				score += keywordSnippetWeight
			}
			if strings.Contains(source, kw) {
				score += keywordSourceWeight
			}
		}

		score /= float64(len(keywords))
		if score > 1.0 {
			score = 1.0
		}
		scored = append(scored, domain.ScoredArticle{CandidateArticle: a, RelevanceScore: score})
	}
	return scored
}

// boostTrustedSources multiplies the score of articles hosted on a trusted
// domain by the profile's priority weight, capped at 1.0.
func boostTrustedSources(articles []domain.ScoredArticle, profile domain.TopicProfile) []domain.ScoredArticle {
	if len(profile.TrustedSources) == 0 {
		return articles
	}

	weight := profile.PriorityWeight
	if weight < 1.0 {
		weight = 1.0
	}

	for i := range articles {
		host := strings.TrimPrefix(hostOf(articles[i].URL), "www.")
		for _, trusted := range profile.TrustedSources {
			if trusted == "" || !strings.Contains(host, strings.ToLower(trusted)) {
				continue
			}
			boosted := articles[i].RelevanceScore * weight
			if boosted > 1.0 {
				boosted = 1.0
			}
			articles[i].RelevanceScore = boosted
			articles[i].TrustedSource = true
			break
		}
	}
	return articles
}

// rankAndTruncate sorts descending by (score, trusted, earlier search
// position) and keeps the top limit entries. The sort is stable so equal
// tuples keep their original order.
func rankAndTruncate(articles []domain.ScoredArticle, limit int) []domain.ScoredArticle {
	sort.SliceStable(articles, func(i, j int) bool {
		if articles[i].RelevanceScore != articles[j].RelevanceScore {
			return articles[i].RelevanceScore > articles[j].RelevanceScore
		}
		if articles[i].TrustedSource != articles[j].TrustedSource {
			return articles[i].TrustedSource
		}
		return articles[i].Position < articles[j].Position
	})

	if limit > 0 && len(articles) > limit {
		articles = articles[:limit]
	}
	return articles
}

func hostOf(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.ToLower(parsed.Host)
}
