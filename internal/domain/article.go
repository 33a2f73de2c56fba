package domain

import "time"

// CandidateArticle is a raw search hit normalized by the fetcher.
// It only lives for the duration of one pipeline run.
type CandidateArticle struct {
	Title       string
	URL         string
	Source      string
	Snippet     string
	PublishedAt string
	Position    int
}

// ScoredArticle is a candidate that survived quality filtering and ranking.
type ScoredArticle struct {
	CandidateArticle
	RelevanceScore float64
	TrustedSource  bool
	ContentHash    string
}

// SummarizedArticle carries the generated summary in place of the snippet.
// On summarization failure the truncated original snippet is kept instead.
type SummarizedArticle struct {
	Title          string  `json:"title"`
	URL            string  `json:"url"`
	Source         string  `json:"source"`
	Summary        string  `json:"summary"`
	PublishedAt    string  `json:"published_at,omitempty"`
	RelevanceScore float64 `json:"relevance_score"`
	TrustedSource  bool    `json:"trusted_source"`
	ContentHash    string  `json:"content_hash"`
}

// TopicProfile is read-only reference data steering the ranker.
type TopicProfile struct {
	TopicName      string
	Keywords       []string
	TrustedSources []string
	PriorityWeight float64
	UpdatedAt      time.Time
}

// NeutralProfile is used when no profile matches the topic: every article
// scores 0.5 and no source is boosted.
func NeutralProfile() TopicProfile {
	return TopicProfile{PriorityWeight: 1.0}
}

// IsNeutral reports whether the profile carries no ranking signal.
func (p TopicProfile) IsNeutral() bool {
	return len(p.Keywords) == 0 && len(p.TrustedSources) == 0
}
