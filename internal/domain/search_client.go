package domain

import "context"

// SearchProvider queries an external news search service. Implementations
// must distinguish transport/API errors from an empty result set: an empty
// slice with a nil error means the query genuinely matched nothing.
type SearchProvider interface {
	Search(ctx context.Context, query string, maxResults int) ([]CandidateArticle, error)
	Name() string
}
