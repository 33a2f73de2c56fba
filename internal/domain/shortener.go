package domain

import "context"

// URLShortener shortens a single URL. Failure must never be fatal to any
// caller; composers keep the original URL when shortening fails.
type URLShortener interface {
	Shorten(ctx context.Context, url string) (string, error)
}
