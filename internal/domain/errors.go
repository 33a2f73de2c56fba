package domain

import (
	"fmt"
	"strings"
	"time"
)

// ValidationError reports every violation found in user input. It is
// non-retryable and raised before any external call is made.
type ValidationError struct {
	Violations []string
}

func (e *ValidationError) Error() string {
	return "input validation failed: " + strings.Join(e.Violations, "; ")
}

// DuplicateRequestError is informational: the same fingerprint was admitted
// for this session within the duplicate-detection window. The original
// request already consumed quota; this one must not.
type DuplicateRequestError struct {
	Fingerprint string
	FirstSeenAt time.Time
}

func (e *DuplicateRequestError) Error() string {
	return fmt.Sprintf("duplicate request %s first seen at %s",
		e.Fingerprint, e.FirstSeenAt.UTC().Format(time.RFC3339))
}

// QuotaExceededError names the exhausted window and its usage numbers.
type QuotaExceededError struct {
	Window string // "daily" or "monthly"
	Used   int
	Limit  int
}

func (e *QuotaExceededError) Error() string {
	return fmt.Sprintf("%s quota exceeded: %d/%d requests used", e.Window, e.Used, e.Limit)
}

// UpstreamServiceError wraps a search or shortening provider failure after
// the stage's own retry budget is spent.
type UpstreamServiceError struct {
	Service string
	Err     error
}

func (e *UpstreamServiceError) Error() string {
	return fmt.Sprintf("upstream service %s failed: %v", e.Service, e.Err)
}

func (e *UpstreamServiceError) Unwrap() error { return e.Err }

// LanguageProviderError is surfaced only once every provider in the
// fallback chain has failed for the whole batch.
type LanguageProviderError struct {
	ProvidersTried []string
	Err            error
}

func (e *LanguageProviderError) Error() string {
	return fmt.Sprintf("all language providers failed (%s): %v",
		strings.Join(e.ProvidersTried, ", "), e.Err)
}

func (e *LanguageProviderError) Unwrap() error { return e.Err }

// PersistenceError is fatal: the caller must not report partial success.
type PersistenceError struct {
	Operation string
	Err       error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence operation %s failed: %v", e.Operation, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
