package domain

import (
	"time"

	"github.com/google/uuid"
)

// JobStatus tracks a queued post-generation job through its lifecycle.
type JobStatus string

const (
	JobStatusQueued     JobStatus = "queued"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
)

// PostJob is a queued request to run the post pipeline asynchronously.
// Payload carries the article set so composition never re-fetches.
type PostJob struct {
	ID           uuid.UUID
	SessionID    uuid.UUID
	WorkflowID   string
	Topic        string
	Model        ProviderID
	Articles     []SummarizedArticle
	Status       JobStatus
	ErrorMessage *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
