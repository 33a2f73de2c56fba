package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// TransactionManager runs fn inside one persistence transaction. Repository
// calls made with the ctx passed to fn join that transaction.
type TransactionManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// LedgerRepository persists the append-only quota ledger. All methods are
// used inside one QuotaGate transaction.
type LedgerRepository interface {
	// EnsureSession creates the session row if absent and locks it for the
	// duration of the transaction, serializing concurrent admissions.
	EnsureSession(ctx context.Context, sessionID uuid.UUID) error
	FindDuplicate(ctx context.Context, sessionID uuid.UUID, fingerprint string, since time.Time) (*QuotaLedgerEntry, error)
	CountRequests(ctx context.Context, sessionID uuid.UUID, from, to time.Time) (int, error)
	InsertRequest(ctx context.Context, entry *QuotaLedgerEntry) error
}

// ArticleCacheRepository stores summarized articles keyed by content hash.
// Writes are best-effort: a single article's failure is logged and skipped.
type ArticleCacheRepository interface {
	ExistsByHash(ctx context.Context, contentHash string) (bool, error)
	Insert(ctx context.Context, topic, date string, article SummarizedArticle) error
}

// PostRepository persists composed posts with their provenance.
type PostRepository interface {
	Save(ctx context.Context, record *PostRecord) (int64, error)
	FindByWorkflow(ctx context.Context, workflowID string) ([]PostRecord, error)
	// UpdateContent records a human edit, preserving the original content.
	// This is the CRUD layer's mutation path; the pipeline never calls it.
	UpdateContent(ctx context.Context, id int64, content string) error
}

// TopicProfileRepository resolves topic profiles by exact name.
type TopicProfileRepository interface {
	FindByName(ctx context.Context, topicName string) (*TopicProfile, error)
	Upsert(ctx context.Context, profile *TopicProfile) error
	List(ctx context.Context) ([]TopicProfile, error)
}

// PostJobRepository queues asynchronous post-generation jobs.
type PostJobRepository interface {
	Enqueue(ctx context.Context, job *PostJob) error
	// AcquireNextJob atomically claims the oldest queued job, or returns
	// (nil, nil) when the queue is empty.
	AcquireNextJob(ctx context.Context) (*PostJob, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status JobStatus, errorMessage *string) error
	FindByID(ctx context.Context, id uuid.UUID) (*PostJob, error)
}
