package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"post-orchestrator/internal/domain"
)

type ledgerRepository struct {
	pool *pgxpool.Pool
}

// NewLedgerRepository creates the quota ledger repository.
func NewLedgerRepository(pool *pgxpool.Pool) domain.LedgerRepository {
	return &ledgerRepository{pool: pool}
}

// EnsureSession creates the session row if needed, then locks it. The row
// lock serializes concurrent admissions for the same session until the
// surrounding transaction commits.
func (r *ledgerRepository) EnsureSession(ctx context.Context, sessionID uuid.UUID) error {
	q := executor(ctx, r.pool)

	insert := `
		INSERT INTO sessions (id, created_at)
		VALUES ($1, NOW())
		ON CONFLICT (id) DO NOTHING
	`
	if _, err := q.Exec(ctx, insert, sessionID); err != nil {
		return fmt.Errorf("failed to ensure session: %w", err)
	}

	lock := `SELECT id FROM sessions WHERE id = $1 FOR UPDATE`
	var id uuid.UUID
	if err := q.QueryRow(ctx, lock, sessionID).Scan(&id); err != nil {
		return fmt.Errorf("failed to lock session: %w", err)
	}
	return nil
}

func (r *ledgerRepository) FindDuplicate(ctx context.Context, sessionID uuid.UUID, fingerprint string, since time.Time) (*domain.QuotaLedgerEntry, error) {
	query := `
		SELECT id, session_id, request_type, topic, date, fingerprint, created_at
		FROM request_ledger
		WHERE session_id = $1 AND fingerprint = $2 AND created_at >= $3
		ORDER BY created_at ASC
		LIMIT 1
	`
	row := executor(ctx, r.pool).QueryRow(ctx, query, sessionID, fingerprint, since)

	var entry domain.QuotaLedgerEntry
	err := row.Scan(&entry.ID, &entry.SessionID, &entry.RequestType, &entry.Topic, &entry.Date, &entry.Fingerprint, &entry.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan ledger entry: %w", err)
	}
	return &entry, nil
}

func (r *ledgerRepository) CountRequests(ctx context.Context, sessionID uuid.UUID, from, to time.Time) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM request_ledger
		WHERE session_id = $1 AND created_at >= $2 AND created_at < $3
	`
	var count int
	err := executor(ctx, r.pool).QueryRow(ctx, query, sessionID, from, to).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count requests: %w", err)
	}
	return count, nil
}

func (r *ledgerRepository) InsertRequest(ctx context.Context, entry *domain.QuotaLedgerEntry) error {
	query := `
		INSERT INTO request_ledger (session_id, request_type, topic, date, fingerprint, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`
	err := executor(ctx, r.pool).QueryRow(ctx, query,
		entry.SessionID,
		entry.RequestType,
		entry.Topic,
		entry.Date,
		entry.Fingerprint,
		entry.CreatedAt,
	).Scan(&entry.ID)
	if err != nil {
		return fmt.Errorf("failed to insert ledger entry: %w", err)
	}
	return nil
}
