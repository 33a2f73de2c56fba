package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"post-orchestrator/internal/domain"

	"github.com/google/uuid"
)

const duplicateWindow = time.Hour

// QuotaConfig carries the per-session admission limits.
type QuotaConfig struct {
	DailyLimit   int
	MonthlyLimit int
}

// AdmitRequestInput identifies the request being admitted.
type AdmitRequestInput struct {
	SessionID uuid.UUID
	Topic     string
	Date      string
}

// QuotaGateUsecase admits or rejects a request against the session's quota
// ledger. All checks and the ledger insert happen in one transaction so
// concurrent requests cannot both slip past the limits.
type QuotaGateUsecase interface {
	Admit(ctx context.Context, input AdmitRequestInput) (domain.QuotaCounters, error)
	Counters(ctx context.Context, sessionID uuid.UUID) (domain.QuotaCounters, error)
}

type quotaGateUsecase struct {
	ledger      domain.LedgerRepository
	txManager   domain.TransactionManager
	fingerprint domain.FingerprintPolicy
	config      QuotaConfig
	logger      *slog.Logger
	now         func() time.Time
}

// NewQuotaGateUsecase creates the quota gate.
func NewQuotaGateUsecase(
	ledger domain.LedgerRepository,
	txManager domain.TransactionManager,
	fingerprint domain.FingerprintPolicy,
	config QuotaConfig,
	logger *slog.Logger,
) QuotaGateUsecase {
	return &quotaGateUsecase{
		ledger:      ledger,
		txManager:   txManager,
		fingerprint: fingerprint,
		config:      config,
		logger:      logger,
		now:         time.Now,
	}
}

// Admit runs the gate: ensure session, duplicate check, counter check,
// ledger insert. The duplicate check precedes the quota check so a repeated
// request never consumes quota a second time.
func (u *quotaGateUsecase) Admit(ctx context.Context, input AdmitRequestInput) (domain.QuotaCounters, error) {
	var counters domain.QuotaCounters

	err := u.txManager.RunInTx(ctx, func(ctx context.Context) error {
		if err := u.ledger.EnsureSession(ctx, input.SessionID); err != nil {
			return &domain.PersistenceError{Operation: "ensure_session", Err: err}
		}

		fingerprint := u.fingerprint.Compute(input.SessionID.String(), input.Topic, input.Date)
		now := u.now().UTC()

		duplicate, err := u.ledger.FindDuplicate(ctx, input.SessionID, fingerprint, now.Add(-duplicateWindow))
		if err != nil {
			return &domain.PersistenceError{Operation: "duplicate_check", Err: err}
		}
		if duplicate != nil {
			return &domain.DuplicateRequestError{
				Fingerprint: fingerprint,
				FirstSeenAt: duplicate.CreatedAt,
			}
		}

		counters, err = u.countUsage(ctx, input.SessionID, now)
		if err != nil {
			return err
		}

		if counters.DailyUsed >= counters.DailyLimit {
			return &domain.QuotaExceededError{Window: "daily", Used: counters.DailyUsed, Limit: counters.DailyLimit}
		}
		if counters.MonthlyUsed >= counters.MonthlyLimit {
			return &domain.QuotaExceededError{Window: "monthly", Used: counters.MonthlyUsed, Limit: counters.MonthlyLimit}
		}

		entry := &domain.QuotaLedgerEntry{
			SessionID:   input.SessionID,
			RequestType: domain.RequestTypeNewsFetch,
			Topic:       input.Topic,
			Date:        input.Date,
			Fingerprint: fingerprint,
			CreatedAt:   now,
		}
		if err := u.ledger.InsertRequest(ctx, entry); err != nil {
			return &domain.PersistenceError{Operation: "request_recording", Err: err}
		}

		counters.DailyUsed++
		counters.MonthlyUsed++
		counters.Remaining = counters.DailyLimit - counters.DailyUsed
		counters.Available = counters.Remaining > 0
		return nil
	})
	if err != nil {
		return domain.QuotaCounters{}, err
	}

	u.logger.Info("request_admitted",
		slog.String("session_id", input.SessionID.String()),
		slog.Int("daily_used", counters.DailyUsed),
		slog.Int("daily_limit", counters.DailyLimit),
		slog.Int("monthly_used", counters.MonthlyUsed),
		slog.Int("monthly_limit", counters.MonthlyLimit))

	return counters, nil
}

// Counters reports current usage without admitting anything.
func (u *quotaGateUsecase) Counters(ctx context.Context, sessionID uuid.UUID) (domain.QuotaCounters, error) {
	counters, err := u.countUsage(ctx, sessionID, u.now().UTC())
	if err != nil {
		return domain.QuotaCounters{}, err
	}
	return counters, nil
}

func (u *quotaGateUsecase) countUsage(ctx context.Context, sessionID uuid.UUID, now time.Time) (domain.QuotaCounters, error) {
	dayFrom, dayTo := domain.DayWindow(now)
	dailyUsed, err := u.ledger.CountRequests(ctx, sessionID, dayFrom, dayTo)
	if err != nil {
		return domain.QuotaCounters{}, &domain.PersistenceError{Operation: "quota_query", Err: fmt.Errorf("daily count: %w", err)}
	}

	monthFrom, monthTo := domain.MonthWindow(now)
	monthlyUsed, err := u.ledger.CountRequests(ctx, sessionID, monthFrom, monthTo)
	if err != nil {
		return domain.QuotaCounters{}, &domain.PersistenceError{Operation: "quota_query", Err: fmt.Errorf("monthly count: %w", err)}
	}

	remaining := u.config.DailyLimit - dailyUsed
	if remaining < 0 {
		remaining = 0
	}

	return domain.QuotaCounters{
		DailyUsed:    dailyUsed,
		DailyLimit:   u.config.DailyLimit,
		MonthlyUsed:  monthlyUsed,
		MonthlyLimit: u.config.MonthlyLimit,
		Remaining:    remaining,
		Available:    dailyUsed < u.config.DailyLimit,
	}, nil
}
