package domain

import (
	"time"

	"github.com/google/uuid"
)

// RequestType tags ledger entries by the operation that consumed quota.
type RequestType string

const RequestTypeNewsFetch RequestType = "news_fetch"

// QuotaLedgerEntry is an append-only record of an admitted request.
// Entries are never mutated, only counted and queried by date range.
type QuotaLedgerEntry struct {
	ID          int64
	SessionID   uuid.UUID
	RequestType RequestType
	Topic       string
	Date        string
	Fingerprint string
	CreatedAt   time.Time
}

// QuotaCounters is derived on demand from ledger rows. Windows are
// calendar-day and calendar-month boundaries in UTC, not rolling.
type QuotaCounters struct {
	DailyUsed    int  `json:"daily_used"`
	DailyLimit   int  `json:"daily_limit"`
	MonthlyUsed  int  `json:"monthly_used"`
	MonthlyLimit int  `json:"monthly_limit"`
	Remaining    int  `json:"remaining"`
	Available    bool `json:"quota_available"`
}

// DayWindow returns the UTC calendar-day bounds containing now.
func DayWindow(now time.Time) (time.Time, time.Time) {
	now = now.UTC()
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 0, 1)
}

// MonthWindow returns the UTC calendar-month bounds containing now.
func MonthWindow(now time.Time) (time.Time, time.Time) {
	now = now.UTC()
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, 0)
}
