package budget

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// Store is the ledger storage backend. Implementations must make Append
// atomic: the window sums are re-evaluated and the record appended without
// any interleaved write, which is what upholds the no-overspend invariant
// under concurrency.
type Store interface {
	// Append re-checks the daily (and, when configured, hourly) window sums
	// against limits and appends rec in one atomic step. The windows are
	// anchored at rec.Timestamp. Returns an error wrapping ErrBudgetExceeded
	// when the spend does not fit.
	Append(ctx context.Context, rec Record, limits Limits) error

	// SpentSince returns the sum of amounts of records with a timestamp at
	// or after since.
	SpentSince(ctx context.Context, since time.Time) (decimal.Decimal, error)

	// History returns records with a timestamp at or after since, in
	// chronological order.
	History(ctx context.Context, since time.Time) ([]Record, error)

	// Compact removes records strictly older than olderThan and returns how
	// many were removed.
	Compact(ctx context.Context, olderThan time.Time) (int, error)

	// Reset removes all records.
	Reset(ctx context.Context) error
}

// MemoryStore keeps the ledger in memory behind one mutex. Records are
// appended in timestamp order.
type MemoryStore struct {
	mu      sync.RWMutex
	records []Record
}

// NewMemoryStore creates an empty in-memory ledger store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Append(ctx context.Context, rec Record, limits Limits) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	daily := s.spentSinceLocked(rec.Timestamp.Add(-DailyWindow))
	if daily.Add(rec.Amount).GreaterThan(limits.Daily) {
		return fmt.Errorf("%w: daily spend %s + %s exceeds limit %s",
			ErrBudgetExceeded, daily, rec.Amount, limits.Daily)
	}

	if limits.HasHourly() {
		hourly := s.spentSinceLocked(rec.Timestamp.Add(-HourlyWindow))
		if hourly.Add(rec.Amount).GreaterThan(limits.Hourly) {
			return fmt.Errorf("%w: hourly spend %s + %s exceeds limit %s",
				ErrBudgetExceeded, hourly, rec.Amount, limits.Hourly)
		}
	}

	s.records = append(s.records, rec)
	return nil
}

func (s *MemoryStore) SpentSince(ctx context.Context, since time.Time) (decimal.Decimal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.spentSinceLocked(since), nil
}

func (s *MemoryStore) spentSinceLocked(since time.Time) decimal.Decimal {
	total := decimal.Zero
	for _, rec := range s.records {
		if !rec.Timestamp.Before(since) {
			total = total.Add(rec.Amount)
		}
	}
	return total
}

func (s *MemoryStore) History(ctx context.Context, since time.Time) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Record
	for _, rec := range s.records {
		if !rec.Timestamp.Before(since) {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (s *MemoryStore) Compact(ctx context.Context, olderThan time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.records[:0]
	for _, rec := range s.records {
		if !rec.Timestamp.Before(olderThan) {
			kept = append(kept, rec)
		}
	}
	removed := len(s.records) - len(kept)
	s.records = kept
	return removed, nil
}

func (s *MemoryStore) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = nil
	return nil
}
