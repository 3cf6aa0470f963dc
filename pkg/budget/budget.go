package budget

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Spend windows used for limit enforcement.
const (
	DailyWindow  = 24 * time.Hour
	HourlyWindow = time.Hour
)

// Limits holds the configured spending limits. Daily is required and must
// be positive; Hourly and PerTransaction are optional and disabled when
// zero. Limits are immutable after the Manager is constructed.
type Limits struct {
	Daily          decimal.Decimal
	Hourly         decimal.Decimal
	PerTransaction decimal.Decimal
}

// ParseLimits builds Limits from decimal strings. Empty hourly or
// perTransaction strings leave the corresponding limit unset.
func ParseLimits(daily, hourly, perTransaction string) (Limits, error) {
	var limits Limits
	var err error

	if limits.Daily, err = decimal.NewFromString(daily); err != nil {
		return Limits{}, fmt.Errorf("%w: daily limit %q: %w", ErrInvalidLimit, daily, err)
	}

	if hourly != "" {
		if limits.Hourly, err = decimal.NewFromString(hourly); err != nil {
			return Limits{}, fmt.Errorf("%w: hourly limit %q: %w", ErrInvalidLimit, hourly, err)
		}
	}

	if perTransaction != "" {
		if limits.PerTransaction, err = decimal.NewFromString(perTransaction); err != nil {
			return Limits{}, fmt.Errorf("%w: per-transaction limit %q: %w", ErrInvalidLimit, perTransaction, err)
		}
	}

	return limits, nil
}

func (l Limits) validate() error {
	if !l.Daily.IsPositive() {
		return fmt.Errorf("%w: daily limit must be positive, got %s", ErrInvalidLimit, l.Daily)
	}
	if !l.Hourly.IsZero() && !l.Hourly.IsPositive() {
		return fmt.Errorf("%w: hourly limit must be positive, got %s", ErrInvalidLimit, l.Hourly)
	}
	if !l.PerTransaction.IsZero() && !l.PerTransaction.IsPositive() {
		return fmt.Errorf("%w: per-transaction limit must be positive, got %s", ErrInvalidLimit, l.PerTransaction)
	}
	return nil
}

// HasHourly reports whether an hourly limit is configured.
func (l Limits) HasHourly() bool { return !l.Hourly.IsZero() }

// HasPerTransaction reports whether a per-transaction limit is configured.
func (l Limits) HasPerTransaction() bool { return !l.PerTransaction.IsZero() }

// Metadata is a flat mapping of string keys to primitive values attached
// to a spend record. Nested structures are rejected.
type Metadata map[string]any

func (m Metadata) validate() error {
	for k, v := range m {
		switch v.(type) {
		case string, bool,
			int, int8, int16, int32, int64,
			uint, uint8, uint16, uint32, uint64,
			float32, float64,
			decimal.Decimal:
		default:
			return fmt.Errorf("%w: key %q holds non-primitive value %T", ErrInvalidMetadata, k, v)
		}
	}
	return nil
}

// Record is a single immutable spend entry in the ledger.
type Record struct {
	Amount        decimal.Decimal
	TransactionID string
	Timestamp     time.Time
	Metadata      Metadata
}

// Statistics is a read-only snapshot of budget usage. Monetary values are
// decimal strings; percentages are display values only and never feed
// back into limit enforcement.
type Statistics struct {
	DailyLimit         string   `json:"daily_limit"`
	DailySpent         string   `json:"daily_spent"`
	DailyRemaining     string   `json:"daily_remaining"`
	DailyUsagePercent  float64  `json:"daily_usage_percent"`
	HourlyLimit        string   `json:"hourly_limit,omitempty"`
	HourlySpent        string   `json:"hourly_spent,omitempty"`
	HourlyRemaining    string   `json:"hourly_remaining,omitempty"`
	HourlyUsagePercent *float64 `json:"hourly_usage_percent,omitempty"`
	TransactionLimit   string   `json:"transaction_limit,omitempty"`
}

// Manager tracks spending against rolling time windows. Safe for
// concurrent use.
type Manager struct {
	limits Limits
	store  Store
	now    func() time.Time
}

// Option configures a Manager.
type Option func(*Manager)

// WithStore sets the ledger storage backend. Defaults to an in-memory store.
func WithStore(s Store) Option {
	return func(m *Manager) {
		if s != nil {
			m.store = s
		}
	}
}

// WithClock overrides the time source. Intended for tests.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}

// New creates a budget Manager with the given limits.
func New(limits Limits, opts ...Option) (*Manager, error) {
	if err := limits.validate(); err != nil {
		return nil, err
	}

	m := &Manager{
		limits: limits,
		store:  NewMemoryStore(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Limits returns the configured limits.
func (m *Manager) Limits() Limits { return m.limits }

// CanSpend reports whether amount fits within every configured limit.
// It is a pure query and does not reserve budget: a positive answer can
// be invalidated by a concurrent RecordSpend. Fails closed on storage
// errors.
func (m *Manager) CanSpend(ctx context.Context, amount decimal.Decimal) bool {
	if !amount.IsPositive() {
		return false
	}
	if m.limits.HasPerTransaction() && amount.GreaterThan(m.limits.PerTransaction) {
		return false
	}

	now := m.now()

	dailySpent, err := m.store.SpentSince(ctx, now.Add(-DailyWindow))
	if err != nil || dailySpent.Add(amount).GreaterThan(m.limits.Daily) {
		return false
	}

	if m.limits.HasHourly() {
		hourlySpent, err := m.store.SpentSince(ctx, now.Add(-HourlyWindow))
		if err != nil || hourlySpent.Add(amount).GreaterThan(m.limits.Hourly) {
			return false
		}
	}

	return true
}

// RecordSpend appends a spend record, re-checking affordability and
// appending under one critical section in the store. It returns an error
// wrapping ErrBudgetExceeded when the spend would violate a limit.
func (m *Manager) RecordSpend(ctx context.Context, amount decimal.Decimal, transactionID string, metadata Metadata) error {
	if !amount.IsPositive() {
		return fmt.Errorf("%w: amount must be positive, got %s", ErrInvalidAmount, amount)
	}
	if err := metadata.validate(); err != nil {
		return err
	}

	// The per-transaction check does not depend on ledger state, so it is
	// race-free outside the store's critical section.
	if m.limits.HasPerTransaction() && amount.GreaterThan(m.limits.PerTransaction) {
		return fmt.Errorf("%w: amount %s exceeds per-transaction limit %s",
			ErrBudgetExceeded, amount, m.limits.PerTransaction)
	}

	rec := Record{
		Amount:        amount,
		TransactionID: transactionID,
		Timestamp:     m.now(),
		Metadata:      metadata,
	}
	return m.store.Append(ctx, rec, m.limits)
}

// DailySpent returns the total spend in the trailing 24-hour window.
func (m *Manager) DailySpent(ctx context.Context) (decimal.Decimal, error) {
	return m.store.SpentSince(ctx, m.now().Add(-DailyWindow))
}

// HourlySpent returns the total spend in the trailing 1-hour window.
func (m *Manager) HourlySpent(ctx context.Context) (decimal.Decimal, error) {
	return m.store.SpentSince(ctx, m.now().Add(-HourlyWindow))
}

// RemainingDaily returns the remaining daily budget.
func (m *Manager) RemainingDaily(ctx context.Context) (decimal.Decimal, error) {
	spent, err := m.DailySpent(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	return m.limits.Daily.Sub(spent), nil
}

// RemainingHourly returns the remaining hourly budget. The boolean is
// false when no hourly limit is configured.
func (m *Manager) RemainingHourly(ctx context.Context) (decimal.Decimal, bool, error) {
	if !m.limits.HasHourly() {
		return decimal.Zero, false, nil
	}
	spent, err := m.HourlySpent(ctx)
	if err != nil {
		return decimal.Zero, true, err
	}
	return m.limits.Hourly.Sub(spent), true, nil
}

// History returns the records with a timestamp inside the trailing
// window, in chronological order.
func (m *Manager) History(ctx context.Context, window time.Duration) ([]Record, error) {
	return m.store.History(ctx, m.now().Add(-window))
}

// Reset clears all records. Intended for test isolation rather than
// normal operation.
func (m *Manager) Reset(ctx context.Context) error {
	return m.store.Reset(ctx)
}

// Compact removes records older than the largest configured window (24h).
// Records that old no longer contribute to any windowed sum, so dropping
// them cannot change an affordability decision. Returns the number of
// records removed.
func (m *Manager) Compact(ctx context.Context) (int, error) {
	return m.store.Compact(ctx, m.now().Add(-DailyWindow))
}

// Statistics returns a usage snapshot computed from a single read of the
// trailing 24-hour history, so the daily and hourly figures cannot tear.
func (m *Manager) Statistics(ctx context.Context) (Statistics, error) {
	now := m.now()

	records, err := m.store.History(ctx, now.Add(-DailyWindow))
	if err != nil {
		return Statistics{}, err
	}

	dailySpent := decimal.Zero
	hourlySpent := decimal.Zero
	hourlyStart := now.Add(-HourlyWindow)
	for _, rec := range records {
		dailySpent = dailySpent.Add(rec.Amount)
		if !rec.Timestamp.Before(hourlyStart) {
			hourlySpent = hourlySpent.Add(rec.Amount)
		}
	}

	stats := Statistics{
		DailyLimit:        m.limits.Daily.String(),
		DailySpent:        dailySpent.String(),
		DailyRemaining:    m.limits.Daily.Sub(dailySpent).String(),
		DailyUsagePercent: usagePercent(dailySpent, m.limits.Daily),
	}

	if m.limits.HasHourly() {
		pct := usagePercent(hourlySpent, m.limits.Hourly)
		stats.HourlyLimit = m.limits.Hourly.String()
		stats.HourlySpent = hourlySpent.String()
		stats.HourlyRemaining = m.limits.Hourly.Sub(hourlySpent).String()
		stats.HourlyUsagePercent = &pct
	}

	if m.limits.HasPerTransaction() {
		stats.TransactionLimit = m.limits.PerTransaction.String()
	}

	return stats, nil
}

func usagePercent(spent, limit decimal.Decimal) float64 {
	if limit.IsZero() {
		return 0
	}
	return spent.Div(limit).Mul(decimal.NewFromInt(100)).InexactFloat64()
}
