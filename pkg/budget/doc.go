// Package budget provides a concurrent, time-windowed spend ledger for
// autonomous payment clients.
//
// A Manager enforces three optional layers of limits: a required daily
// (trailing 24h) limit, an optional hourly (trailing 1h) limit, and an
// optional per-transaction limit. All monetary arithmetic uses exact
// decimal values; floats only ever appear in display-oriented percentage
// statistics.
//
// The critical operation is RecordSpend: it re-checks affordability and
// appends the record inside a single critical section, so concurrent
// callers can never jointly exceed a limit through interleaved
// check-then-append sequences.
//
// # Basic Usage
//
//	limits, err := budget.ParseLimits("1.0", "0.1", "0.01")
//	if err != nil { ... }
//
//	mgr, err := budget.New(limits)
//	if err != nil { ... }
//
//	if mgr.CanSpend(ctx, amount) {
//	    // ... submit the payment ...
//	    if err := mgr.RecordSpend(ctx, amount, payment.ID, nil); err != nil {
//	        // a concurrent spend consumed the remaining budget
//	    }
//	}
//
// # Storage Backends
//
// The default store keeps records in memory behind one mutex. For budgets
// shared across processes, NewRedisStore keeps the ledger in a Redis
// sorted set and performs the check-and-append inside an optimistic
// WATCH/MULTI transaction, preserving the no-overspend invariant across
// distributed callers.
//
// History grows without bound by design; long-lived deployments should
// call Compact periodically to drop records older than the largest
// configured window.
package budget
