package budget

import "errors"

// Domain errors for budget operations. Limit violations all wrap
// ErrBudgetExceeded so callers can classify them with a single errors.Is
// check while still distinguishing which window was hit.
var (
	ErrBudgetExceeded = errors.New("budget limit exceeded")

	ErrInvalidLimit    = errors.New("invalid budget limit")
	ErrInvalidAmount   = errors.New("invalid spend amount")
	ErrInvalidMetadata = errors.New("invalid spend metadata")

	// ErrStoreContention is returned by the Redis store when the optimistic
	// check-and-append transaction keeps losing races with concurrent writers.
	ErrStoreContention = errors.New("budget store contention")
)

// IsBudgetExceeded reports whether err represents a limit violation.
func IsBudgetExceeded(err error) bool {
	return errors.Is(err, ErrBudgetExceeded)
}
