package transport

import (
	"errors"
	"fmt"
	"time"
)

// Sentinel identities for the error taxonomy. API errors carry a typed
// *Error that unwraps to one of these, so callers classify with errors.Is
// while still reaching status codes and details through errors.As.
var (
	ErrNetwork         = errors.New("network request failed")
	ErrRateLimit       = errors.New("rate limit exceeded")
	ErrAuthentication  = errors.New("authentication failed")
	ErrInvalidRequest  = errors.New("invalid request")
	ErrNotFound        = errors.New("resource not found")
	ErrPaymentRequired = errors.New("payment required")
	ErrAPI             = errors.New("api error")
)

// Kind is the machine-readable classification of an API error.
type Kind string

const (
	KindNetwork         Kind = "network_error"
	KindRateLimit       Kind = "rate_limit"
	KindAuthentication  Kind = "authentication_error"
	KindInvalidRequest  Kind = "invalid_request"
	KindNotFound        Kind = "not_found"
	KindPaymentRequired Kind = "payment_required"
	KindAPI             Kind = "api_error"
)

func (k Kind) sentinel() error {
	switch k {
	case KindNetwork:
		return ErrNetwork
	case KindRateLimit:
		return ErrRateLimit
	case KindAuthentication:
		return ErrAuthentication
	case KindInvalidRequest:
		return ErrInvalidRequest
	case KindNotFound:
		return ErrNotFound
	case KindPaymentRequired:
		return ErrPaymentRequired
	default:
		return ErrAPI
	}
}

// Error is a classified request failure.
type Error struct {
	Kind       Kind
	StatusCode int
	Message    string
	Details    any

	// RetryAfter is the server-provided delay on rate-limit errors, zero
	// when the server did not send one.
	RetryAfter time.Duration

	// Amount and Resource describe the requested payment on
	// payment-required errors.
	Amount   string
	Resource string

	cause error
}

func (e *Error) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("[%d] %s", e.StatusCode, e.Message)
	}
	return e.Message
}

// Unwrap exposes the kind sentinel and, for network errors, the
// underlying transport failure.
func (e *Error) Unwrap() []error {
	if e.cause != nil {
		return []error{e.Kind.sentinel(), e.cause}
	}
	return []error{e.Kind.sentinel()}
}

// IsRetryable reports whether blind re-attempt has a reasonable chance of
// success: transport failures, throttling, and 5xx server faults.
// Authentication, validation, not-found, and payment-required errors need
// a caller decision and are never retried.
func IsRetryable(err error) bool {
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		return false
	}
	switch apiErr.Kind {
	case KindNetwork, KindRateLimit:
		return true
	}
	return apiErr.StatusCode >= 500 && apiErr.StatusCode < 600
}
