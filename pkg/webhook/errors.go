package webhook

import (
	"errors"
	"fmt"
)

// ErrVerificationFailed is the stable identity for every verification
// failure; the specific sentinels below wrap it so callers can treat all
// of them uniformly or inspect the exact cause.
var ErrVerificationFailed = errors.New("webhook verification failed")

var (
	ErrMissingSignature = fmt.Errorf("%w: missing signature header", ErrVerificationFailed)
	ErrMissingSecret    = fmt.Errorf("%w: webhook secret not provided", ErrVerificationFailed)
	ErrInvalidFormat    = fmt.Errorf("%w: invalid signature format", ErrVerificationFailed)
	ErrInvalidTimestamp = fmt.Errorf("%w: invalid timestamp in signature", ErrVerificationFailed)
	ErrStaleSignature   = fmt.Errorf("%w: signature timestamp outside tolerance", ErrVerificationFailed)
	ErrMismatch         = fmt.Errorf("%w: signature mismatch", ErrVerificationFailed)
	ErrInvalidPayload   = fmt.Errorf("%w: invalid payload", ErrVerificationFailed)
)
