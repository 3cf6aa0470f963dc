package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Header is the HTTP header carrying the webhook signature.
const Header = "z402-signature"

// DefaultTolerance is the maximum accepted age (in either direction) of a
// signature timestamp.
const DefaultTolerance = 5 * time.Minute

// Signature is the parsed form of a z402-signature header value.
type Signature struct {
	Timestamp int64
	MAC       string
}

// Event is a payment-status callback returned only after successful
// verification. Data is left opaque for the caller to decode.
type Event struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	Data      json.RawMessage `json:"data"`
	CreatedAt time.Time       `json:"createdAt"`
}

// ParseSignature parses a header of the form "t=<unix_seconds>,v1=<hex>".
// Unknown components are ignored; both t and v1 are required.
func ParseSignature(header string) (Signature, error) {
	var sig Signature
	var haveTimestamp, haveMAC bool

	for _, part := range strings.Split(header, ",") {
		key, value, found := strings.Cut(part, "=")
		if !found {
			continue
		}
		switch key {
		case "t":
			ts, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return Signature{}, ErrInvalidTimestamp
			}
			sig.Timestamp = ts
			haveTimestamp = true
		case "v1":
			sig.MAC = value
			haveMAC = true
		}
	}

	if !haveTimestamp || !haveMAC {
		return Signature{}, ErrInvalidFormat
	}
	return sig, nil
}

type verifyConfig struct {
	tolerance time.Duration
	now       func() time.Time
}

// VerifyOption configures Verify.
type VerifyOption func(*verifyConfig)

// WithTolerance overrides the freshness tolerance. Defaults to 5 minutes.
func WithTolerance(d time.Duration) VerifyOption {
	return func(c *verifyConfig) {
		if d > 0 {
			c.tolerance = d
		}
	}
}

// WithClock overrides the time source used for the freshness check.
// Intended for tests.
func WithClock(now func() time.Time) VerifyOption {
	return func(c *verifyConfig) {
		if now != nil {
			c.now = now
		}
	}
}

// Verify authenticates a webhook payload against its signature header and
// returns the parsed event. The payload may be the raw request body
// ([]byte or string, used as-is) or a structured value (serialized to
// compact JSON, which must match the form the sender signed).
//
// Verification fails closed: any parse error, a timestamp outside the
// tolerance window in either direction, or a MAC mismatch rejects the
// event. The MAC comparison is constant-time and the returned error never
// includes the expected value.
func Verify(payload any, header, secret string, opts ...VerifyOption) (Event, error) {
	canonical, err := VerifyPayload(payload, header, secret, opts...)
	if err != nil {
		return Event{}, err
	}

	var event Event
	if err := json.Unmarshal(canonical, &event); err != nil {
		return Event{}, fmt.Errorf("%w: %w", ErrInvalidPayload, err)
	}
	return event, nil
}

// VerifyPayload authenticates the payload like Verify but returns the
// canonical bytes instead of a parsed event, for callers that decode the
// payload themselves.
func VerifyPayload(payload any, header, secret string, opts ...VerifyOption) ([]byte, error) {
	if header == "" {
		return nil, ErrMissingSignature
	}
	if secret == "" {
		return nil, ErrMissingSecret
	}

	cfg := verifyConfig{tolerance: DefaultTolerance, now: time.Now}
	for _, opt := range opts {
		opt(&cfg)
	}

	sig, err := ParseSignature(header)
	if err != nil {
		return nil, err
	}

	// Reject both stale and clock-skewed-future signatures.
	now := cfg.now().Unix()
	if age := now - sig.Timestamp; age > int64(cfg.tolerance/time.Second) || -age > int64(cfg.tolerance/time.Second) {
		return nil, ErrStaleSignature
	}

	canonical, err := canonicalize(payload)
	if err != nil {
		return nil, err
	}

	expected := computeMAC(canonical, secret, sig.Timestamp)
	if !hmac.Equal([]byte(expected), []byte(sig.MAC)) {
		return nil, ErrMismatch
	}
	return canonical, nil
}

// ConstructSignature produces a header value for the payload using the
// same canonicalization and MAC scheme as Verify. Intended for fixtures,
// tests, and local facilitator emulation.
func ConstructSignature(payload any, secret string) (string, error) {
	return ConstructSignatureAt(payload, secret, time.Now())
}

// ConstructSignatureAt is ConstructSignature with an explicit timestamp.
func ConstructSignatureAt(payload any, secret string, at time.Time) (string, error) {
	canonical, err := canonicalize(payload)
	if err != nil {
		return "", err
	}
	ts := at.Unix()
	return fmt.Sprintf("t=%d,v1=%s", ts, computeMAC(canonical, secret, ts)), nil
}

// canonicalize returns the exact byte form to sign or verify. Raw bytes
// and strings pass through untouched; structured values are marshaled to
// compact JSON. The facilitator signs compact JSON with keys in their
// serialized order, so re-serialization only matches when the sender uses
// the same encoding; receivers should prefer passing the raw body.
func canonicalize(payload any) ([]byte, error) {
	switch p := payload.(type) {
	case json.RawMessage:
		return p, nil
	case []byte:
		return p, nil
	case string:
		return []byte(p), nil
	default:
		data, err := json.Marshal(p)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidPayload, err)
		}
		return data, nil
	}
}

func computeMAC(canonical []byte, secret string, timestamp int64) string {
	h := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(h, "%d.", timestamp)
	h.Write(canonical)
	return hex.EncodeToString(h.Sum(nil))
}
