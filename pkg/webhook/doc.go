// Package webhook authenticates Z402 payment-status callbacks.
//
// Callbacks carry a "z402-signature" header of the form
//
//	t=<unix_seconds>,v1=<hex_hmac_sha256>
//
// where the MAC covers "<timestamp>.<payload>" keyed with the endpoint's
// webhook secret. Verify checks the header format, rejects timestamps
// outside the tolerance window (replay protection in both directions),
// recomputes the MAC over the canonical payload bytes, and compares in
// constant time. Only a byte-exact match yields an event.
//
//	event, err := webhook.Verify(body, r.Header.Get(webhook.Header), secret)
//	if err != nil {
//	    // fail closed; err never reveals the expected MAC
//	}
//
// ConstructSignature builds valid headers with the same scheme for tests
// and fixtures.
package webhook
