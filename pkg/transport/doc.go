// Package transport executes logical HTTP operations against the Z402
// facilitator API with uniform header and query construction, typed error
// classification, and exponential-backoff retry.
//
// Every non-success response maps onto a stable taxonomy: invalid_request
// (400), authentication_error (401), payment_required (402, carrying the
// requested amount and resource), not_found (404), rate_limit (429,
// carrying the server's Retry-After), api_error (5xx and unknown
// statuses), and network_error for transport failures. Network failures,
// rate limits, and 5xx responses are retried; everything else surfaces
// immediately because blind re-attempts cannot fix a caller fault.
//
//	client := transport.New(apiKey, transport.WithBaseURL(transport.MainnetBaseURL))
//	defer client.Close()
//
//	raw, err := client.Get(ctx, "/transactions", url.Values{"limit": {"10"}})
//	if errors.Is(err, transport.ErrPaymentRequired) {
//	    var apiErr *transport.Error
//	    errors.As(err, &apiErr)
//	    // apiErr.Amount, apiErr.Resource
//	}
//
// Retry waits suspend on a timer select against ctx.Done, so abandoning
// an operation takes effect at the next retry decision point without
// blocking unrelated work.
package transport
