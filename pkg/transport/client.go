package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Version identifies this client in the User-Agent header.
const Version = "0.1.0"

// Fixed base endpoints; an explicit override takes precedence over both.
const (
	MainnetBaseURL = "https://api.z402.io/v1"
	TestnetBaseURL = "https://api-testnet.z402.io/v1"
)

const (
	headerAPIKey         = "X-API-Key"
	headerIdempotencyKey = "Idempotency-Key"
	userAgent            = "z402-go/" + Version
)

// maxResponseBody caps how much of a response is read into memory.
const maxResponseBody = 10 << 20

// Client executes logical API operations against a base endpoint with
// uniform headers, typed error classification, and backoff-based retry.
// Safe for concurrent use; in-flight operations share nothing mutable
// beyond the pooled HTTP transport.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	retry      RetryPolicy
	log        *slog.Logger
}

// New creates a transport client for the given API key. The default
// endpoint is testnet; use WithBaseURL or the higher-level client's
// network selector to change it.
func New(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:  apiKey,
		baseURL: TestnetBaseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		retry: DefaultRetryPolicy(),
		log:   slog.New(noopHandler{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.baseURL = strings.TrimRight(c.baseURL, "/")
	return c
}

// BaseURL returns the configured base endpoint.
func (c *Client) BaseURL() string { return c.baseURL }

// Close releases idle connections held by the underlying transport.
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}

// Request executes one logical operation and returns the decoded success
// body. Failures are classified into the package's error taxonomy and
// retried per the client's RetryPolicy when retryable. Mutating methods
// carry an Idempotency-Key that stays constant across retries, so a
// replayed create cannot double-charge.
func (c *Client) Request(ctx context.Context, method, path string, opts ...RequestOption) (json.RawMessage, error) {
	ro := requestOptions{}
	for _, opt := range opts {
		opt(&ro)
	}

	reqURL, err := c.buildURL(path, ro.query)
	if err != nil {
		return nil, err
	}

	var body []byte
	if ro.body != nil {
		if body, err = json.Marshal(ro.body); err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
	}

	var idempotencyKey string
	if method != http.MethodGet && method != http.MethodHead {
		idempotencyKey = uuid.NewString()
	}

	policy := c.retry
	policy.OnRetry = func(err error, delay time.Duration, attempt int) {
		c.log.WarnContext(ctx, "retrying request",
			slog.String("method", method),
			slog.String("url", reqURL),
			slog.Int("attempt", attempt),
			slog.Duration("delay", delay),
			slog.String("error", err.Error()))
	}

	return Retry(ctx, policy, func(ctx context.Context) (json.RawMessage, error) {
		return c.do(ctx, method, reqURL, body, ro.headers, idempotencyKey)
	})
}

// Get executes a GET request. Query keys with empty values are omitted.
func (c *Client) Get(ctx context.Context, path string, query url.Values) (json.RawMessage, error) {
	return c.Request(ctx, http.MethodGet, path, WithQuery(query))
}

// Post executes a POST request with an optional JSON body.
func (c *Client) Post(ctx context.Context, path string, body any) (json.RawMessage, error) {
	return c.Request(ctx, http.MethodPost, path, WithBody(body))
}

// Put executes a PUT request with an optional JSON body.
func (c *Client) Put(ctx context.Context, path string, body any) (json.RawMessage, error) {
	return c.Request(ctx, http.MethodPut, path, WithBody(body))
}

// Patch executes a PATCH request with an optional JSON body.
func (c *Client) Patch(ctx context.Context, path string, body any) (json.RawMessage, error) {
	return c.Request(ctx, http.MethodPatch, path, WithBody(body))
}

// Delete executes a DELETE request.
func (c *Client) Delete(ctx context.Context, path string) (json.RawMessage, error) {
	return c.Request(ctx, http.MethodDelete, path)
}

func (c *Client) buildURL(path string, query url.Values) (string, error) {
	full := c.baseURL + path
	if len(query) == 0 {
		return full, nil
	}

	// Absent values are omitted rather than sent as empty parameters.
	filtered := url.Values{}
	for k, vs := range query {
		for _, v := range vs {
			if v != "" {
				filtered.Add(k, v)
			}
		}
	}
	if encoded := filtered.Encode(); encoded != "" {
		full += "?" + encoded
	}
	return full, nil
}

// do performs a single attempt: build the request, send it, classify the
// outcome.
func (c *Client) do(ctx context.Context, method, reqURL string, body []byte, headers map[string]string, idempotencyKey string) (json.RawMessage, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	// Caller headers first; required headers afterwards so they can be
	// extended but never removed.
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	req.Header.Set(headerAPIKey, c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)
	if idempotencyKey != "" {
		req.Header.Set(headerIdempotencyKey, idempotencyKey)
	}

	c.log.DebugContext(ctx, "sending request",
		slog.String("method", method), slog.String("url", reqURL))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &Error{
			Kind:    KindNetwork,
			Message: "network request failed: " + err.Error(),
			cause:   err,
		}
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return nil, &Error{
			Kind:    KindNetwork,
			Message: "read response body: " + err.Error(),
			cause:   err,
		}
	}

	c.log.DebugContext(ctx, "received response",
		slog.String("method", method), slog.String("url", reqURL),
		slog.Int("status", resp.StatusCode))

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return json.RawMessage(data), nil
	}
	return nil, classify(resp, data)
}

// errorEnvelope matches the facilitator's error body shapes: either a
// nested {"error": {"message": ..., "details": ...}} object or flat
// top-level fields, plus payment info on 402 responses.
type errorEnvelope struct {
	Error struct {
		Message string `json:"message"`
		Details any    `json:"details"`
	} `json:"error"`
	Message string `json:"message"`
	Details any    `json:"details"`
	Payment struct {
		Amount   string `json:"amount"`
		Resource string `json:"resource"`
	} `json:"payment"`
}

func classify(resp *http.Response, body []byte) *Error {
	var env errorEnvelope
	if err := json.Unmarshal(body, &env); err != nil && len(body) > 0 {
		env.Message = strings.TrimSpace(string(body))
	}

	message := env.Error.Message
	if message == "" {
		message = env.Message
	}
	if message == "" {
		message = "API error"
	}
	details := env.Error.Details
	if details == nil {
		details = env.Details
	}

	apiErr := &Error{
		StatusCode: resp.StatusCode,
		Message:    message,
		Details:    details,
	}

	switch {
	case resp.StatusCode == http.StatusBadRequest:
		apiErr.Kind = KindInvalidRequest
	case resp.StatusCode == http.StatusUnauthorized:
		apiErr.Kind = KindAuthentication
	case resp.StatusCode == http.StatusPaymentRequired:
		apiErr.Kind = KindPaymentRequired
		apiErr.Amount = env.Payment.Amount
		apiErr.Resource = env.Payment.Resource
	case resp.StatusCode == http.StatusNotFound:
		apiErr.Kind = KindNotFound
	case resp.StatusCode == http.StatusTooManyRequests:
		apiErr.Kind = KindRateLimit
		apiErr.RetryAfter = parseRetryAfter(resp.Header.Get("Retry-After"))
	default:
		apiErr.Kind = KindAPI
	}
	return apiErr
}

func parseRetryAfter(value string) time.Duration {
	if value == "" {
		return 0
	}
	secs, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || secs < 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}
