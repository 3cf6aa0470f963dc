package transport

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"time"
)

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the base endpoint.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		if baseURL != "" {
			c.baseURL = baseURL
		}
	}
}

// WithHTTPClient sets a custom HTTP client. Useful for custom transports,
// proxies, or testing.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithTimeout sets the per-attempt request timeout on the underlying
// HTTP client.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

// WithRetryPolicy replaces the default retry policy.
func WithRetryPolicy(policy RetryPolicy) Option {
	return func(c *Client) {
		c.retry = policy
	}
}

// WithMaxRetries adjusts only the attempt budget of the current policy.
func WithMaxRetries(n int) Option {
	return func(c *Client) {
		if n >= 0 {
			c.retry.MaxRetries = n
		}
	}
}

// WithLogger sets the logger used for request/retry diagnostics.
// Defaults to a no-op logger.
func WithLogger(log *slog.Logger) Option {
	return func(c *Client) {
		if log != nil {
			c.log = log
		}
	}
}

// requestOptions carries per-request parameters.
type requestOptions struct {
	body    any
	query   url.Values
	headers map[string]string
}

// RequestOption configures a single logical operation.
type RequestOption func(*requestOptions)

// WithBody sets the JSON request body.
func WithBody(body any) RequestOption {
	return func(o *requestOptions) {
		o.body = body
	}
}

// WithQuery sets query parameters. Keys with empty values are omitted
// from the request URL.
func WithQuery(query url.Values) RequestOption {
	return func(o *requestOptions) {
		o.query = query
	}
}

// WithHeader adds a custom header. Required headers (API key,
// content type, user agent) cannot be overridden.
func WithHeader(key, value string) RequestOption {
	return func(o *requestOptions) {
		if key == "" {
			return
		}
		if o.headers == nil {
			o.headers = make(map[string]string)
		}
		o.headers[key] = value
	}
}

// WithHeaders adds multiple custom headers.
func WithHeaders(headers map[string]string) RequestOption {
	return func(o *requestOptions) {
		for k, v := range headers {
			if k == "" {
				continue
			}
			if o.headers == nil {
				o.headers = make(map[string]string)
			}
			o.headers[k] = v
		}
	}
}

// noopHandler is a slog.Handler that discards all logs.
type noopHandler struct{}

func (noopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (noopHandler) Handle(context.Context, slog.Record) error { return nil }
func (n noopHandler) WithAttrs([]slog.Attr) slog.Handler      { return n }
func (n noopHandler) WithGroup(string) slog.Handler           { return n }
