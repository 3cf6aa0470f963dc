package z402

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Blessedbiello/Z402/pkg/budget"
	"github.com/Blessedbiello/Z402/pkg/transport"
)

// Network selects the facilitator environment.
type Network string

const (
	NetworkMainnet Network = "mainnet"
	NetworkTestnet Network = "testnet"
)

// Client-level errors.
var (
	ErrAPIKeyRequired = errors.New("api key is required")
	ErrInvalidAPIKey  = errors.New("invalid api key format: api keys start with \"z402_\"")
	ErrNoBudget       = errors.New("no budget manager configured")
)

type clientConfig struct {
	network       Network
	baseURL       string
	timeout       time.Duration
	retry         transport.RetryPolicy
	hasRetry      bool
	httpClient    *http.Client
	log           *slog.Logger
	budgetManager *budget.Manager
}

// Option configures a Client.
type Option func(*clientConfig)

// WithNetwork selects mainnet or testnet. Defaults to testnet.
func WithNetwork(n Network) Option {
	return func(c *clientConfig) { c.network = n }
}

// WithBaseURL overrides the base endpoint regardless of network.
func WithBaseURL(baseURL string) Option {
	return func(c *clientConfig) { c.baseURL = baseURL }
}

// WithTimeout sets the per-attempt request timeout. Defaults to 30s.
func WithTimeout(d time.Duration) Option {
	return func(c *clientConfig) { c.timeout = d }
}

// WithRetryPolicy replaces the default retry policy.
func WithRetryPolicy(p transport.RetryPolicy) Option {
	return func(c *clientConfig) { c.retry = p; c.hasRetry = true }
}

// WithMaxRetries adjusts only the retry attempt budget.
func WithMaxRetries(n int) Option {
	return func(c *clientConfig) {
		if !c.hasRetry {
			c.retry = transport.DefaultRetryPolicy()
			c.hasRetry = true
		}
		c.retry.MaxRetries = n
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *clientConfig) { c.httpClient = hc }
}

// WithLogger enables request/retry diagnostics.
func WithLogger(log *slog.Logger) Option {
	return func(c *clientConfig) { c.log = log }
}

// WithBudget attaches a budget manager consulted by Pay.
func WithBudget(m *budget.Manager) Option {
	return func(c *clientConfig) { c.budgetManager = m }
}

// Client is the Z402 API client: thin resource services wired to the
// request pipeline, plus an optional spend ledger consulted before
// autonomous payments.
type Client struct {
	Payments     *PaymentsService
	Transactions *TransactionsService
	Webhooks     *WebhooksService

	// Budget is nil unless configured with WithBudget.
	Budget *budget.Manager

	transport *transport.Client
}

// New creates a Z402 client. The API key must carry the "z402_" prefix.
func New(apiKey string, opts ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, ErrAPIKeyRequired
	}
	if !strings.HasPrefix(apiKey, "z402_") {
		return nil, ErrInvalidAPIKey
	}

	cfg := clientConfig{network: NetworkTestnet}
	for _, opt := range opts {
		opt(&cfg)
	}

	baseURL := cfg.baseURL
	if baseURL == "" {
		if cfg.network == NetworkMainnet {
			baseURL = transport.MainnetBaseURL
		} else {
			baseURL = transport.TestnetBaseURL
		}
	}

	topts := []transport.Option{transport.WithBaseURL(baseURL)}
	if cfg.timeout > 0 {
		topts = append(topts, transport.WithTimeout(cfg.timeout))
	}
	if cfg.hasRetry {
		topts = append(topts, transport.WithRetryPolicy(cfg.retry))
	}
	if cfg.httpClient != nil {
		topts = append(topts, transport.WithHTTPClient(cfg.httpClient))
	}
	if cfg.log != nil {
		topts = append(topts, transport.WithLogger(cfg.log))
	}

	t := transport.New(apiKey, topts...)
	return &Client{
		Payments:     &PaymentsService{transport: t},
		Transactions: &TransactionsService{transport: t},
		Webhooks:     &WebhooksService{transport: t},
		Budget:       cfg.budgetManager,
		transport:    t,
	}, nil
}

// Close releases the transport's pooled connections.
func (c *Client) Close() {
	c.transport.Close()
}

// PayParams describe one autonomous payment: create an intent for the
// resource, submit the on-chain payment reference, and record the spend.
type PayParams struct {
	Amount      string
	Resource    string
	FromAddress string
	TxID        string
	Metadata    map[string]any

	// SkipBudgetCheck bypasses the affordability check while still
	// recording the spend afterwards.
	SkipBudgetCheck bool
}

// Pay creates and pays for a resource in one call. When a budget manager
// is configured, affordability is checked first and the spend recorded
// after the payment succeeds. A non-nil intent alongside a non-nil error
// means the payment went through but the ledger rejected the record; the
// caller holds a payment its budget did not admit.
func (c *Client) Pay(ctx context.Context, params PayParams) (*PaymentIntent, error) {
	amount, err := decimal.NewFromString(params.Amount)
	if err != nil {
		return nil, fmt.Errorf("%w: amount %q: %w", budget.ErrInvalidAmount, params.Amount, err)
	}

	if c.Budget != nil && !params.SkipBudgetCheck {
		if !c.Budget.CanSpend(ctx, amount) {
			return nil, fmt.Errorf("%w: spending %s would exceed configured limits",
				budget.ErrBudgetExceeded, params.Amount)
		}
	}

	intent, err := c.Payments.Create(ctx, CreatePaymentIntentParams{
		Amount:   params.Amount,
		Resource: params.Resource,
		Metadata: params.Metadata,
	})
	if err != nil {
		return nil, err
	}

	paid, err := c.Payments.Pay(ctx, intent.ID, PaymentParams{
		FromAddress: params.FromAddress,
		TxID:        params.TxID,
	})
	if err != nil {
		return nil, err
	}

	if c.Budget != nil {
		if err := c.Budget.RecordSpend(ctx, amount, paid.ID, params.Metadata); err != nil {
			return paid, err
		}
	}
	return paid, nil
}
