package z402

import (
	"net/url"
	"strconv"
	"time"
)

// PaymentStatus is the lifecycle state of a payment intent.
type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPaid    PaymentStatus = "paid"
	PaymentStatusSettled PaymentStatus = "settled"
	PaymentStatusFailed  PaymentStatus = "failed"
	PaymentStatusExpired PaymentStatus = "expired"
)

// PaymentIntent is a facilitator-issued record representing a requested
// payment for a resource.
type PaymentIntent struct {
	ID           string         `json:"id"`
	Amount       string         `json:"amount"`
	Resource     string         `json:"resource"`
	Status       PaymentStatus  `json:"status"`
	ZcashAddress string         `json:"zcashAddress"`
	ExpiresAt    time.Time      `json:"expiresAt"`
	Metadata     map[string]any `json:"metadata,omitempty"`
	CreatedAt    time.Time      `json:"createdAt"`
	UpdatedAt    time.Time      `json:"updatedAt"`
}

// CreatePaymentIntentParams are the parameters for creating a payment
// intent. ExpiresIn defaults to one hour when zero.
type CreatePaymentIntentParams struct {
	Amount    string         `json:"amount"`
	Resource  string         `json:"resource"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	ExpiresIn int            `json:"expiresIn,omitempty"`
}

// PaymentParams are the parameters for submitting a payment.
type PaymentParams struct {
	FromAddress string `json:"fromAddress"`
	TxID        string `json:"txId"`
}

// TransactionStatus is the settlement state of a transaction.
type TransactionStatus string

const (
	TransactionStatusPending  TransactionStatus = "pending"
	TransactionStatusSettled  TransactionStatus = "settled"
	TransactionStatusFailed   TransactionStatus = "failed"
	TransactionStatusRefunded TransactionStatus = "refunded"
)

// Transaction is a settled or in-flight payment record.
type Transaction struct {
	ID              string            `json:"id"`
	MerchantID      string            `json:"merchantId"`
	Amount          string            `json:"amount"`
	Currency        string            `json:"currency"`
	Status          TransactionStatus `json:"status"`
	PaymentIntentID string            `json:"paymentIntentId"`
	ResourceURL     string            `json:"resourceUrl"`
	FromAddress     string            `json:"fromAddress,omitempty"`
	ToAddress       string            `json:"toAddress"`
	TxID            string            `json:"txId,omitempty"`
	Confirmations   int               `json:"confirmations"`
	Metadata        map[string]any    `json:"metadata,omitempty"`
	FailureReason   string            `json:"failureReason,omitempty"`
	RefundedAt      *time.Time        `json:"refundedAt,omitempty"`
	SettledAt       *time.Time        `json:"settledAt,omitempty"`
	CreatedAt       time.Time         `json:"createdAt"`
	UpdatedAt       time.Time         `json:"updatedAt"`
}

// ListTransactionsParams filter a transaction listing. Zero values are
// omitted from the query.
type ListTransactionsParams struct {
	Limit    int
	Offset   int
	Status   TransactionStatus
	DateFrom string
	DateTo   string
	Resource string
}

// Values encodes the parameters as URL query values, omitting absent ones.
func (p ListTransactionsParams) Values() url.Values {
	q := url.Values{}
	if p.Limit > 0 {
		q.Set("limit", strconv.Itoa(p.Limit))
	}
	if p.Offset > 0 {
		q.Set("offset", strconv.Itoa(p.Offset))
	}
	if p.Status != "" {
		q.Set("status", string(p.Status))
	}
	if p.DateFrom != "" {
		q.Set("dateFrom", p.DateFrom)
	}
	if p.DateTo != "" {
		q.Set("dateTo", p.DateTo)
	}
	if p.Resource != "" {
		q.Set("resource", p.Resource)
	}
	return q
}

// ListTransactionsResponse is a page of transactions.
type ListTransactionsResponse struct {
	Transactions []Transaction `json:"transactions"`
	Total        int           `json:"total"`
	HasMore      bool          `json:"hasMore"`
}

// RefundParams are the parameters for refunding a transaction.
type RefundParams struct {
	Reason   string         `json:"reason,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// WebhookConfig is the merchant's callback endpoint configuration.
type WebhookConfig struct {
	URL     string   `json:"url"`
	Secret  string   `json:"secret"`
	Events  []string `json:"events"`
	Enabled bool     `json:"enabled"`
}

// UpdateWebhookParams are the parameters for updating the webhook
// configuration.
type UpdateWebhookParams struct {
	WebhookURL string   `json:"webhookUrl"`
	Events     []string `json:"events,omitempty"`
}
