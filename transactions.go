package z402

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/Blessedbiello/Z402/pkg/transport"
)

// TransactionsService lists, fetches, refunds, and exports transactions.
type TransactionsService struct {
	transport *transport.Client
}

// List returns a page of transactions matching the filters.
func (s *TransactionsService) List(ctx context.Context, params ListTransactionsParams) (*ListTransactionsResponse, error) {
	raw, err := s.transport.Get(ctx, "/transactions", params.Values())
	if err != nil {
		return nil, err
	}
	return decode[ListTransactionsResponse](raw)
}

// Get fetches a transaction by ID.
func (s *TransactionsService) Get(ctx context.Context, transactionID string) (*Transaction, error) {
	raw, err := s.transport.Get(ctx, "/transactions/"+url.PathEscape(transactionID), nil)
	if err != nil {
		return nil, err
	}
	return decode[Transaction](raw)
}

// Refund issues a refund for a transaction.
func (s *TransactionsService) Refund(ctx context.Context, transactionID string, params RefundParams) (*Transaction, error) {
	raw, err := s.transport.Post(ctx, "/transactions/"+url.PathEscape(transactionID)+"/refund", params)
	if err != nil {
		return nil, err
	}
	return decode[Transaction](raw)
}

// ExportCSV exports transactions matching the filters as CSV text.
func (s *TransactionsService) ExportCSV(ctx context.Context, params ListTransactionsParams) (string, error) {
	raw, err := s.transport.Get(ctx, "/transactions/export/csv", params.Values())
	if err != nil {
		return "", err
	}
	var out struct {
		CSV string `json:"csv"`
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	return out.CSV, nil
}

// ExportJSON exports transactions matching the filters.
func (s *TransactionsService) ExportJSON(ctx context.Context, params ListTransactionsParams) ([]Transaction, error) {
	raw, err := s.transport.Get(ctx, "/transactions/export/json", params.Values())
	if err != nil {
		return nil, err
	}
	var out struct {
		Transactions []Transaction `json:"transactions"`
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return out.Transactions, nil
}
