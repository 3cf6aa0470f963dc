package z402

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/Blessedbiello/Z402/pkg/transport"
)

// PaymentsService manages payment intents.
type PaymentsService struct {
	transport *transport.Client
}

// Create creates a payment intent.
func (s *PaymentsService) Create(ctx context.Context, params CreatePaymentIntentParams) (*PaymentIntent, error) {
	if params.ExpiresIn == 0 {
		params.ExpiresIn = 3600
	}
	raw, err := s.transport.Post(ctx, "/payment-intents", params)
	if err != nil {
		return nil, err
	}
	return decode[PaymentIntent](raw)
}

// Get fetches a payment intent by ID.
func (s *PaymentsService) Get(ctx context.Context, paymentID string) (*PaymentIntent, error) {
	raw, err := s.transport.Get(ctx, "/payment-intents/"+url.PathEscape(paymentID), nil)
	if err != nil {
		return nil, err
	}
	return decode[PaymentIntent](raw)
}

// Pay submits payment for a payment intent.
func (s *PaymentsService) Pay(ctx context.Context, paymentID string, params PaymentParams) (*PaymentIntent, error) {
	raw, err := s.transport.Post(ctx, "/payment-intents/"+url.PathEscape(paymentID)+"/pay", params)
	if err != nil {
		return nil, err
	}
	return decode[PaymentIntent](raw)
}

// Verify checks a payment's settlement status.
func (s *PaymentsService) Verify(ctx context.Context, paymentID string) (*PaymentIntent, error) {
	raw, err := s.transport.Get(ctx, "/payment-intents/"+url.PathEscape(paymentID)+"/verify", nil)
	if err != nil {
		return nil, err
	}
	return decode[PaymentIntent](raw)
}

// Cancel cancels a payment intent.
func (s *PaymentsService) Cancel(ctx context.Context, paymentID string) (*PaymentIntent, error) {
	raw, err := s.transport.Post(ctx, "/payment-intents/"+url.PathEscape(paymentID)+"/cancel", nil)
	if err != nil {
		return nil, err
	}
	return decode[PaymentIntent](raw)
}

// decode unmarshals a success payload into the target model.
func decode[T any](raw json.RawMessage) (*T, error) {
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &v, nil
}
