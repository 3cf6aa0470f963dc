package z402

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Blessedbiello/Z402/pkg/transport"
)

// WebhooksService manages the merchant's webhook configuration.
type WebhooksService struct {
	transport *transport.Client
}

// Get returns the current webhook configuration.
func (s *WebhooksService) Get(ctx context.Context) (*WebhookConfig, error) {
	raw, err := s.transport.Get(ctx, "/webhook-management", nil)
	if err != nil {
		return nil, err
	}
	return decode[WebhookConfig](raw)
}

// Update replaces the webhook configuration.
func (s *WebhooksService) Update(ctx context.Context, params UpdateWebhookParams) (*WebhookConfig, error) {
	raw, err := s.transport.Put(ctx, "/webhook-management", params)
	if err != nil {
		return nil, err
	}
	return decode[WebhookConfig](raw)
}

// Delete removes the webhook configuration.
func (s *WebhooksService) Delete(ctx context.Context) error {
	_, err := s.transport.Delete(ctx, "/webhook-management")
	return err
}

// Test asks the facilitator to send a test event to the configured
// endpoint and returns the raw result.
func (s *WebhooksService) Test(ctx context.Context) (map[string]any, error) {
	raw, err := s.transport.Post(ctx, "/webhook-management/test", nil)
	if err != nil {
		return nil, err
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return out, nil
}
