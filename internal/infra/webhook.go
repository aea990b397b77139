package infra

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
)

// AlertPayload is delivered to the store's notification endpoint for events
// that need operator attention: refund partial failures, register closings.
type AlertPayload struct {
	Kind      string `json:"kind"` // refund_failed | register_closed
	StoreID   string `json:"store_id"`
	OrderID   string `json:"order_id,omitempty"`
	SessionID string `json:"session_id,omitempty"`
	Message   string `json:"message"`
	At        string `json:"at"` // ISO 8601
}

// WebhookNotifier posts operator alerts to an external notification endpoint.
// Delivery (WhatsApp, push, e-mail) is the endpoint's problem; this client
// only hands the alert over the boundary. An empty URL disables delivery and
// alerts are logged instead.
type WebhookNotifier struct {
	url        string
	httpClient *http.Client
}

func NewWebhookNotifier(url string) *WebhookNotifier {
	return &WebhookNotifier{
		url:        url,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// Enabled reports whether a webhook URL is configured.
func (n *WebhookNotifier) Enabled() bool { return n.url != "" }

// Notify sends a POST with the alert payload.
func (n *WebhookNotifier) Notify(ctx context.Context, payload AlertPayload) error {
	if !n.Enabled() {
		log.Info().Str("kind", payload.Kind).Str("message", payload.Message).
			Msg("alert webhook not configured, logging only")
		return nil
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("webhook: marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("webhook: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("webhook: endpoint unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("webhook: endpoint returned %d", resp.StatusCode)
	}
	return nil
}
