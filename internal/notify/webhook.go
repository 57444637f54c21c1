package notify

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// WebhookDeliverer POSTs alerts as JSON to a configured endpoint, the shape
// expected by chat-bot webhook receivers.
type WebhookDeliverer struct {
	url    string
	client *http.Client
}

// NewWebhookDeliverer builds the webhook channel.
func NewWebhookDeliverer(url string, timeout time.Duration) *WebhookDeliverer {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &WebhookDeliverer{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

// Name identifies the channel in logs.
func (d *WebhookDeliverer) Name() string { return "webhook" }

// Deliver posts the payload.
func (d *WebhookDeliverer) Deliver(title, message string) error {
	payload, err := json.Marshal(map[string]string{
		"title":   title,
		"message": message,
	})
	if err != nil {
		return fmt.Errorf("marshal webhook payload: %w", err)
	}

	resp, err := d.client.Post(d.url, "application/json", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("post webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}
