package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const defaultWebhookTimeout = 10 * time.Second

// WebhookNotifier posts messages as {"text": "..."} to a Slack-compatible
// webhook URL.
type WebhookNotifier struct {
	url    string
	client *http.Client
	logger *zap.Logger
}

// NewWebhookNotifier creates a notifier posting to the given URL.
func NewWebhookNotifier(url string, logger *zap.Logger) (*WebhookNotifier, error) {
	if url == "" {
		return nil, fmt.Errorf("webhook url is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WebhookNotifier{
		url:    url,
		client: &http.Client{Timeout: defaultWebhookTimeout},
		logger: logger,
	}, nil
}

// Notify posts the message. Failures are logged here; the caller does not
// retry, so a dropped notification is lost by design of the sink contract.
func (n *WebhookNotifier) Notify(ctx context.Context, text string) error {
	payload, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return fmt.Errorf("marshal webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		n.logger.Warn("Webhook delivery failed", zap.Error(err))
		return fmt.Errorf("post webhook: %w", err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			n.logger.Warn("Failed to close webhook response body", zap.Error(cerr))
		}
	}()

	if resp.StatusCode != http.StatusOK {
		n.logger.Warn("Webhook returned non-OK status", zap.Int("status", resp.StatusCode))
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}

	n.logger.Debug("Webhook message delivered")
	return nil
}
