package notifications

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/vigil-dev/vigil/internal/models"
	"github.com/vigil-dev/vigil/internal/types"
)

const defaultWebhookTimeout = 10 * time.Second

// WebhookPayload is the JSON envelope posted to webhook recipients.
type WebhookPayload struct {
	Alert struct {
		ID        uint                `json:"id"`
		Severity  types.AlertSeverity `json:"severity"`
		Message   string              `json:"message"`
		Details   json.RawMessage     `json:"details"`
		Timestamp time.Time           `json:"timestamp"`
	} `json:"alert"`
	Config struct {
		ID       uint                 `json:"id"`
		Name     string               `json:"name"`
		Type     types.MonitoringType `json:"type"`
		Resource string               `json:"resource"`
	} `json:"config"`
}

func newWebhookPayload(alert *models.Alert, config *models.MonitoringConfig) WebhookPayload {
	var payload WebhookPayload
	payload.Alert.ID = alert.ID
	payload.Alert.Severity = alert.Severity
	payload.Alert.Message = alert.Message
	payload.Alert.Details = json.RawMessage(alert.Details)
	payload.Alert.Timestamp = alert.Timestamp
	payload.Config.ID = config.ID
	payload.Config.Name = config.Name
	payload.Config.Type = config.MonitoringType
	payload.Config.Resource = config.TargetResource
	return payload
}

// HTTPWebhookSender posts alert envelopes with a bounded timeout.
type HTTPWebhookSender struct {
	client *http.Client
}

func NewHTTPWebhookSender(timeout time.Duration) *HTTPWebhookSender {
	if timeout <= 0 {
		timeout = defaultWebhookTimeout
	}
	return &HTTPWebhookSender{client: &http.Client{Timeout: timeout}}
}

func (s *HTTPWebhookSender) Send(ctx context.Context, url string, payload WebhookPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("failed to build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}

	return nil
}
