package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/beaconlabs/beacon/internal/model"
)

// Deliverer pushes an alert to an outbound notification channel. Errors are
// non-fatal per alert; the dispatcher counts them and moves on.
type Deliverer interface {
	Deliver(ctx context.Context, alert *model.Alert) error
}

// LogDeliverer writes alerts to the structured log. Default transport for
// development and for deployments that tail logs into their own channel.
type LogDeliverer struct{}

// Deliver implements Deliverer
func (LogDeliverer) Deliver(_ context.Context, alert *model.Alert) error {
	slog.Info("alert delivered",
		slog.String("alert_id", alert.ID),
		slog.String("campaign_id", alert.CampaignID),
		slog.String("engagement_id", alert.EngagementID),
		slog.Float64("importance_score", alert.ImportanceScore),
	)
	return nil
}

// WebhookDeliverer POSTs alerts as JSON to a configured endpoint
type WebhookDeliverer struct {
	url    string
	client *http.Client
}

// NewWebhookDeliverer creates a webhook transport with the given endpoint
func NewWebhookDeliverer(url string, timeout time.Duration) *WebhookDeliverer {
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &WebhookDeliverer{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

// webhookPayload is the wire shape posted to the webhook endpoint
type webhookPayload struct {
	DeliveryID      string   `json:"delivery_id"`
	AlertID         string   `json:"alert_id"`
	CampaignID      string   `json:"campaign_id"`
	EngagementID    string   `json:"engagement_id"`
	ImportanceScore float64  `json:"importance_score"`
	Copy            *string  `json:"copy,omitempty"`
}

// Deliver implements Deliverer
func (d *WebhookDeliverer) Deliver(ctx context.Context, alert *model.Alert) error {
	payload := webhookPayload{
		DeliveryID:      uuid.New().String(),
		AlertID:         alert.ID,
		CampaignID:      alert.CampaignID,
		EngagementID:    alert.EngagementID,
		ImportanceScore: alert.ImportanceScore,
		Copy:            alert.Copy,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal alert payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("post webhook: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}
