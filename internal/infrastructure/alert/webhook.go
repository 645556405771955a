package alert

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"marketplace-backend/pkg/logger"
)

// Notifier is the outbound alerting collaborator the batch layer reports
// failures to.
type Notifier interface {
	NotifyBatchFailure(ctx context.Context, batchName string, cause error)
}

// BatchFailurePayload is the wire shape posted to the chat-ops webhook.
type BatchFailurePayload struct {
	BatchName  string    `json:"batchName"`
	ErrorType  string    `json:"errorType"`
	Message    string    `json:"message"`
	OccurredAt time.Time `json:"occurredAt"`
}

// WebhookNotifier posts batch failure alerts to a chat-ops webhook.
// Delivery failures are logged and swallowed, never escalated.
type WebhookNotifier struct {
	url    string
	client *http.Client
}

func NewWebhookNotifier(url string, timeout time.Duration) *WebhookNotifier {
	return &WebhookNotifier{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

func (n *WebhookNotifier) NotifyBatchFailure(ctx context.Context, batchName string, cause error) {
	if n.url == "" {
		logger.Warn("alert webhook not configured, dropping batch failure alert", map[string]interface{}{
			"batch": batchName,
		})
		return
	}

	payload := BatchFailurePayload{
		BatchName:  batchName,
		ErrorType:  fmt.Sprintf("%T", cause),
		Message:    cause.Error(),
		OccurredAt: time.Now().UTC(),
	}

	body, err := json.Marshal(payload)
	if err != nil {
		logger.Error("failed to marshal batch failure alert", err)
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		logger.Error("failed to build batch failure alert request", err)
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		logger.Error("failed to deliver batch failure alert", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		logger.Warn("batch failure alert rejected by webhook", map[string]interface{}{
			"batch":  batchName,
			"status": resp.StatusCode,
		})
	}
}
