package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/kanbanflow/workflow-engine/internal/models"
)

type WebhookClient struct {
	url        string
	token      string
	httpClient *http.Client
}

func NewWebhookClient(url, token string) *WebhookClient {
	return &WebhookClient{
		url:        url,
		token:      token,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

type transitionPayload struct {
	Type  string                 `json:"type"`
	Event models.TransitionEvent `json:"event"`
}

type webhookError struct {
	Err string `json:"error"`
}

func (c *WebhookClient) Notify(ctx context.Context, event models.TransitionEvent) error {
	payload, err := json.Marshal(transitionPayload{Type: "task.transitioned", Event: event})
	if err != nil {
		return fmt.Errorf("marshal webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("post webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		errorBody, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("Error trying to read the body: %w", err)
		}

		var whErr webhookError
		if err := json.Unmarshal(errorBody, &whErr); err == nil && whErr.Err != "" {
			return fmt.Errorf("webhook error: %s", whErr.Err)
		}
		return fmt.Errorf("webhook error status %d", resp.StatusCode)
	}

	return nil
}
