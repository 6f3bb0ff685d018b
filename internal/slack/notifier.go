// Package slack posts generated answer drafts to a tenant's Slack incoming
// webhook as a Block Kit message.
package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

type Notifier struct {
	httpClient *http.Client
}

func NewNotifier() *Notifier {
	return &Notifier{
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// Send posts the notification to webhookURL. A non-2xx response is an error;
// the caller decides whether that fails the surrounding pipeline.
func (s *Notifier) Send(ctx context.Context, webhookURL string, n Notification) error {
	payload, err := json.Marshal(BuildMessage(n))
	if err != nil {
		return fmt.Errorf("marshal slack message failed: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, webhookURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build slack request failed: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("slack request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("slack webhook status %d: %s", resp.StatusCode, string(raw))
	}
	return nil
}
