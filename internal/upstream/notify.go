package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// NotifyClient calls the transactional-email service.
type NotifyClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewNotifyClient(baseURL string, timeout time.Duration) *NotifyClient {
	return &NotifyClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *NotifyClient) SendEmail(ctx context.Context, to, subject, message string) error {
	payload, err := json.Marshal(map[string]string{
		"to":      to,
		"subject": subject,
		"message": message,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/notify/email", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("notify service returned %d: %s", resp.StatusCode, body)
	}

	return nil
}
