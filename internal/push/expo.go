// Package push delivers notifications through the Expo push API.
// Delivery is fire and forget: errors are logged and never surfaced to
// the operation that triggered the notification.
package push

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

type Sender interface {
	Send(ctx context.Context, token, title, body string, data map[string]string)
}

type ExpoClient struct {
	httpClient *http.Client
	url        string
}

func NewExpoClient(url string, timeout time.Duration) *ExpoClient {
	return &ExpoClient{
		httpClient: &http.Client{Timeout: timeout},
		url:        url,
	}
}

type expoMessage struct {
	To    string            `json:"to"`
	Title string            `json:"title"`
	Body  string            `json:"body"`
	Data  map[string]string `json:"data,omitempty"`
	Sound string            `json:"sound"`
}

func (c *ExpoClient) Send(ctx context.Context, token, title, body string, data map[string]string) {
	payload, err := json.Marshal(expoMessage{
		To:    token,
		Title: title,
		Body:  body,
		Data:  data,
		Sound: "default",
	})
	if err != nil {
		slog.Error("push payload marshal failed", "error", err)
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		slog.Error("push request build failed", "error", err)
		return
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		slog.Warn("push delivery failed", "error", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		slog.Warn("push delivery rejected", "status", fmt.Sprint(resp.StatusCode))
	}
}
