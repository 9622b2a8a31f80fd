// Author: Kaviru Hapuarachchi
// GitHub: https://github.com/Kavirubc
// Created: 2026-10-18
// Last Modified: 2026-10-18

// Package webhook delivers operator alerts to a chat webhook.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/similigh/mirror-bot/internal/log"
)

// DefaultTimeout bounds a single delivery.
const DefaultTimeout = 10 * time.Second

// Notifier sends one-way free-text alerts. Delivery failures are logged, never returned.
type Notifier interface {
	Notify(ctx context.Context, message string)
}

// payload is the Discord-compatible webhook body.
type payload struct {
	Content string `json:"content"`
}

// Client posts messages to a webhook URL.
type Client struct {
	url        string
	mention    string
	httpClient *http.Client
}

// New creates a webhook Client. mention, when set, is placed on its own line
// before every message.
func New(url, mention string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		url:        url,
		mention:    mention,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Notify posts message to the webhook.
func (c *Client) Notify(ctx context.Context, message string) {
	if err := c.send(ctx, c.format(message)); err != nil {
		log.Error("Failed to deliver notification", "component", "notify", "error", err)
	}
}

func (c *Client) format(message string) string {
	if c.mention == "" {
		return message
	}
	return c.mention + "\n" + message
}

func (c *Client) send(ctx context.Context, content string) error {
	body, err := json.Marshal(payload{Content: content})
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to post notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("webhook error: %d - %s", resp.StatusCode, string(respBody))
	}
	return nil
}

// LogNotifier writes alerts to the log only. It is used when no webhook is configured.
type LogNotifier struct{}

// Notify logs message at warn level.
func (LogNotifier) Notify(ctx context.Context, message string) {
	log.Warn("Notification", "component", "notify", "message", message)
}

// Recorder keeps every message in memory.
type Recorder struct {
	mu       sync.Mutex
	messages []string
}

// Notify records message.
func (r *Recorder) Notify(ctx context.Context, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, message)
}

// Messages returns the recorded messages in order.
func (r *Recorder) Messages() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.messages...)
}

// FromConfig returns a webhook Client when url is set, otherwise a LogNotifier.
func FromConfig(url, mention string, timeout time.Duration) Notifier {
	if url == "" {
		return LogNotifier{}
	}
	return New(url, mention, timeout)
}
