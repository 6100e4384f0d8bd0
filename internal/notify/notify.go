// Package notify delivers fleet alerts to a human channel.
//
// The transport behind the channel (Telegram, Slack, pager) is not owned
// here; the engine only needs a notify(message, priority) capability, so the
// default implementation posts to a configured webhook.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/dixzzzzz/axelinkapps-sub000/pkg/types"
)

// Notifier delivers an alert message. scanID identifies the fleet scan that
// produced the alert.
type Notifier interface {
	Notify(ctx context.Context, scanID, message string, priority types.Priority) error
}

// WebhookConfig configures the webhook notifier.
type WebhookConfig struct {
	URL     string
	Token   string        // Bearer token, optional
	Timeout time.Duration // default: 10s
}

// Webhook posts alerts as JSON to a configured endpoint.
type Webhook struct {
	url        string
	token      string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewWebhook creates a webhook notifier.
func NewWebhook(cfg WebhookConfig, logger *slog.Logger) *Webhook {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &Webhook{
		url:        cfg.URL,
		token:      cfg.Token,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger.With("component", "notifier"),
	}
}

type webhookPayload struct {
	ScanID   string         `json:"scan_id,omitempty"`
	Message  string         `json:"message"`
	Priority types.Priority `json:"priority"`
	SentAt   time.Time      `json:"sent_at"`
}

// Notify posts the alert. Non-2xx responses are errors.
func (w *Webhook) Notify(ctx context.Context, scanID, message string, priority types.Priority) error {
	payload, err := json.Marshal(webhookPayload{
		ScanID:   scanID,
		Message:  message,
		Priority: priority,
		SentAt:   time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if w.token != "" {
		req.Header.Set("Authorization", "Bearer "+w.token)
	}

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("post notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("notification rejected with status %d: %s", resp.StatusCode, string(body))
	}

	w.logger.Debug("notification delivered", "scan_id", scanID, "priority", priority, "bytes", len(payload))
	return nil
}

// LogOnly writes alerts to the process log. Used when no webhook is
// configured so monitoring still surfaces somewhere.
type LogOnly struct {
	logger *slog.Logger
}

// NewLogOnly creates a log-only notifier.
func NewLogOnly(logger *slog.Logger) *LogOnly {
	return &LogOnly{logger: logger.With("component", "notifier")}
}

// Notify logs the alert and always succeeds.
func (l *LogOnly) Notify(_ context.Context, scanID, message string, priority types.Priority) error {
	l.logger.Warn("fleet alert", "scan_id", scanID, "priority", priority, "message", message)
	return nil
}
