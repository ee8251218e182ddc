package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"
)

// Message is a run-outcome notification delivered to every enabled channel.
type Message struct {
	UserID           string    `json:"user_id"`
	Subject          string    `json:"subject"`
	Body             string    `json:"body"`
	ScheduledCount   int       `json:"scheduled_count"`
	UnscheduledCount int       `json:"unscheduled_count"`
	Overloaded       bool      `json:"overloaded"`
	Timestamp        time.Time `json:"timestamp"`
}

// Notifier delivers messages to one channel (log line, webhook, ...).
type Notifier interface {
	Name() string
	Send(ctx context.Context, msg Message) error
}

// LogNotifier writes notifications to the process log.
type LogNotifier struct {
	name string
}

// NewLogNotifier creates a log-backed notifier.
func NewLogNotifier(name string) *LogNotifier {
	return &LogNotifier{name: name}
}

func (n *LogNotifier) Name() string { return n.name }

func (n *LogNotifier) Send(_ context.Context, msg Message) error {
	log.Printf("[notify:%s] %s: %s (scheduled=%d unscheduled=%d overloaded=%v)",
		n.name, msg.Subject, msg.Body, msg.ScheduledCount, msg.UnscheduledCount, msg.Overloaded)
	return nil
}

// WebhookNotifier POSTs notifications as JSON to a fixed endpoint.
type WebhookNotifier struct {
	name     string
	endpoint string
	client   *http.Client
}

// NewWebhookNotifier creates a webhook notifier for the given endpoint.
func NewWebhookNotifier(name, endpoint string) *WebhookNotifier {
	return &WebhookNotifier{
		name:     name,
		endpoint: endpoint,
		client:   &http.Client{Timeout: 10 * time.Second},
	}
}

func (n *WebhookNotifier) Name() string { return n.name }

func (n *WebhookNotifier) Send(ctx context.Context, msg Message) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshaling notification: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("building webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("posting to %s: %w", n.endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("webhook %s returned status %d", n.endpoint, resp.StatusCode)
	}
	return nil
}
