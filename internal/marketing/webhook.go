package marketing

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/zonicbr/onboarding-platform/pkg/logging"
)

// WebhookObserver counts delivery outcomes.
type WebhookObserver interface {
	ObserveWebhook(status string)
}

// LeadEvent is the payload delivered to the marketing automation webhook
// after a lead lands with a phone number.
type LeadEvent struct {
	LeadsMkt LeadRef `json:"leads_mkt"`
	Name     string  `json:"name,omitempty"`
	Phone    string  `json:"phone,omitempty"`
	Email    string  `json:"email,omitempty"`
}

type LeadRef struct {
	ID int64 `json:"id"`
}

// Dispatcher posts lead events to an external webhook. Delivery is best
// effort: failures are logged and counted, never returned to the caller.
type Dispatcher struct {
	url     string
	client  *http.Client
	logger  *logging.Logger
	metrics WebhookObserver
	timeout time.Duration
}

// NewDispatcher creates a dispatcher. An empty url disables delivery.
func NewDispatcher(url string, client *http.Client, logger *logging.Logger, metrics WebhookObserver) *Dispatcher {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Dispatcher{
		url:     url,
		client:  client,
		logger:  logger,
		metrics: metrics,
		timeout: 10 * time.Second,
	}
}

// DispatchAsync fires the webhook on a background goroutine and returns
// immediately. The request carries its own timeout so an abandoned HTTP
// request from the caller cannot cancel it.
func (d *Dispatcher) DispatchAsync(event LeadEvent) {
	if d == nil || d.url == "" {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()
		if err := d.deliver(ctx, event); err != nil {
			d.logger.Error("marketing webhook delivery failed", "error", err, "lead_id", event.LeadsMkt.ID)
			d.observe("error")
			return
		}
		d.logger.Info("marketing webhook delivered", "lead_id", event.LeadsMkt.ID)
		d.observe("ok")
	}()
}

func (d *Dispatcher) deliver(ctx context.Context, event LeadEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marketing: marshal event: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("marketing: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("marketing: post webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("marketing: webhook returned %d: %s", resp.StatusCode, snippet)
	}
	return nil
}

func (d *Dispatcher) observe(status string) {
	if d.metrics != nil {
		d.metrics.ObserveWebhook(status)
	}
}
