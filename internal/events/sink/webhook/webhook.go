// Package webhook delivers events to listener endpoints over HTTP POST.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"tokenhost/internal/events"
)

// Deliverer POSTs the event JSON to the listener endpoint with a bounded
// per-delivery timeout.
type Deliverer struct {
	client  *http.Client
	timeout time.Duration
}

// New builds a Deliverer. A zero timeout falls back to five seconds.
func New(timeout time.Duration) *Deliverer {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Deliverer{
		client:  &http.Client{Timeout: timeout},
		timeout: timeout,
	}
}

func (d *Deliverer) Deliver(ctx context.Context, endpoint string, event events.Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build delivery request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Event-Kind", string(event.Kind))

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("deliver event: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("listener responded %d", resp.StatusCode)
	}
	return nil
}
