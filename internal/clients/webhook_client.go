// Package clients provides HTTP clients for communicating with external services.
package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/illmade-knight/markermap/pkg/markers"
	"github.com/rs/zerolog"
)

// WebhookClient posts marker events as JSON to a configured endpoint.
type WebhookClient struct {
	url        string
	httpClient *http.Client
	logger     zerolog.Logger
}

// NewWebhookClient creates a new client for the event webhook.
func NewWebhookClient(url string, logger zerolog.Logger) *WebhookClient {
	return &WebhookClient{
		url: url,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		logger: logger.With().Str("client", "event-webhook").Logger(),
	}
}

// Publish delivers one marker event. Any 2xx response counts as delivered.
func (c *WebhookClient) Publish(ctx context.Context, ev markers.Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal marker event: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create event request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute event request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("event webhook returned unexpected status code: %d", resp.StatusCode)
	}

	c.logger.Debug().Str("event", string(ev.Type)).Str("marker_id", ev.Marker.ID).Msg("Delivered marker event")
	return nil
}
