// Package events publishes marker lifecycle events to Google Cloud Pub/Sub.
package events

import (
	"context"
	"encoding/json"
	"fmt"

	"cloud.google.com/go/pubsub/v2"
	"github.com/illmade-knight/markermap/pkg/markers"
	"github.com/rs/zerolog"
)

// PubsubPublisher is a markers.EventPublisher that writes one message per event.
type PubsubPublisher struct {
	publisher *pubsub.Publisher
	logger    zerolog.Logger
}

// NewPubsubPublisher publishes to topicID through client.
func NewPubsubPublisher(client *pubsub.Client, topicID string, logger zerolog.Logger) *PubsubPublisher {
	return &PubsubPublisher{
		publisher: client.Publisher(topicID),
		logger:    logger.With().Str("component", "pubsub-publisher").Str("topic", topicID).Logger(),
	}
}

// Publish sends the event and waits for the server to acknowledge it.
func (p *PubsubPublisher) Publish(ctx context.Context, ev markers.Event) error {
	msg, err := encodeEvent(ev)
	if err != nil {
		return err
	}
	id, err := p.publisher.Publish(ctx, msg).Get(ctx)
	if err != nil {
		return fmt.Errorf("failed to publish %s event: %w", ev.Type, err)
	}
	p.logger.Debug().Str("message_id", id).Str("event", string(ev.Type)).Str("marker_id", ev.Marker.ID).Msg("Published marker event")
	return nil
}

// Stop flushes pending messages.
func (p *PubsubPublisher) Stop() {
	p.publisher.Stop()
}

func encodeEvent(ev markers.Event) (*pubsub.Message, error) {
	data, err := json.Marshal(ev)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal marker event: %w", err)
	}
	return &pubsub.Message{
		Data: data,
		Attributes: map[string]string{
			"type":     string(ev.Type),
			"markerId": ev.Marker.ID,
		},
	}, nil
}
