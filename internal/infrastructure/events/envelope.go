package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/narwhalmedia/moviecatalog/internal/domain/catalog"
)

// Envelope wraps an event with metadata for transport
type Envelope struct {
	ID         string          `json:"id"`
	Type       string          `json:"type"`
	Source     string          `json:"source"`
	OccurredAt time.Time       `json:"occurred_at"`
	Data       json.RawMessage `json:"data"`
}

// NewEnvelope marshals event into an envelope stamped with source
func NewEnvelope(event catalog.Event, source string) (*Envelope, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("marshal event: %w", err)
	}
	return &Envelope{
		ID:         event.EventID().String(),
		Type:       event.EventType(),
		Source:     source,
		OccurredAt: event.OccurredAt(),
		Data:       data,
	}, nil
}

// Encode returns the JSON wire form of event
func Encode(event catalog.Event, source string) ([]byte, error) {
	env, err := NewEnvelope(event, source)
	if err != nil {
		return nil, err
	}
	payload, err := json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("marshal envelope: %w", err)
	}
	return payload, nil
}

// NoopPublisher drops events. Used when no broker is configured.
type NoopPublisher struct {
	logger *zap.Logger
}

// NewNoopPublisher creates a publisher that only logs at debug level
func NewNoopPublisher(logger *zap.Logger) *NoopPublisher {
	return &NoopPublisher{logger: logger.Named("events")}
}

func (p *NoopPublisher) Publish(ctx context.Context, event catalog.Event) error {
	p.logger.Debug("event dropped, no broker configured",
		zap.String("event_id", event.EventID().String()),
		zap.String("event_type", event.EventType()),
	)
	return nil
}
