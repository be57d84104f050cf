package nats

import (
	"context"
	"fmt"
	"time"

	"github.com/nats-io/nats.go/jetstream"
	"go.uber.org/zap"

	"github.com/narwhalmedia/moviecatalog/internal/domain/catalog"
	"github.com/narwhalmedia/moviecatalog/internal/infrastructure/events"
)

const publishTimeout = 5 * time.Second

// streamPublisher is the part of jetstream.JetStream used for publishing
type streamPublisher interface {
	Publish(ctx context.Context, subject string, payload []byte, opts ...jetstream.PublishOpt) (*jetstream.PubAck, error)
}

// Publisher implements catalog.EventPublisher using NATS JetStream
type Publisher struct {
	js     streamPublisher
	source string
	logger *zap.Logger
}

// NewPublisher creates a new NATS event publisher
func NewPublisher(client *Client, source string, logger *zap.Logger) *Publisher {
	return newPublisher(client.JetStream(), source, logger)
}

func newPublisher(js streamPublisher, source string, logger *zap.Logger) *Publisher {
	return &Publisher{js: js, source: source, logger: logger.Named("publisher")}
}

// Publish sends event on a subject equal to its type. The event id is the
// JetStream message id so redelivered publishes are de-duplicated.
func (p *Publisher) Publish(ctx context.Context, event catalog.Event) error {
	payload, err := events.Encode(event, p.source)
	if err != nil {
		return err
	}

	pubCtx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	subject := event.EventType()
	ack, err := p.js.Publish(pubCtx, subject, payload, jetstream.WithMsgID(event.EventID().String()))
	if err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	p.logger.Info("event published",
		zap.String("event_id", event.EventID().String()),
		zap.String("subject", subject),
		zap.String("stream", ack.Stream),
		zap.Uint64("sequence", ack.Sequence),
		zap.Bool("duplicate", ack.Duplicate),
	)
	return nil
}
