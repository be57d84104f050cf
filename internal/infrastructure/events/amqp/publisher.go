package amqp

import (
	"context"
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/narwhalmedia/moviecatalog/internal/config"
	"github.com/narwhalmedia/moviecatalog/internal/domain/catalog"
	"github.com/narwhalmedia/moviecatalog/internal/infrastructure/events"
)

// channel is the part of *amqp.Channel used for publishing
type channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// Publisher implements catalog.EventPublisher over a durable RabbitMQ queue
type Publisher struct {
	mu     sync.Mutex
	conn   *amqp.Connection
	ch     channel
	queue  string
	source string
	logger *zap.Logger
}

// NewPublisher dials the broker and declares the queue
func NewPublisher(cfg config.AMQPConfig, source string, logger *zap.Logger) (*Publisher, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("rabbitmq dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("rabbitmq channel: %w", err)
	}
	if _, err := ch.QueueDeclare(cfg.Queue, true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("rabbitmq queue declare: %w", err)
	}

	p := newPublisher(ch, cfg.Queue, source, logger)
	p.conn = conn
	return p, nil
}

func newPublisher(ch channel, queue, source string, logger *zap.Logger) *Publisher {
	return &Publisher{ch: ch, queue: queue, source: source, logger: logger.Named("amqp")}
}

// Publish sends a persistent JSON delivery to the queue via the default exchange
func (p *Publisher) Publish(ctx context.Context, event catalog.Event) error {
	payload, err := events.Encode(event, p.source)
	if err != nil {
		return err
	}

	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    event.EventID().String(),
		Type:         event.EventType(),
		Timestamp:    event.OccurredAt(),
		Body:         payload,
	}

	// amqp channels are not safe for concurrent publishing
	p.mu.Lock()
	err = p.ch.PublishWithContext(ctx, "", p.queue, false, false, msg)
	p.mu.Unlock()
	if err != nil {
		return fmt.Errorf("rabbitmq publish: %w", err)
	}

	p.logger.Info("event published",
		zap.String("event_id", event.EventID().String()),
		zap.String("queue", p.queue),
	)
	return nil
}

// Close closes the channel and connection
func (p *Publisher) Close() error {
	err := p.ch.Close()
	if p.conn != nil {
		if cerr := p.conn.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}
