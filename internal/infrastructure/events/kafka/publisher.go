package kafka

import (
	"context"
	"fmt"

	"github.com/IBM/sarama"
	"go.uber.org/zap"

	"github.com/narwhalmedia/moviecatalog/internal/config"
	"github.com/narwhalmedia/moviecatalog/internal/domain/catalog"
	"github.com/narwhalmedia/moviecatalog/internal/infrastructure/events"
)

// Publisher implements catalog.EventPublisher
type Publisher struct {
	producer sarama.SyncProducer
	topic    string
	source   string
	logger   *zap.Logger
}

// NewPublisher creates a new Kafka event publisher
func NewPublisher(cfg config.KafkaConfig, source string, logger *zap.Logger) (*Publisher, error) {
	saramaCfg := sarama.NewConfig()
	saramaCfg.Producer.RequiredAcks = sarama.WaitForAll
	saramaCfg.Producer.Retry.Max = 5
	saramaCfg.Producer.Return.Successes = true
	saramaCfg.Producer.Idempotent = true
	saramaCfg.Net.MaxOpenRequests = 1

	producer, err := sarama.NewSyncProducer(cfg.Brokers, saramaCfg)
	if err != nil {
		return nil, fmt.Errorf("creating producer: %w", err)
	}
	return NewPublisherWithProducer(producer, cfg.Topic, source, logger), nil
}

// NewPublisherWithProducer creates a publisher over an existing producer
func NewPublisherWithProducer(producer sarama.SyncProducer, topic, source string, logger *zap.Logger) *Publisher {
	return &Publisher{
		producer: producer,
		topic:    topic,
		source:   source,
		logger:   logger.Named("kafka"),
	}
}

// Publish writes event keyed by its aggregate so a movie's events stay ordered
func (p *Publisher) Publish(ctx context.Context, event catalog.Event) error {
	payload, err := events.Encode(event, p.source)
	if err != nil {
		return err
	}

	msg := &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(event.AggregateID().String()),
		Value: sarama.ByteEncoder(payload),
		Headers: []sarama.RecordHeader{
			{Key: []byte("event_type"), Value: []byte(event.EventType())},
			{Key: []byte("event_id"), Value: []byte(event.EventID().String())},
		},
	}

	partition, offset, err := p.producer.SendMessage(msg)
	if err != nil {
		return fmt.Errorf("sending message: %w", err)
	}

	p.logger.Info("event published",
		zap.String("event_id", event.EventID().String()),
		zap.String("topic", p.topic),
		zap.Int32("partition", partition),
		zap.Int64("offset", offset),
	)
	return nil
}

// Close closes the publisher
func (p *Publisher) Close() error {
	return p.producer.Close()
}
