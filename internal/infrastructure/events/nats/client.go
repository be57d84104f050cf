package nats

import (
	"context"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"go.uber.org/zap"

	"github.com/narwhalmedia/moviecatalog/internal/config"
)

// StreamName is the JetStream stream holding catalog events
const StreamName = "CATALOG_EVENTS"

// Client wraps NATS and JetStream connections
type Client struct {
	nc     *nats.Conn
	js     jetstream.JetStream
	logger *zap.Logger
}

// NewClient connects to NATS and makes sure the catalog stream exists
func NewClient(cfg config.NATSConfig, logger *zap.Logger) (*Client, func(), error) {
	logger = logger.Named("nats")
	opts := []nats.Option{
		nats.Name(cfg.ClientID),
		nats.MaxReconnects(cfg.MaxReconnect),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			if err != nil {
				logger.Error("NATS disconnected", zap.Error(err))
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("NATS reconnected", zap.String("url", nc.ConnectedUrl()))
		}),
		nats.ClosedHandler(func(nc *nats.Conn) {
			logger.Info("NATS connection closed")
		}),
	}

	nc, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	client := &Client{nc: nc, js: js, logger: logger}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := client.initializeStream(ctx); err != nil {
		nc.Close()
		return nil, nil, fmt.Errorf("failed to initialize stream: %w", err)
	}

	cleanup := func() {
		if err := nc.Drain(); err != nil {
			logger.Error("failed to drain NATS connection", zap.Error(err))
		}
		nc.Close()
	}

	logger.Info("NATS client initialized",
		zap.String("url", cfg.URL),
		zap.String("client_id", cfg.ClientID),
	)
	return client, cleanup, nil
}

func (c *Client) initializeStream(ctx context.Context) error {
	_, err := c.js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:        StreamName,
		Description: "Stream for catalog domain events",
		Subjects:    []string{"catalog.>"},
		Retention:   jetstream.LimitsPolicy,
		MaxAge:      30 * 24 * time.Hour,
		Storage:     jetstream.FileStorage,
		Discard:     jetstream.DiscardOld,
		Duplicates:  2 * time.Minute,
		Replicas:    1,
		MaxMsgs:     -1,
		MaxBytes:    -1,
	})
	if err != nil {
		return fmt.Errorf("failed to create catalog stream: %w", err)
	}
	return nil
}

// JetStream returns the JetStream context
func (c *Client) JetStream() jetstream.JetStream {
	return c.js
}

// Health checks the health of the NATS connection
func (c *Client) Health(ctx context.Context) error {
	if !c.nc.IsConnected() {
		return fmt.Errorf("NATS client is not connected")
	}
	if _, err := c.js.AccountInfo(ctx); err != nil {
		return fmt.Errorf("failed to get JetStream account info: %w", err)
	}
	return nil
}
