package amqp

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/narwhalmedia/moviecatalog/internal/domain/catalog"
	"github.com/narwhalmedia/moviecatalog/internal/infrastructure/events"
)

type fakeChannel struct {
	key    string
	msg    amqp.Publishing
	err    error
	closed bool
}

func (f *fakeChannel) PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	if f.err != nil {
		return f.err
	}
	f.key, f.msg = key, msg
	return nil
}

func (f *fakeChannel) Close() error {
	f.closed = true
	return nil
}

func TestPublisher_Publish(t *testing.T) {
	ch := &fakeChannel{}
	p := newPublisher(ch, "catalog.movie.registered", "catalog", zaptest.NewLogger(t))
	event := &catalog.MovieRegistered{ID: uuid.New(), MovieID: uuid.New(), Title: "Avengers1", At: time.Now().UTC()}

	require.NoError(t, p.Publish(context.Background(), event))
	assert.Equal(t, "catalog.movie.registered", ch.key)
	assert.Equal(t, amqp.Persistent, ch.msg.DeliveryMode)
	assert.Equal(t, "application/json", ch.msg.ContentType)
	assert.Equal(t, event.ID.String(), ch.msg.MessageId)

	var env events.Envelope
	require.NoError(t, json.Unmarshal(ch.msg.Body, &env))
	assert.Equal(t, catalog.EventTypeMovieRegistered, env.Type)

	require.NoError(t, p.Close())
	assert.True(t, ch.closed)
}

func TestPublisher_PublishError(t *testing.T) {
	ch := &fakeChannel{err: amqp.ErrClosed}
	p := newPublisher(ch, "q", "catalog", zaptest.NewLogger(t))

	err := p.Publish(context.Background(), &catalog.MovieRegistered{ID: uuid.New()})
	assert.True(t, errors.Is(err, amqp.ErrClosed))
}
