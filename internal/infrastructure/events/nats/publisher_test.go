package nats

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/narwhalmedia/moviecatalog/internal/domain/catalog"
	"github.com/narwhalmedia/moviecatalog/internal/infrastructure/events"
)

type recordingStream struct {
	subject string
	payload []byte
	opts    []jetstream.PublishOpt
	err     error
}

func (r *recordingStream) Publish(ctx context.Context, subject string, payload []byte, opts ...jetstream.PublishOpt) (*jetstream.PubAck, error) {
	if r.err != nil {
		return nil, r.err
	}
	r.subject, r.payload, r.opts = subject, payload, opts
	return &jetstream.PubAck{Stream: StreamName, Sequence: 1}, nil
}

func movieRegistered() *catalog.MovieRegistered {
	return &catalog.MovieRegistered{
		ID:      uuid.New(),
		MovieID: uuid.New(),
		Title:   "Avengers1",
		At:      time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
	}
}

func TestPublisher_Publish(t *testing.T) {
	stream := &recordingStream{}
	p := newPublisher(stream, "catalog", zaptest.NewLogger(t))
	event := movieRegistered()

	require.NoError(t, p.Publish(context.Background(), event))
	assert.Equal(t, catalog.EventTypeMovieRegistered, stream.subject)
	assert.Len(t, stream.opts, 1, "message id set")

	var env events.Envelope
	require.NoError(t, json.Unmarshal(stream.payload, &env))
	assert.Equal(t, event.ID.String(), env.ID)
	assert.Equal(t, "catalog", env.Source)
}

func TestPublisher_PublishError(t *testing.T) {
	stream := &recordingStream{err: errors.New("no responders")}
	p := newPublisher(stream, "catalog", zaptest.NewLogger(t))

	err := p.Publish(context.Background(), movieRegistered())
	assert.ErrorContains(t, err, "no responders")
}
