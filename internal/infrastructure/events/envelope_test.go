package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/narwhalmedia/moviecatalog/internal/domain/catalog"
)

func sampleEvent(t *testing.T) *catalog.MovieRegistered {
	t.Helper()
	f := catalog.NewFactory()
	usa, err := f.NewCountryOfProduction("USA")
	require.NoError(t, err)
	m, err := f.NewMovie(catalog.MovieParams{
		Title:         "Avengers1",
		PublishedDate: time.Date(2012, 4, 11, 0, 0, 0, 0, time.UTC),
		Country:       usa,
	})
	require.NoError(t, err)
	return catalog.NewMovieRegistered(m, time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC))
}

func TestEncode(t *testing.T) {
	event := sampleEvent(t)

	payload, err := Encode(event, "catalog")
	require.NoError(t, err)

	var env Envelope
	require.NoError(t, json.Unmarshal(payload, &env))
	assert.Equal(t, event.ID.String(), env.ID)
	assert.Equal(t, catalog.EventTypeMovieRegistered, env.Type)
	assert.Equal(t, "catalog", env.Source)
	assert.True(t, env.OccurredAt.Equal(event.At))

	var data map[string]interface{}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, "Avengers1", data["title"])
	assert.Equal(t, "2012-04-11", data["published_date"])
	assert.Equal(t, "USA", data["country"])
}

func TestNoopPublisher(t *testing.T) {
	assert.NoError(t, NewNoopPublisher(zaptest.NewLogger(t)).Publish(context.Background(), sampleEvent(t)))
}
