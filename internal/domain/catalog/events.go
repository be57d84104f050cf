package catalog

import (
	"context"
	"time"

	"github.com/google/uuid"
)

const EventTypeMovieRegistered = "catalog.movie.registered"

// Event is a fact published after a successful commit.
type Event interface {
	EventID() uuid.UUID
	EventType() string
	AggregateID() uuid.UUID
	OccurredAt() time.Time
}

// EventPublisher delivers events to the configured broker.
type EventPublisher interface {
	Publish(ctx context.Context, event Event) error
}

// MovieRegistered is emitted once a movie and its poster are durable.
type MovieRegistered struct {
	ID            uuid.UUID `json:"event_id"`
	MovieID       uuid.UUID `json:"movie_id"`
	Title         string    `json:"title"`
	PublishedDate string    `json:"published_date"`
	Country       string    `json:"country"`
	Actors        []string  `json:"actors"`
	Directors     []string  `json:"directors"`
	Genres        []string  `json:"genres"`
	At            time.Time `json:"occurred_at"`
}

// NewMovieRegistered builds the event for m.
func NewMovieRegistered(m *Movie, at time.Time) *MovieRegistered {
	country := ""
	if m.Country() != nil {
		country = m.Country().Name()
	}
	return &MovieRegistered{
		ID:            uuid.New(),
		MovieID:       m.ID(),
		Title:         m.Title(),
		PublishedDate: m.PublishedDate().Format(time.DateOnly),
		Country:       country,
		Actors:        Names(m.Actors()),
		Directors:     Names(m.Directors()),
		Genres:        Names(m.Genres()),
		At:            at.UTC(),
	}
}

func (e *MovieRegistered) EventID() uuid.UUID     { return e.ID }
func (e *MovieRegistered) EventType() string      { return EventTypeMovieRegistered }
func (e *MovieRegistered) AggregateID() uuid.UUID { return e.MovieID }
func (e *MovieRegistered) OccurredAt() time.Time  { return e.At }
