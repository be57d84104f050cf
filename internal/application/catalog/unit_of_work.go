package catalog

import (
	"context"

	"github.com/narwhalmedia/moviecatalog/internal/domain/catalog"
)

// Repositories groups the catalog repositories
type Repositories interface {
	Actors() catalog.ActorRepository
	Directors() catalog.DirectorRepository
	Genres() catalog.GenreRepository
	Countries() catalog.CountryRepository
	Movies() catalog.MovieRepository
	Posters() catalog.PosterRepository
}

// UnitOfWork defines the interface for managing transactions across repositories
type UnitOfWork interface {
	// Begin starts a new transaction
	Begin(ctx context.Context) (Transaction, error)
}

// Transaction spans the relational store and the poster store. Writes made
// through its repositories become visible only after Commit.
type Transaction interface {
	Repositories
	// Commit makes every staged write durable
	Commit() error
	// Rollback discards staged writes. Safe to call after Commit.
	Rollback() error
	// Context returns the transaction context
	Context() context.Context
}
