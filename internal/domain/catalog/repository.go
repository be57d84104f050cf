package catalog

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// NamedRepository is the shape shared by the repositories of name-keyed
// reference entities. Add only stages the write; durability is decided by
// the enclosing unit of work.
type NamedRepository[T Named] interface {
	// Add stages the entity for insertion
	Add(ctx context.Context, entity T) error
	// FindByName returns the entity registered under name, or the zero value if none
	FindByName(ctx context.Context, name string) (T, error)
	// FindAll returns every entity ordered by name
	FindAll(ctx context.Context) ([]T, error)
	// FindRelatedMovies returns the movies referencing the named entity.
	// found is false when no entity has that name.
	FindRelatedMovies(ctx context.Context, name string) (movies []*Movie, found bool, err error)
}

// ActorRepository stores actors
type ActorRepository interface {
	NamedRepository[*Actor]
}

// DirectorRepository stores directors
type DirectorRepository interface {
	NamedRepository[*Director]
}

// GenreRepository stores genres
type GenreRepository interface {
	NamedRepository[*Genre]
}

// CountryRepository stores countries of production
type CountryRepository interface {
	NamedRepository[*CountryOfProduction]
}

// MovieRepository stores movies together with their relationship links
type MovieRepository interface {
	// Add stages the movie row, its country reference and its join rows
	Add(ctx context.Context, movie *Movie) error
	// FindByTitleAndDate returns the movie listed under title and date, or nil
	FindByTitleAndDate(ctx context.Context, title string, date time.Time) (*Movie, error)
	// FindAll returns every movie ordered by title and date
	FindAll(ctx context.Context) ([]*Movie, error)
}

// PosterRepository stores poster files
type PosterRepository interface {
	// Add stages the poster bytes for writing on commit
	Add(ctx context.Context, poster *Poster) error
	// FindByID returns the poster with its content, or nil
	FindByID(ctx context.Context, id uuid.UUID) (*Poster, error)
}
