package catalog

import (
	"time"

	"github.com/narwhalmedia/moviecatalog/internal/domain/catalog"
)

// PosterUpload carries an uploaded poster image
type PosterUpload struct {
	Filename string
	Content  []byte
}

// RegisterMovieCommand represents a command to register a new movie
type RegisterMovieCommand struct {
	Title         string
	Description   string
	PublishedDate time.Time
	Country       string
	Actors        []string
	Directors     []string
	Genres        []string
	Poster        *PosterUpload // optional
}

// RegistrationResult reports the registered movie and the people that were
// created for it rather than reused.
type RegistrationResult struct {
	Movie            *catalog.Movie
	CreatedActors    []*catalog.Actor
	CreatedDirectors []*catalog.Director
}
