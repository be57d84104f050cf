package catalog

import (
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

const defaultPosterExt = ".jpg"

// Factory constructs catalog entities with fresh identities.
type Factory struct {
	newID func() uuid.UUID
}

// NewFactory creates a factory backed by random UUIDs
func NewFactory() *Factory {
	return &Factory{newID: uuid.New}
}

// NewFactoryWithIDs creates a factory drawing ids from gen.
func NewFactoryWithIDs(gen func() uuid.UUID) *Factory {
	return &Factory{newID: gen}
}

// NewActor creates an actor
func (f *Factory) NewActor(name string) (*Actor, error) {
	n, err := requireName("actor", name)
	if err != nil {
		return nil, err
	}
	return &Actor{namedEntity{id: f.newID(), name: n}}, nil
}

// NewDirector creates a director
func (f *Factory) NewDirector(name string) (*Director, error) {
	n, err := requireName("director", name)
	if err != nil {
		return nil, err
	}
	return &Director{namedEntity{id: f.newID(), name: n}}, nil
}

// NewGenre creates a genre
func (f *Factory) NewGenre(name string) (*Genre, error) {
	n, err := requireName("genre", name)
	if err != nil {
		return nil, err
	}
	return &Genre{namedEntity{id: f.newID(), name: n}}, nil
}

// NewCountryOfProduction creates a country
func (f *Factory) NewCountryOfProduction(name string) (*CountryOfProduction, error) {
	n, err := requireName("country_of_production", name)
	if err != nil {
		return nil, err
	}
	return &CountryOfProduction{namedEntity{id: f.newID(), name: n}}, nil
}

// NewPoster creates a poster whose stored filename is the new id followed by
// the lower-cased extension of originalName.
func (f *Factory) NewPoster(originalName string, content []byte) (*Poster, error) {
	if len(content) == 0 {
		return nil, NewValidationError("poster", "content cannot be empty")
	}
	ext := strings.ToLower(filepath.Ext(filepath.Base(originalName)))
	if ext == "" || ext == "." {
		ext = defaultPosterExt
	}
	id := f.newID()
	data := make([]byte, len(content))
	copy(data, content)
	return &Poster{id: id, filename: id.String() + ext, content: data}, nil
}

// NewMovie creates a movie. Relationship lists are de-duplicated by id.
func (f *Factory) NewMovie(p MovieParams) (*Movie, error) {
	title := strings.TrimSpace(p.Title)
	if title == "" {
		return nil, NewValidationError("title", "cannot be empty")
	}
	if p.PublishedDate.IsZero() {
		return nil, NewValidationError("published_date", "is required")
	}
	if p.Country == nil {
		return nil, NewValidationError("country_of_production", "is required")
	}
	p.Title = title
	return RestoreMovie(f.newID(), p), nil
}

func requireName(field, name string) (string, error) {
	n := strings.TrimSpace(name)
	if n == "" {
		return "", NewValidationError(field, "name cannot be empty")
	}
	return n, nil
}
