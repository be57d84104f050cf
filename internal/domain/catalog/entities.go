package catalog

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Entity is anything in the catalog with a stable identity.
type Entity interface {
	ID() uuid.UUID
}

// Named is a shared reference entity identified by a unique name.
type Named interface {
	Entity
	Name() string
	HasName(name string) bool
}

// namedEntity carries the fields shared by actors, directors, genres and countries.
type namedEntity struct {
	id   uuid.UUID
	name string
}

// ID returns the entity identifier
func (e namedEntity) ID() uuid.UUID {
	return e.id
}

// Name returns the entity name
func (e namedEntity) Name() string {
	return e.name
}

// HasName reports whether the entity is the one registered under name.
// It is only used while resolving request names; sets compare by id.
func (e namedEntity) HasName(name string) bool {
	return e.name == strings.TrimSpace(name)
}

// Actor is a person credited as cast.
type Actor struct {
	namedEntity
}

// SameAs compares actors by identity
func (a *Actor) SameAs(other *Actor) bool {
	return other != nil && a.id == other.id
}

// Director is a person credited as director.
type Director struct {
	namedEntity
}

// SameAs compares directors by identity
func (d *Director) SameAs(other *Director) bool {
	return other != nil && d.id == other.id
}

// Genre is an entry of the genre vocabulary.
type Genre struct {
	namedEntity
}

// SameAs compares genres by identity
func (g *Genre) SameAs(other *Genre) bool {
	return other != nil && g.id == other.id
}

// CountryOfProduction is an entry of the country vocabulary.
type CountryOfProduction struct {
	namedEntity
}

// SameAs compares countries by identity
func (c *CountryOfProduction) SameAs(other *CountryOfProduction) bool {
	return other != nil && c.id == other.id
}

// RestoreActor rebuilds a persisted actor.
func RestoreActor(id uuid.UUID, name string) *Actor {
	return &Actor{namedEntity{id: id, name: name}}
}

// RestoreDirector rebuilds a persisted director.
func RestoreDirector(id uuid.UUID, name string) *Director {
	return &Director{namedEntity{id: id, name: name}}
}

// RestoreGenre rebuilds a persisted genre.
func RestoreGenre(id uuid.UUID, name string) *Genre {
	return &Genre{namedEntity{id: id, name: name}}
}

// RestoreCountryOfProduction rebuilds a persisted country.
func RestoreCountryOfProduction(id uuid.UUID, name string) *CountryOfProduction {
	return &CountryOfProduction{namedEntity{id: id, name: name}}
}

// Poster is the binary artwork attached to a movie. The stored filename is
// "<id><ext>", so the id doubles as the filename stem.
type Poster struct {
	id       uuid.UUID
	filename string
	content  []byte
}

// RestorePoster rebuilds a poster. Content may be nil when only the
// relational reference has been loaded.
func RestorePoster(id uuid.UUID, filename string, content []byte) *Poster {
	return &Poster{id: id, filename: filename, content: content}
}

// ID returns the poster identifier
func (p *Poster) ID() uuid.UUID {
	return p.id
}

// Filename returns the name of the file under the storage root
func (p *Poster) Filename() string {
	return p.filename
}

// Content returns a copy of the poster bytes
func (p *Poster) Content() []byte {
	if p.content == nil {
		return nil
	}
	out := make([]byte, len(p.content))
	copy(out, p.content)
	return out
}

// Loaded reports whether the poster bytes are present.
func (p *Poster) Loaded() bool {
	return p.content != nil
}

// SameAs compares posters by identity
func (p *Poster) SameAs(other *Poster) bool {
	return other != nil && p.id == other.id
}

// Movie is the catalog aggregate.
type Movie struct {
	id            uuid.UUID
	title         string
	description   string
	publishedDate time.Time
	country       *CountryOfProduction
	actors        []*Actor
	directors     []*Director
	genres        []*Genre
	poster        *Poster
}

// MovieParams groups the attributes of a movie.
type MovieParams struct {
	Title         string
	Description   string
	PublishedDate time.Time
	Country       *CountryOfProduction
	Actors        []*Actor
	Directors     []*Director
	Genres        []*Genre
	Poster        *Poster
}

// RestoreMovie rebuilds a persisted movie.
func RestoreMovie(id uuid.UUID, p MovieParams) *Movie {
	return &Movie{
		id:            id,
		title:         p.Title,
		description:   p.Description,
		publishedDate: NormalizeDate(p.PublishedDate),
		country:       p.Country,
		actors:        UniqueByID(p.Actors),
		directors:     UniqueByID(p.Directors),
		genres:        UniqueByID(p.Genres),
		poster:        p.Poster,
	}
}

// ID returns the movie identifier
func (m *Movie) ID() uuid.UUID {
	return m.id
}

// Title returns the movie title
func (m *Movie) Title() string {
	return m.title
}

// Description returns the movie description
func (m *Movie) Description() string {
	return m.description
}

// PublishedDate returns the publication date at UTC midnight
func (m *Movie) PublishedDate() time.Time {
	return m.publishedDate
}

// Country returns the country of production
func (m *Movie) Country() *CountryOfProduction {
	return m.country
}

// Actors returns a copy of the cast in credit order
func (m *Movie) Actors() []*Actor {
	return append([]*Actor(nil), m.actors...)
}

// Directors returns a copy of the directors in credit order
func (m *Movie) Directors() []*Director {
	return append([]*Director(nil), m.directors...)
}

// Genres returns a copy of the genres
func (m *Movie) Genres() []*Genre {
	return append([]*Genre(nil), m.genres...)
}

// Poster returns the attached poster, or nil
func (m *Movie) Poster() *Poster {
	return m.poster
}

// WithPoster returns a copy of the movie carrying p.
func (m *Movie) WithPoster(p *Poster) *Movie {
	clone := *m
	clone.poster = p
	return &clone
}

// SameAs compares movies by identity
func (m *Movie) SameAs(other *Movie) bool {
	return other != nil && m.id == other.id
}

// SameListing reports whether the movie is listed under title and date,
// the pair that must be unique across the catalog.
func (m *Movie) SameListing(title string, date time.Time) bool {
	return m.title == strings.TrimSpace(title) && m.publishedDate.Equal(NormalizeDate(date))
}

// NormalizeDate truncates t to midnight UTC of its calendar day.
func NormalizeDate(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	y, mo, d := t.Date()
	return time.Date(y, mo, d, 0, 0, 0, 0, time.UTC)
}

// UniqueByID drops repeated entities, keeping the first occurrence.
func UniqueByID[T Entity](items []T) []T {
	if items == nil {
		return nil
	}
	seen := make(map[uuid.UUID]struct{}, len(items))
	out := make([]T, 0, len(items))
	for _, item := range items {
		if _, ok := seen[item.ID()]; ok {
			continue
		}
		seen[item.ID()] = struct{}{}
		out = append(out, item)
	}
	return out
}

// Names returns the names of entities in order.
func Names[T Named](items []T) []string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = item.Name()
	}
	return out
}
