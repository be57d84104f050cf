package gorm

import (
	"time"

	"github.com/google/uuid"

	"github.com/narwhalmedia/moviecatalog/internal/domain/catalog"
)

// ActorModel represents an actor in the database
type ActorModel struct {
	ID   uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name string    `gorm:"not null;uniqueIndex"`
}

func (ActorModel) TableName() string { return "actors" }

// DirectorModel represents a director in the database
type DirectorModel struct {
	ID   uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name string    `gorm:"not null;uniqueIndex"`
}

func (DirectorModel) TableName() string { return "directors" }

// GenreModel represents a genre of the controlled vocabulary
type GenreModel struct {
	ID   uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name string    `gorm:"not null;uniqueIndex"`
}

func (GenreModel) TableName() string { return "genres" }

// CountryModel represents a country of production of the controlled vocabulary
type CountryModel struct {
	ID   uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name string    `gorm:"not null;uniqueIndex"`
}

func (CountryModel) TableName() string { return "countries_of_production" }

// MovieModel represents a movie row. Relationship links live in explicit
// join models so credit order survives a round trip.
type MovieModel struct {
	ID                    uuid.UUID  `gorm:"type:uuid;primaryKey"`
	Title                 string     `gorm:"not null;uniqueIndex:idx_movies_title_published,priority:1"`
	Description           string     `gorm:"not null;default:''"`
	PublishedDate         time.Time  `gorm:"type:date;not null;uniqueIndex:idx_movies_title_published,priority:2"`
	CountryOfProductionID uuid.UUID  `gorm:"type:uuid;not null;index"`
	PosterID              *uuid.UUID `gorm:"type:uuid"`
	CreatedAt             time.Time  `gorm:"not null"`

	Country   CountryModel         `gorm:"foreignKey:CountryOfProductionID"`
	Actors    []MovieActorModel    `gorm:"foreignKey:MovieID"`
	Directors []MovieDirectorModel `gorm:"foreignKey:MovieID"`
	Genres    []MovieGenreModel    `gorm:"foreignKey:MovieID"`
}

func (MovieModel) TableName() string { return "movies" }

// MovieActorModel links a movie to a credited actor
type MovieActorModel struct {
	MovieID  uuid.UUID  `gorm:"type:uuid;primaryKey"`
	ActorID  uuid.UUID  `gorm:"type:uuid;primaryKey;index"`
	Position int        `gorm:"not null"`
	Actor    ActorModel `gorm:"foreignKey:ActorID"`
}

func (MovieActorModel) TableName() string { return "movie_actors" }

// MovieDirectorModel links a movie to a credited director
type MovieDirectorModel struct {
	MovieID    uuid.UUID     `gorm:"type:uuid;primaryKey"`
	DirectorID uuid.UUID     `gorm:"type:uuid;primaryKey;index"`
	Position   int           `gorm:"not null"`
	Director   DirectorModel `gorm:"foreignKey:DirectorID"`
}

func (MovieDirectorModel) TableName() string { return "movie_directors" }

// MovieGenreModel links a movie to one of its genres
type MovieGenreModel struct {
	MovieID  uuid.UUID  `gorm:"type:uuid;primaryKey"`
	GenreID  uuid.UUID  `gorm:"type:uuid;primaryKey;index"`
	Position int        `gorm:"not null"`
	Genre    GenreModel `gorm:"foreignKey:GenreID"`
}

func (MovieGenreModel) TableName() string { return "movie_genres" }

// AllModels lists the models in dependency order
func AllModels() []interface{} {
	return []interface{}{
		&ActorModel{},
		&DirectorModel{},
		&GenreModel{},
		&CountryModel{},
		&MovieModel{},
		&MovieActorModel{},
		&MovieDirectorModel{},
		&MovieGenreModel{},
	}
}

func actorToDomain(m *ActorModel) *catalog.Actor {
	return catalog.RestoreActor(m.ID, m.Name)
}

func actorFromDomain(a *catalog.Actor) *ActorModel {
	return &ActorModel{ID: a.ID(), Name: a.Name()}
}

func directorToDomain(m *DirectorModel) *catalog.Director {
	return catalog.RestoreDirector(m.ID, m.Name)
}

func directorFromDomain(d *catalog.Director) *DirectorModel {
	return &DirectorModel{ID: d.ID(), Name: d.Name()}
}

func genreToDomain(m *GenreModel) *catalog.Genre {
	return catalog.RestoreGenre(m.ID, m.Name)
}

func genreFromDomain(g *catalog.Genre) *GenreModel {
	return &GenreModel{ID: g.ID(), Name: g.Name()}
}

func countryToDomain(m *CountryModel) *catalog.CountryOfProduction {
	return catalog.RestoreCountryOfProduction(m.ID, m.Name)
}

func countryFromDomain(c *catalog.CountryOfProduction) *CountryModel {
	return &CountryModel{ID: c.ID(), Name: c.Name()}
}

// ToDomain converts a fully preloaded MovieModel to a domain Movie. The
// poster is restored from its id only; bytes are loaded by the poster store.
func (m *MovieModel) ToDomain() *catalog.Movie {
	actors := make([]*catalog.Actor, len(m.Actors))
	for i := range m.Actors {
		actors[i] = actorToDomain(&m.Actors[i].Actor)
	}
	directors := make([]*catalog.Director, len(m.Directors))
	for i := range m.Directors {
		directors[i] = directorToDomain(&m.Directors[i].Director)
	}
	genres := make([]*catalog.Genre, len(m.Genres))
	for i := range m.Genres {
		genres[i] = genreToDomain(&m.Genres[i].Genre)
	}

	var poster *catalog.Poster
	if m.PosterID != nil {
		poster = catalog.RestorePoster(*m.PosterID, "", nil)
	}

	return catalog.RestoreMovie(m.ID, catalog.MovieParams{
		Title:         m.Title,
		Description:   m.Description,
		PublishedDate: m.PublishedDate,
		Country:       countryToDomain(&m.Country),
		Actors:        actors,
		Directors:     directors,
		Genres:        genres,
		Poster:        poster,
	})
}

// movieFromDomain converts a domain Movie to its row and join rows.
func movieFromDomain(movie *catalog.Movie) (*MovieModel, []MovieActorModel, []MovieDirectorModel, []MovieGenreModel) {
	model := &MovieModel{
		ID:            movie.ID(),
		Title:         movie.Title(),
		Description:   movie.Description(),
		PublishedDate: movie.PublishedDate(),
	}
	if c := movie.Country(); c != nil {
		model.CountryOfProductionID = c.ID()
	}
	if p := movie.Poster(); p != nil {
		id := p.ID()
		model.PosterID = &id
	}

	actors := make([]MovieActorModel, 0, len(movie.Actors()))
	for i, a := range movie.Actors() {
		actors = append(actors, MovieActorModel{MovieID: movie.ID(), ActorID: a.ID(), Position: i})
	}
	directors := make([]MovieDirectorModel, 0, len(movie.Directors()))
	for i, d := range movie.Directors() {
		directors = append(directors, MovieDirectorModel{MovieID: movie.ID(), DirectorID: d.ID(), Position: i})
	}
	genres := make([]MovieGenreModel, 0, len(movie.Genres()))
	for i, g := range movie.Genres() {
		genres = append(genres, MovieGenreModel{MovieID: movie.ID(), GenreID: g.ID(), Position: i})
	}
	return model, actors, directors, genres
}
