package gorm

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/narwhalmedia/moviecatalog/internal/domain/catalog"
	pkgerrors "github.com/narwhalmedia/moviecatalog/pkg/errors"
	"github.com/narwhalmedia/moviecatalog/pkg/repository"
)

// namedRepository implements catalog.NamedRepository over a model with an
// id and a unique name column.
type namedRepository[T catalog.Named, M any] struct {
	db         *gorm.DB
	kind       string
	toDomain   func(*M) T
	fromDomain func(T) *M
	// relatedMovies narrows a movies query to rows referencing id
	relatedMovies func(db *gorm.DB, id uuid.UUID) *gorm.DB
}

func (r *namedRepository[T, M]) Add(ctx context.Context, entity T) error {
	return translateWriteError("add "+r.kind, repository.Create(ctx, r.db, r.fromDomain(entity)))
}

func (r *namedRepository[T, M]) FindByName(ctx context.Context, name string) (T, error) {
	var zero T
	model, err := r.findModel(ctx, name)
	if err != nil || model == nil {
		return zero, err
	}
	return r.toDomain(model), nil
}

// findModel returns nil when no row has name.
func (r *namedRepository[T, M]) findModel(ctx context.Context, name string) (*M, error) {
	model, err := repository.FindOneBy[M](ctx, r.db, "name = ?", strings.TrimSpace(name))
	if err != nil {
		if pkgerrors.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("find %s by name: %w", r.kind, err)
	}
	return model, nil
}

func (r *namedRepository[T, M]) FindAll(ctx context.Context) ([]T, error) {
	models, err := repository.List[M](ctx, r.db, "name")
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", r.kind, err)
	}
	out := make([]T, len(models))
	for i, m := range models {
		out[i] = r.toDomain(m)
	}
	return out, nil
}

func (r *namedRepository[T, M]) FindRelatedMovies(ctx context.Context, name string) ([]*catalog.Movie, bool, error) {
	model, err := r.findModel(ctx, name)
	if err != nil || model == nil {
		return nil, false, err
	}
	entity := r.toDomain(model)

	query := r.relatedMovies(r.db.WithContext(ctx).Model(&MovieModel{}), entity.ID())
	movies, err := loadMovies(query)
	if err != nil {
		return nil, true, fmt.Errorf("find movies by %s: %w", r.kind, err)
	}
	return movies, true, nil
}

// ActorRepository implements catalog.ActorRepository
type ActorRepository struct {
	*namedRepository[*catalog.Actor, ActorModel]
}

// NewActorRepository creates a new actor repository
func NewActorRepository(db *gorm.DB) *ActorRepository {
	return &ActorRepository{&namedRepository[*catalog.Actor, ActorModel]{
		db:         db,
		kind:       "actor",
		toDomain:   actorToDomain,
		fromDomain: actorFromDomain,
		relatedMovies: func(q *gorm.DB, id uuid.UUID) *gorm.DB {
			return q.Where("id IN (?)", q.Session(&gorm.Session{NewDB: true}).Model(&MovieActorModel{}).Select("movie_id").Where("actor_id = ?", id))
		},
	}}
}

// DirectorRepository implements catalog.DirectorRepository
type DirectorRepository struct {
	*namedRepository[*catalog.Director, DirectorModel]
}

// NewDirectorRepository creates a new director repository
func NewDirectorRepository(db *gorm.DB) *DirectorRepository {
	return &DirectorRepository{&namedRepository[*catalog.Director, DirectorModel]{
		db:         db,
		kind:       "director",
		toDomain:   directorToDomain,
		fromDomain: directorFromDomain,
		relatedMovies: func(q *gorm.DB, id uuid.UUID) *gorm.DB {
			return q.Where("id IN (?)", q.Session(&gorm.Session{NewDB: true}).Model(&MovieDirectorModel{}).Select("movie_id").Where("director_id = ?", id))
		},
	}}
}

// GenreRepository implements catalog.GenreRepository
type GenreRepository struct {
	*namedRepository[*catalog.Genre, GenreModel]
}

// NewGenreRepository creates a new genre repository
func NewGenreRepository(db *gorm.DB) *GenreRepository {
	return &GenreRepository{&namedRepository[*catalog.Genre, GenreModel]{
		db:         db,
		kind:       "genre",
		toDomain:   genreToDomain,
		fromDomain: genreFromDomain,
		relatedMovies: func(q *gorm.DB, id uuid.UUID) *gorm.DB {
			return q.Where("id IN (?)", q.Session(&gorm.Session{NewDB: true}).Model(&MovieGenreModel{}).Select("movie_id").Where("genre_id = ?", id))
		},
	}}
}

// CountryRepository implements catalog.CountryRepository
type CountryRepository struct {
	*namedRepository[*catalog.CountryOfProduction, CountryModel]
}

// NewCountryRepository creates a new country repository
func NewCountryRepository(db *gorm.DB) *CountryRepository {
	return &CountryRepository{&namedRepository[*catalog.CountryOfProduction, CountryModel]{
		db:         db,
		kind:       "country of production",
		toDomain:   countryToDomain,
		fromDomain: countryFromDomain,
		relatedMovies: func(q *gorm.DB, id uuid.UUID) *gorm.DB {
			return q.Where("country_of_production_id = ?", id)
		},
	}}
}
