package gorm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/narwhalmedia/moviecatalog/internal/domain/catalog"
	"github.com/narwhalmedia/moviecatalog/pkg/repository"
)

// MovieRepository implements catalog.MovieRepository using GORM
type MovieRepository struct {
	db *gorm.DB
}

// NewMovieRepository creates a new GORM movie repository
func NewMovieRepository(db *gorm.DB) *MovieRepository {
	return &MovieRepository{db: db}
}

// Add inserts the movie row followed by its join rows. Run inside a
// transaction the whole set becomes durable together.
func (r *MovieRepository) Add(ctx context.Context, movie *catalog.Movie) error {
	model, actors, directors, genres := movieFromDomain(movie)

	if err := repository.Create(ctx, r.db, model); err != nil {
		return translateWriteError("add movie", err)
	}
	if err := repository.CreateBatch(ctx, r.db, actors); err != nil {
		return translateWriteError("link movie actors", err)
	}
	if err := repository.CreateBatch(ctx, r.db, directors); err != nil {
		return translateWriteError("link movie directors", err)
	}
	if err := repository.CreateBatch(ctx, r.db, genres); err != nil {
		return translateWriteError("link movie genres", err)
	}
	return nil
}

// FindByTitleAndDate returns nil when no movie is listed under title and date
func (r *MovieRepository) FindByTitleAndDate(ctx context.Context, title string, date time.Time) (*catalog.Movie, error) {
	query := r.db.WithContext(ctx).
		Where("title = ? AND published_date = ?", strings.TrimSpace(title), catalog.NormalizeDate(date)).
		Limit(1)

	movies, err := loadMovies(query)
	if err != nil {
		return nil, fmt.Errorf("find movie by title and date: %w", err)
	}
	if len(movies) == 0 {
		return nil, nil
	}
	return movies[0], nil
}

// FindAll returns every movie ordered by title and date
func (r *MovieRepository) FindAll(ctx context.Context) ([]*catalog.Movie, error) {
	movies, err := loadMovies(r.db.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("find all movies: %w", err)
	}
	return movies, nil
}

// loadMovies runs query against movies with every relationship preloaded in
// credit order.
func loadMovies(query *gorm.DB) ([]*catalog.Movie, error) {
	byPosition := func(db *gorm.DB) *gorm.DB { return db.Order("position") }

	var models []MovieModel
	err := query.
		Preload("Country").
		Preload("Actors", byPosition).
		Preload("Actors.Actor").
		Preload("Directors", byPosition).
		Preload("Directors.Director").
		Preload("Genres", byPosition).
		Preload("Genres.Genre").
		Order("title").
		Order("published_date").
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	movies := make([]*catalog.Movie, len(models))
	for i := range models {
		movies[i] = models[i].ToDomain()
	}
	return movies, nil
}
