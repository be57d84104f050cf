package catalog

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/narwhalmedia/moviecatalog/internal/domain/catalog"
)

// ReadService answers catalog queries. Movies come back with their poster
// bytes attached when the file can be found.
type ReadService struct {
	repos  Repositories
	logger *zap.Logger
}

// NewReadService creates a new read service
func NewReadService(repos Repositories, logger *zap.Logger) *ReadService {
	return &ReadService{repos: repos, logger: logger.Named("reader")}
}

// FindAll returns every movie ordered by title and date
func (s *ReadService) FindAll(ctx context.Context) ([]*catalog.Movie, error) {
	movies, err := s.repos.Movies().FindAll(ctx)
	if err != nil {
		return nil, err
	}
	return s.attachPosters(ctx, movies)
}

// FindByTitleAndYear returns the movie listed under title and date, or nil
func (s *ReadService) FindByTitleAndYear(ctx context.Context, title string, date time.Time) (*catalog.Movie, error) {
	movie, err := s.repos.Movies().FindByTitleAndDate(ctx, title, date)
	if err != nil || movie == nil {
		return nil, err
	}
	return s.attachPoster(ctx, movie)
}

// MoviesByActor returns the movies crediting the named actor
func (s *ReadService) MoviesByActor(ctx context.Context, name string) ([]*catalog.Movie, bool, error) {
	return relatedMovies[*catalog.Actor](ctx, s, s.repos.Actors(), name)
}

// MoviesByDirector returns the movies crediting the named director
func (s *ReadService) MoviesByDirector(ctx context.Context, name string) ([]*catalog.Movie, bool, error) {
	return relatedMovies[*catalog.Director](ctx, s, s.repos.Directors(), name)
}

// MoviesByGenre returns the movies tagged with the named genre
func (s *ReadService) MoviesByGenre(ctx context.Context, name string) ([]*catalog.Movie, bool, error) {
	return relatedMovies[*catalog.Genre](ctx, s, s.repos.Genres(), name)
}

// MoviesByCountry returns the movies produced in the named country
func (s *ReadService) MoviesByCountry(ctx context.Context, name string) ([]*catalog.Movie, bool, error) {
	return relatedMovies[*catalog.CountryOfProduction](ctx, s, s.repos.Countries(), name)
}

// Genres lists the genre vocabulary
func (s *ReadService) Genres(ctx context.Context) ([]*catalog.Genre, error) {
	return s.repos.Genres().FindAll(ctx)
}

// Countries lists the country vocabulary
func (s *ReadService) Countries(ctx context.Context) ([]*catalog.CountryOfProduction, error) {
	return s.repos.Countries().FindAll(ctx)
}

func relatedMovies[T catalog.Named](ctx context.Context, s *ReadService, repo catalog.NamedRepository[T], name string) ([]*catalog.Movie, bool, error) {
	movies, found, err := repo.FindRelatedMovies(ctx, name)
	if err != nil || !found {
		return nil, found, err
	}
	movies, err = s.attachPosters(ctx, movies)
	if err != nil {
		return nil, true, err
	}
	return movies, true, nil
}

func (s *ReadService) attachPosters(ctx context.Context, movies []*catalog.Movie) ([]*catalog.Movie, error) {
	out := make([]*catalog.Movie, len(movies))
	for i, m := range movies {
		withPoster, err := s.attachPoster(ctx, m)
		if err != nil {
			return nil, err
		}
		out[i] = withPoster
	}
	return out, nil
}

func (s *ReadService) attachPoster(ctx context.Context, movie *catalog.Movie) (*catalog.Movie, error) {
	ref := movie.Poster()
	if ref == nil {
		return movie, nil
	}
	poster, err := s.repos.Posters().FindByID(ctx, ref.ID())
	if err != nil {
		return nil, fmt.Errorf("load poster for %s: %w", movie.ID(), err)
	}
	if poster == nil {
		s.logger.Warn("poster file missing",
			zap.String("movie_id", movie.ID().String()),
			zap.String("poster_id", ref.ID().String()),
		)
		return movie, nil
	}
	return movie.WithPoster(poster), nil
}
