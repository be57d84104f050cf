package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/narwhalmedia/moviecatalog/internal/domain/catalog"
)

const tracerName = "github.com/narwhalmedia/moviecatalog/internal/application/catalog"

// ServiceConfig tunes the registration use case
type ServiceConfig struct {
	// RegisterAttempts bounds how often a registration runs when it loses a
	// uniqueness race. Values below 1 mean a single attempt.
	RegisterAttempts int
}

// Service handles movie registration
type Service struct {
	uow       UnitOfWork
	factory   *catalog.Factory
	publisher catalog.EventPublisher
	tracer    trace.Tracer
	logger    *zap.Logger
	attempts  int
	now       func() time.Time

	actors    resolver[catalog.Actor, *catalog.Actor]
	directors resolver[catalog.Director, *catalog.Director]
	genres    resolver[catalog.Genre, *catalog.Genre]
	countries resolver[catalog.CountryOfProduction, *catalog.CountryOfProduction]
}

// NewService creates a new registration service
func NewService(
	uow UnitOfWork,
	factory *catalog.Factory,
	publisher catalog.EventPublisher,
	tp trace.TracerProvider,
	logger *zap.Logger,
	cfg ServiceConfig,
) *Service {
	attempts := cfg.RegisterAttempts
	if attempts < 1 {
		attempts = 1
	}
	return &Service{
		uow:       uow,
		factory:   factory,
		publisher: publisher,
		tracer:    tp.Tracer(tracerName),
		logger:    logger.Named("register"),
		attempts:  attempts,
		now:       time.Now,
		actors: resolver[catalog.Actor, *catalog.Actor]{
			field:  "actors",
			policy: CreateOnMiss,
			create: factory.NewActor,
		},
		directors: resolver[catalog.Director, *catalog.Director]{
			field:  "directors",
			policy: CreateOnMiss,
			create: factory.NewDirector,
		},
		genres: resolver[catalog.Genre, *catalog.Genre]{
			field:  "genres",
			policy: RejectOnMiss,
			reject: catalog.NewInvalidGenreError,
		},
		countries: resolver[catalog.CountryOfProduction, *catalog.CountryOfProduction]{
			field:  "country",
			policy: RejectOnMiss,
			reject: catalog.NewInvalidCountryError,
		},
	}
}

// Register adds a movie to the catalog. Actors and directors are reused by
// name or created; genres and the country must already be registered. An
// attempt that loses a uniqueness race is re-run from scratch.
func (s *Service) Register(ctx context.Context, cmd RegisterMovieCommand) (*RegistrationResult, error) {
	if err := validateCommand(cmd); err != nil {
		return nil, err
	}

	var err error
	for attempt := 1; attempt <= s.attempts; attempt++ {
		var result *RegistrationResult
		result, err = s.registerOnce(ctx, cmd, attempt)
		if err == nil {
			s.publish(ctx, result.Movie)
			return result, nil
		}
		if !errors.Is(err, catalog.ErrStorageConflict) {
			return nil, err
		}
		s.logger.Warn("registration lost a uniqueness race",
			zap.String("title", cmd.Title),
			zap.Int("attempt", attempt),
			zap.Error(err),
		)
	}
	return nil, err
}

func (s *Service) registerOnce(ctx context.Context, cmd RegisterMovieCommand, attempt int) (_ *RegistrationResult, err error) {
	ctx, span := s.tracer.Start(ctx, "catalog.Register", trace.WithAttributes(
		attribute.String("movie.title", cmd.Title),
		attribute.Int("attempt", attempt),
	))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	tx, err := s.uow.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	title := strings.TrimSpace(cmd.Title)
	date := catalog.NormalizeDate(cmd.PublishedDate)
	existing, err := tx.Movies().FindByTitleAndDate(ctx, title, date)
	if err != nil {
		return nil, fmt.Errorf("check existing movie: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: %s (%s)", catalog.ErrMovieAlreadyExists, title, date.Format(time.DateOnly))
	}

	actors, createdActors, err := s.actors.resolve(ctx, tx.Actors(), cmd.Actors)
	if err != nil {
		return nil, err
	}
	directors, createdDirectors, err := s.directors.resolve(ctx, tx.Directors(), cmd.Directors)
	if err != nil {
		return nil, err
	}
	genres, _, err := s.genres.resolve(ctx, tx.Genres(), cmd.Genres)
	if err != nil {
		return nil, err
	}
	countries, _, err := s.countries.resolve(ctx, tx.Countries(), []string{cmd.Country})
	if err != nil {
		return nil, err
	}

	var poster *catalog.Poster
	if cmd.Poster != nil {
		poster, err = s.factory.NewPoster(cmd.Poster.Filename, cmd.Poster.Content)
		if err != nil {
			return nil, err
		}
	}

	movie, err := s.factory.NewMovie(catalog.MovieParams{
		Title:         title,
		Description:   cmd.Description,
		PublishedDate: date,
		Country:       countries[0],
		Actors:        actors,
		Directors:     directors,
		Genres:        genres,
		Poster:        poster,
	})
	if err != nil {
		return nil, err
	}

	for _, a := range createdActors {
		if err := tx.Actors().Add(ctx, a); err != nil {
			return nil, err
		}
	}
	for _, d := range createdDirectors {
		if err := tx.Directors().Add(ctx, d); err != nil {
			return nil, err
		}
	}
	if poster != nil {
		if err := tx.Posters().Add(ctx, poster); err != nil {
			return nil, err
		}
	}
	if err := tx.Movies().Add(ctx, movie); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	s.logger.Info("movie registered",
		zap.String("movie_id", movie.ID().String()),
		zap.String("title", movie.Title()),
		zap.Int("created_actors", len(createdActors)),
		zap.Int("created_directors", len(createdDirectors)),
	)
	return &RegistrationResult{
		Movie:            movie,
		CreatedActors:    createdActors,
		CreatedDirectors: createdDirectors,
	}, nil
}

// publish sends MovieRegistered. The movie is already durable, so a
// failure is only logged.
func (s *Service) publish(ctx context.Context, movie *catalog.Movie) {
	event := catalog.NewMovieRegistered(movie, s.now().UTC())
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Error("failed to publish movie registered event",
			zap.String("movie_id", movie.ID().String()),
			zap.Error(err),
		)
	}
}

func validateCommand(cmd RegisterMovieCommand) error {
	if strings.TrimSpace(cmd.Title) == "" {
		return catalog.NewValidationError("title", "is required")
	}
	if cmd.PublishedDate.IsZero() {
		return catalog.NewValidationError("published_date", "is required")
	}
	if strings.TrimSpace(cmd.Country) == "" {
		return catalog.NewValidationError("country", "is required")
	}
	return nil
}
