package gorm

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	appcatalog "github.com/narwhalmedia/moviecatalog/internal/application/catalog"
	"github.com/narwhalmedia/moviecatalog/internal/domain/catalog"
	"github.com/narwhalmedia/moviecatalog/internal/infrastructure/storage"
)

// UnitOfWork coordinates a GORM transaction with a poster storage session
type UnitOfWork struct {
	db      *gorm.DB
	backend storage.Backend
	logger  *zap.Logger
}

// NewUnitOfWork creates a new GORM-based unit of work
func NewUnitOfWork(db *gorm.DB, backend storage.Backend, logger *zap.Logger) *UnitOfWork {
	return &UnitOfWork{db: db, backend: backend, logger: logger.Named("uow")}
}

// Begin starts a new transaction
func (u *UnitOfWork) Begin(ctx context.Context) (appcatalog.Transaction, error) {
	tx := u.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, fmt.Errorf("begin transaction: %w", tx.Error)
	}

	session := storage.NewSession(u.backend, u.logger)
	return &gormTransaction{
		tx:        tx,
		ctx:       ctx,
		session:   session,
		logger:    u.logger,
		actors:    NewActorRepository(tx),
		directors: NewDirectorRepository(tx),
		genres:    NewGenreRepository(tx),
		countries: NewCountryRepository(tx),
		movies:    &recordingMovies{MovieRepository: NewMovieRepository(tx)},
		posters:   storage.NewPosterRepository(u.backend, session),
	}, nil
}

// gormTransaction implements appcatalog.Transaction
type gormTransaction struct {
	tx      *gorm.DB
	ctx     context.Context
	session *storage.Session
	logger  *zap.Logger
	done    bool

	actors    *ActorRepository
	directors *DirectorRepository
	genres    *GenreRepository
	countries *CountryRepository
	movies    *recordingMovies
	posters   *storage.PosterRepository
}

func (t *gormTransaction) Actors() catalog.ActorRepository       { return t.actors }
func (t *gormTransaction) Directors() catalog.DirectorRepository { return t.directors }
func (t *gormTransaction) Genres() catalog.GenreRepository       { return t.genres }
func (t *gormTransaction) Countries() catalog.CountryRepository  { return t.countries }
func (t *gormTransaction) Movies() catalog.MovieRepository       { return t.movies }
func (t *gormTransaction) Posters() catalog.PosterRepository     { return t.posters }

// Commit prepares the posters, commits the database, then publishes the
// posters. A publish failure after the database commit cannot be undone; it
// is logged with everything needed to reconcile and reported as
// catalog.ErrPartialCommit.
func (t *gormTransaction) Commit() error {
	if t.done {
		return sql.ErrTxDone
	}
	t.done = true

	if err := t.session.Prepare(t.ctx); err != nil {
		t.tx.Rollback()
		return fmt.Errorf("prepare posters: %w", err)
	}

	if err := t.tx.Commit().Error; err != nil {
		t.session.Rollback(t.ctx)
		return fmt.Errorf("commit transaction: %w", translateWriteError("commit", err))
	}

	if err := t.session.Commit(t.ctx); err != nil {
		t.logger.Error("catalog committed but posters were not published",
			zap.Strings("movie_ids", t.movies.ids()),
			zap.Strings("filenames", t.session.Filenames()),
			zap.Error(err),
		)
		return fmt.Errorf("%w: %v", catalog.ErrPartialCommit, err)
	}
	return nil
}

// Rollback releases the transaction and any staged posters
func (t *gormTransaction) Rollback() error {
	t.session.Rollback(t.ctx)
	if t.done {
		return nil
	}
	t.done = true

	if err := t.tx.Rollback().Error; err != nil {
		if errors.Is(err, sql.ErrTxDone) {
			return nil
		}
		return fmt.Errorf("rollback transaction: %w", err)
	}
	return nil
}

// Context returns the transaction context
func (t *gormTransaction) Context() context.Context {
	return t.ctx
}

// recordingMovies remembers the ids of movies added in the transaction
type recordingMovies struct {
	*MovieRepository
	added []uuid.UUID
}

func (r *recordingMovies) Add(ctx context.Context, movie *catalog.Movie) error {
	if err := r.MovieRepository.Add(ctx, movie); err != nil {
		return err
	}
	r.added = append(r.added, movie.ID())
	return nil
}

func (r *recordingMovies) ids() []string {
	out := make([]string, len(r.added))
	for i, id := range r.added {
		out[i] = id.String()
	}
	return out
}

// Repositories serves reads outside a transaction
type Repositories struct {
	actors    *ActorRepository
	directors *DirectorRepository
	genres    *GenreRepository
	countries *CountryRepository
	movies    *MovieRepository
	posters   *storage.PosterRepository
}

// NewRepositories creates read repositories over the pool and backend
func NewRepositories(db *gorm.DB, backend storage.Backend) *Repositories {
	return &Repositories{
		actors:    NewActorRepository(db),
		directors: NewDirectorRepository(db),
		genres:    NewGenreRepository(db),
		countries: NewCountryRepository(db),
		movies:    NewMovieRepository(db),
		posters:   storage.NewPosterRepository(backend, nil),
	}
}

func (r *Repositories) Actors() catalog.ActorRepository       { return r.actors }
func (r *Repositories) Directors() catalog.DirectorRepository { return r.directors }
func (r *Repositories) Genres() catalog.GenreRepository       { return r.genres }
func (r *Repositories) Countries() catalog.CountryRepository  { return r.countries }
func (r *Repositories) Movies() catalog.MovieRepository       { return r.movies }
func (r *Repositories) Posters() catalog.PosterRepository     { return r.posters }

// WithTransaction executes fn inside a database-only transaction
func WithTransaction(ctx context.Context, db *gorm.DB, fn func(*gorm.DB) error) error {
	return db.WithContext(ctx).Transaction(fn)
}
