package gorm_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/narwhalmedia/moviecatalog/internal/domain/catalog"
	gormpersistence "github.com/narwhalmedia/moviecatalog/internal/infrastructure/persistence/gorm"
)

type RepositoryTestSuite struct {
	suite.Suite
	db      *gorm.DB
	ctx     context.Context
	factory *catalog.Factory
	usa     *catalog.CountryOfProduction
	action  *catalog.Genre
}

func (suite *RepositoryTestSuite) SetupTest() {
	suite.ctx = context.Background()
	suite.db = gormpersistence.NewTestDB(suite.T())
	suite.factory = catalog.NewFactory()
	gormpersistence.SeedTestVocabulary(suite.T(), suite.db, gormpersistence.Vocabulary{
		Genres:    []string{"Action", "Drama"},
		Countries: []string{"USA", "France"},
	})

	var err error
	suite.usa, err = gormpersistence.NewCountryRepository(suite.db).FindByName(suite.ctx, "USA")
	suite.Require().NoError(err)
	suite.action, err = gormpersistence.NewGenreRepository(suite.db).FindByName(suite.ctx, "Action")
	suite.Require().NoError(err)
}

func (suite *RepositoryTestSuite) newMovie(title string, actors ...*catalog.Actor) *catalog.Movie {
	m, err := suite.factory.NewMovie(catalog.MovieParams{
		Title:         title,
		PublishedDate: time.Date(2012, 5, 4, 15, 0, 0, 0, time.UTC),
		Country:       suite.usa,
		Actors:        actors,
		Genres:        []*catalog.Genre{suite.action},
	})
	suite.Require().NoError(err)
	return m
}

func (suite *RepositoryTestSuite) TestActor_AddAndFindByName() {
	repo := gormpersistence.NewActorRepository(suite.db)
	actor, _ := suite.factory.NewActor("Robert Downey Jr.")

	suite.Require().NoError(repo.Add(suite.ctx, actor))

	got, err := repo.FindByName(suite.ctx, "  Robert Downey Jr. ")
	suite.Require().NoError(err)
	suite.Require().NotNil(got)
	suite.True(got.SameAs(actor))
	suite.Equal("Robert Downey Jr.", got.Name())

	missing, err := repo.FindByName(suite.ctx, "Nobody")
	suite.NoError(err)
	suite.Nil(missing)
}

func (suite *RepositoryTestSuite) TestActor_DuplicateNameIsStorageConflict() {
	repo := gormpersistence.NewActorRepository(suite.db)
	a1, _ := suite.factory.NewActor("Chris Evans")
	a2, _ := suite.factory.NewActor("Chris Evans")

	suite.Require().NoError(repo.Add(suite.ctx, a1))
	err := repo.Add(suite.ctx, a2)
	suite.ErrorIs(err, catalog.ErrStorageConflict)
}

func (suite *RepositoryTestSuite) TestGenre_FindAllOrderedByName() {
	genres, err := gormpersistence.NewGenreRepository(suite.db).FindAll(suite.ctx)
	suite.Require().NoError(err)
	suite.Equal([]string{"Action", "Drama"}, catalog.Names(genres))
}

func (suite *RepositoryTestSuite) TestMovie_AddAndFindByTitleAndDate() {
	actors := gormpersistence.NewActorRepository(suite.db)
	rdj, _ := suite.factory.NewActor("Robert Downey Jr.")
	evans, _ := suite.factory.NewActor("Chris Evans")
	suite.Require().NoError(actors.Add(suite.ctx, rdj))
	suite.Require().NoError(actors.Add(suite.ctx, evans))

	repo := gormpersistence.NewMovieRepository(suite.db)
	movie := suite.newMovie("Avengers", evans, rdj)
	suite.Require().NoError(repo.Add(suite.ctx, movie))

	got, err := repo.FindByTitleAndDate(suite.ctx, "Avengers", time.Date(2012, 5, 4, 0, 0, 0, 0, time.UTC))
	suite.Require().NoError(err)
	suite.Require().NotNil(got)
	suite.True(got.SameAs(movie))
	suite.Equal([]string{"Chris Evans", "Robert Downey Jr."}, catalog.Names(got.Actors()), "credit order kept")
	suite.Equal("USA", got.Country().Name())
	suite.Equal([]string{"Action"}, catalog.Names(got.Genres()))
	suite.Empty(got.Directors())
	suite.Nil(got.Poster())

	none, err := repo.FindByTitleAndDate(suite.ctx, "Avengers", time.Date(2012, 5, 5, 0, 0, 0, 0, time.UTC))
	suite.NoError(err)
	suite.Nil(none)
}

func (suite *RepositoryTestSuite) TestMovie_DuplicateListingIsStorageConflict() {
	repo := gormpersistence.NewMovieRepository(suite.db)
	suite.Require().NoError(repo.Add(suite.ctx, suite.newMovie("Avengers")))

	err := repo.Add(suite.ctx, suite.newMovie("Avengers"))
	suite.ErrorIs(err, catalog.ErrStorageConflict)
	suite.EqualValues(1, gormpersistence.CountRows[gormpersistence.MovieModel](suite.T(), suite.db))
}

func (suite *RepositoryTestSuite) TestMovie_PosterIDRoundTrip() {
	poster, _ := suite.factory.NewPoster("cover.png", []byte("png"))
	m, err := suite.factory.NewMovie(catalog.MovieParams{
		Title:         "Amelie",
		PublishedDate: time.Date(2001, 4, 25, 0, 0, 0, 0, time.UTC),
		Country:       suite.usa,
		Poster:        poster,
	})
	suite.Require().NoError(err)

	repo := gormpersistence.NewMovieRepository(suite.db)
	suite.Require().NoError(repo.Add(suite.ctx, m))

	got, err := repo.FindByTitleAndDate(suite.ctx, "Amelie", m.PublishedDate())
	suite.Require().NoError(err)
	suite.Require().NotNil(got.Poster())
	suite.Equal(poster.ID(), got.Poster().ID())
	suite.False(got.Poster().Loaded())
}

func (suite *RepositoryTestSuite) TestFindRelatedMovies() {
	actors := gormpersistence.NewActorRepository(suite.db)
	rdj, _ := suite.factory.NewActor("Robert Downey Jr.")
	suite.Require().NoError(actors.Add(suite.ctx, rdj))

	movies := gormpersistence.NewMovieRepository(suite.db)
	suite.Require().NoError(movies.Add(suite.ctx, suite.newMovie("Avengers", rdj)))
	suite.Require().NoError(movies.Add(suite.ctx, suite.newMovie("Iron Man", rdj)))
	suite.Require().NoError(movies.Add(suite.ctx, suite.newMovie("Thor")))

	related, found, err := actors.FindRelatedMovies(suite.ctx, "Robert Downey Jr.")
	suite.Require().NoError(err)
	suite.True(found)
	suite.Len(related, 2)
	suite.Equal("Avengers", related[0].Title())
	suite.Equal("Iron Man", related[1].Title())

	byCountry, found, err := gormpersistence.NewCountryRepository(suite.db).FindRelatedMovies(suite.ctx, "USA")
	suite.Require().NoError(err)
	suite.True(found)
	suite.Len(byCountry, 3)

	byGenre, found, err := gormpersistence.NewGenreRepository(suite.db).FindRelatedMovies(suite.ctx, "Drama")
	suite.Require().NoError(err)
	suite.True(found)
	suite.Empty(byGenre)

	_, found, err = actors.FindRelatedMovies(suite.ctx, "Nobody")
	suite.NoError(err)
	suite.False(found)
}

func (suite *RepositoryTestSuite) TestFindRelatedMovies_InsideTransaction() {
	tx := suite.db.Begin()
	suite.Require().NoError(tx.Error)
	defer tx.Rollback()

	director, _ := suite.factory.NewDirector("Jon Favreau")
	directors := gormpersistence.NewDirectorRepository(tx)
	suite.Require().NoError(directors.Add(suite.ctx, director))
	movie, err := suite.factory.NewMovie(catalog.MovieParams{
		Title:         "Iron Man",
		PublishedDate: time.Date(2008, 4, 14, 0, 0, 0, 0, time.UTC),
		Country:       suite.usa,
		Directors:     []*catalog.Director{director},
		Genres:        []*catalog.Genre{suite.action},
	})
	suite.Require().NoError(err)
	suite.Require().NoError(gormpersistence.NewMovieRepository(tx).Add(suite.ctx, movie))

	related, found, err := directors.FindRelatedMovies(suite.ctx, "Jon Favreau")
	suite.Require().NoError(err)
	suite.True(found)
	suite.Require().Len(related, 1)
	suite.Equal("Iron Man", related[0].Title())
}

func (suite *RepositoryTestSuite) TestFindRelatedMovies_CancelledContext() {
	ctx, cancel := context.WithCancel(suite.ctx)
	cancel()

	_, _, err := gormpersistence.NewGenreRepository(suite.db).FindRelatedMovies(ctx, "Drama")
	suite.ErrorIs(err, context.Canceled)
}

func TestRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(RepositoryTestSuite))
}

func TestSeedVocabulary_Idempotent(t *testing.T) {
	db := gormpersistence.NewTestDB(t)
	vocab := gormpersistence.Vocabulary{Genres: []string{"Action", " Action ", "Drama"}}

	require.NoError(t, gormpersistence.SeedVocabulary(db, vocab))
	require.NoError(t, gormpersistence.SeedVocabulary(db, gormpersistence.Vocabulary{Genres: []string{"Drama", "Sci-Fi"}}))

	genres, err := gormpersistence.NewGenreRepository(db).FindAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Action", "Drama", "Sci-Fi"}, catalog.Names(genres))
}

func TestWithTransaction_RollsBackOnError(t *testing.T) {
	db := gormpersistence.NewTestDB(t)
	boom := errors.New("boom")

	err := gormpersistence.WithTransaction(context.Background(), db, func(tx *gorm.DB) error {
		a, _ := catalog.NewFactory().NewActor("Temp")
		require.NoError(t, gormpersistence.NewActorRepository(tx).Add(context.Background(), a))
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Zero(t, gormpersistence.CountRows[gormpersistence.ActorModel](t, db))
}
