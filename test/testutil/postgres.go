//go:build integration

package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/narwhalmedia/moviecatalog/internal/config"
	gormpersistence "github.com/narwhalmedia/moviecatalog/internal/infrastructure/persistence/gorm"
)

const postgresImage = "postgres:16-alpine"

// CatalogDatabase is a throwaway postgres catalog database
type CatalogDatabase struct {
	Config config.DatabaseConfig
	DB     *gorm.DB
}

// StartPostgres runs postgres in a container and opens it through
// gormpersistence.NewDB with the postgres driver settings the service uses.
// The schema is left empty; callers run their own Migrator.
func StartPostgres(t testing.TB, logger *zap.Logger) *CatalogDatabase {
	t.Helper()
	ctx := context.Background()

	ctr, err := tcpostgres.Run(ctx, postgresImage,
		tcpostgres.WithDatabase("movies"),
		tcpostgres.WithUsername("catalog"),
		tcpostgres.WithPassword("catalog"),
		tcpostgres.BasicWaitStrategies(),
	)
	testcontainers.CleanupContainer(t, ctr)
	require.NoError(t, err, "start %s", postgresImage)

	host, err := ctr.Host(ctx)
	require.NoError(t, err)
	port, err := ctr.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	dbCfg := config.DatabaseConfig{
		Driver:       "postgres",
		Host:         host,
		Port:         port.Int(),
		User:         "catalog",
		Password:     "catalog",
		Name:         "movies",
		SSLMode:      "disable",
		MaxOpenConns: 8,
		MaxIdleConns: 2,
		MaxLifetime:  time.Minute,
	}
	db, closeDB, err := gormpersistence.NewDB(&config.Config{Database: dbCfg}, logger)
	require.NoError(t, err)
	t.Cleanup(closeDB)

	return &CatalogDatabase{Config: dbCfg, DB: db}
}
