package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgconfig "github.com/narwhalmedia/moviecatalog/pkg/config"
)

func TestDefaultIsValid(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestLoad_FileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	yaml := `
database:
  driver: sqlite
  path: /tmp/catalog.db
catalog:
  seed_genres: [Action, Adventure, Sci-Fi]
  seed_countries: [USA]
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))
	t.Setenv("CATALOG_STORAGE_BACKEND", "s3")
	t.Setenv("CATALOG_STORAGE_S3_BUCKET", "posters")
	t.Setenv("CATALOG_EVENTS_BROKER", "kafka")

	cfg, err := Load("catalog", pkgconfig.WithPaths(path))
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "file:/tmp/catalog.db?_foreign_keys=on&_busy_timeout=5000&_txlock=immediate", cfg.Database.DSN())
	assert.Equal(t, []string{"Action", "Adventure", "Sci-Fi"}, cfg.Catalog.SeedGenres)
	assert.Equal(t, "s3", cfg.Storage.Backend)
	assert.Equal(t, "posters", cfg.Storage.S3.Bucket)
	assert.Equal(t, "kafka", cfg.Events.Broker)
	assert.Equal(t, 8080, cfg.Server.HTTPPort)
}

func TestLoad_EnvLists(t *testing.T) {
	t.Setenv("CATALOG_CATALOG_SEED__GENRES", "Action,Adventure,Sci-Fi")
	t.Setenv("CATALOG_EVENTS_KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("CATALOG_SERVER_SHUTDOWN__TIMEOUT", "45s")

	cfg, err := Load("catalog", pkgconfig.WithPaths())
	require.NoError(t, err)

	assert.Equal(t, []string{"Action", "Adventure", "Sci-Fi"}, cfg.Catalog.SeedGenres)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Events.Kafka.Brokers)
	assert.Equal(t, 45*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, Default().Catalog.SeedCountries, cfg.Catalog.SeedCountries, "unset lists keep defaults")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{"bad driver", func(c *Config) { c.Database.Driver = "mysql" }, "unsupported database driver"},
		{"missing bucket", func(c *Config) { c.Storage.Backend = "s3" }, "s3 bucket is required"},
		{"bad broker", func(c *Config) { c.Events.Broker = "redis" }, "unsupported event broker"},
		{"bad port", func(c *Config) { c.Server.HTTPPort = 0 }, "invalid http port"},
		{"no attempts", func(c *Config) { c.Catalog.RegisterAttempts = 0 }, "register attempts"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestPostgresDSN(t *testing.T) {
	assert.Equal(t,
		"host=localhost port=5432 user=catalog password=catalog dbname=catalog sslmode=disable",
		Default().Database.DSN())
}
