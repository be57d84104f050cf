package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/narwhalmedia/moviecatalog/internal/config"
	"github.com/narwhalmedia/moviecatalog/internal/container"
	"github.com/narwhalmedia/moviecatalog/internal/logger"
)

func main() {
	dryRun := flag.Bool("dry-run", false, "Show pending migrations without applying them")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load("catalog")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	// the migrator below owns the run
	cfg.Database.AutoMigrate = false

	log, err := logger.New(cfg.Service, cfg.Logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	migrator, cleanup, err := container.InitializeMigrator(cfg, log)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer cleanup()

	ctx := context.Background()
	pending, err := migrator.Pending(ctx)
	if err != nil {
		log.Fatal("failed to read migration status", zap.Error(err))
	}
	if len(pending) == 0 {
		log.Info("schema is up to date")
	}
	for _, m := range pending {
		log.Info("pending migration", zap.String("version", m.Version), zap.String("name", m.Name))
	}
	if *dryRun {
		return
	}

	if err := migrator.Migrate(ctx); err != nil {
		log.Fatal("failed to run migrations", zap.Error(err))
	}
	log.Info("migrations completed", zap.Int("applied", len(pending)))
}
