package container

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/wire"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"

	appcatalog "github.com/narwhalmedia/moviecatalog/internal/application/catalog"
	"github.com/narwhalmedia/moviecatalog/internal/config"
	"github.com/narwhalmedia/moviecatalog/internal/domain/catalog"
	"github.com/narwhalmedia/moviecatalog/internal/infrastructure/events"
	"github.com/narwhalmedia/moviecatalog/internal/infrastructure/events/amqp"
	"github.com/narwhalmedia/moviecatalog/internal/infrastructure/events/kafka"
	"github.com/narwhalmedia/moviecatalog/internal/infrastructure/events/nats"
	gormrepo "github.com/narwhalmedia/moviecatalog/internal/infrastructure/persistence/gorm"
	"github.com/narwhalmedia/moviecatalog/internal/infrastructure/rest"
	"github.com/narwhalmedia/moviecatalog/internal/infrastructure/storage"
	"github.com/narwhalmedia/moviecatalog/internal/telemetry"
)

// PersistenceSet provides the database, storage and unit of work
var PersistenceSet = wire.NewSet(
	gormrepo.NewDB,
	storage.NewBackend,
	gormrepo.NewUnitOfWork,
	wire.Bind(new(appcatalog.UnitOfWork), new(*gormrepo.UnitOfWork)),
	gormrepo.NewRepositories,
	wire.Bind(new(appcatalog.Repositories), new(*gormrepo.Repositories)),
	ProvideSQLDB,
)

// CatalogSet provides the use cases and their HTTP surface
var CatalogSet = wire.NewSet(
	catalog.NewFactory,
	ProvideServiceConfig,
	appcatalog.NewService,
	appcatalog.NewReadService,
	ProvideHandler,
)

// ProvideMigrator seeds from the catalog vocabulary config
func ProvideMigrator(db *gorm.DB, cfg *config.Config, logger *zap.Logger) *gormrepo.Migrator {
	return gormrepo.NewMigrator(db, logger, gormrepo.Vocabulary{
		Genres:    cfg.Catalog.SeedGenres,
		Countries: cfg.Catalog.SeedCountries,
	})
}

// ProvideSQLDB exposes the pool behind gorm for health checks
func ProvideSQLDB(db *gorm.DB) (*sql.DB, error) {
	return db.DB()
}

// ProvideServiceConfig maps catalog settings onto the use case
func ProvideServiceConfig(cfg *config.Config) appcatalog.ServiceConfig {
	return appcatalog.ServiceConfig{RegisterAttempts: cfg.Catalog.RegisterAttempts}
}

// ProvideTracerProvider adapts telemetry shutdown to a wire cleanup
func ProvideTracerProvider(cfg *config.Config, logger *zap.Logger) (trace.TracerProvider, func(), error) {
	tp, shutdown, err := telemetry.NewTracerProvider(cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if err := shutdown(context.Background()); err != nil {
			logger.Error("failed to shut down tracer provider", zap.Error(err))
		}
	}
	return tp, cleanup, nil
}

// ProvidePublisher selects the event broker named by events.broker
func ProvidePublisher(cfg *config.Config, logger *zap.Logger) (catalog.EventPublisher, func(), error) {
	source := cfg.Service.Name
	switch cfg.Events.Broker {
	case "", "none":
		return events.NewNoopPublisher(logger), func() {}, nil
	case "nats":
		client, cleanup, err := nats.NewClient(cfg.Events.NATS, logger)
		if err != nil {
			return nil, nil, err
		}
		return nats.NewPublisher(client, source, logger), cleanup, nil
	case "kafka":
		p, err := kafka.NewPublisher(cfg.Events.Kafka, source, logger)
		if err != nil {
			return nil, nil, err
		}
		return p, closer(p.Close, "kafka", logger), nil
	case "amqp":
		p, err := amqp.NewPublisher(cfg.Events.AMQP, source, logger)
		if err != nil {
			return nil, nil, err
		}
		return p, closer(p.Close, "amqp", logger), nil
	default:
		return nil, nil, fmt.Errorf("unsupported events broker %q", cfg.Events.Broker)
	}
}

func closer(closeFn func() error, broker string, logger *zap.Logger) func() {
	return func() {
		if err := closeFn(); err != nil {
			logger.Error("failed to close event publisher", zap.String("broker", broker), zap.Error(err))
		}
	}
}

// ProvideHandler builds the HTTP handler
func ProvideHandler(
	service *appcatalog.Service,
	reader *appcatalog.ReadService,
	db *sql.DB,
	tp trace.TracerProvider,
	cfg *config.Config,
	logger *zap.Logger,
) *rest.Handler {
	return rest.NewHandler(service, reader, db, tp, cfg.Service.Name, logger)
}
