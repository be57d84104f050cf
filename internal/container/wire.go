//go:build wireinject
// +build wireinject

package container

import (
	"github.com/google/wire"
	"go.uber.org/zap"

	"github.com/narwhalmedia/moviecatalog/internal/config"
	gormrepo "github.com/narwhalmedia/moviecatalog/internal/infrastructure/persistence/gorm"
)

// InitializeCatalog wires the catalog service with all dependencies
func InitializeCatalog(cfg *config.Config, logger *zap.Logger) (*CatalogContainer, func(), error) {
	wire.Build(
		PersistenceSet,
		ProvideTracerProvider,
		ProvidePublisher,
		CatalogSet,
		wire.Struct(new(CatalogContainer), "*"),
	)

	return nil, nil, nil
}

// InitializeMigrator wires only what cmd/migrate needs
func InitializeMigrator(cfg *config.Config, logger *zap.Logger) (*gormrepo.Migrator, func(), error) {
	wire.Build(
		gormrepo.NewDB,
		ProvideMigrator,
	)

	return nil, nil, nil
}
