package container

import (
	"database/sql"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/narwhalmedia/moviecatalog/internal/config"
	"github.com/narwhalmedia/moviecatalog/internal/infrastructure/rest"
)

// CatalogContainer holds all dependencies for the catalog service
type CatalogContainer struct {
	Config         *config.Config
	Logger         *zap.Logger
	SQLDB          *sql.DB
	TracerProvider trace.TracerProvider
	Handler        *rest.Handler
}
