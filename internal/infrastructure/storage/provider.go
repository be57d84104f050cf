package storage

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/narwhalmedia/moviecatalog/internal/config"
)

// NewBackend builds the poster backend selected by storage.backend
func NewBackend(cfg *config.Config, logger *zap.Logger) (Backend, error) {
	switch cfg.Storage.Backend {
	case "local":
		return NewLocalBackend(cfg.Storage.Local.Root, logger)
	case "s3":
		return NewS3Backend(context.Background(), cfg.Storage.S3, logger)
	default:
		return nil, fmt.Errorf("unsupported storage backend %q", cfg.Storage.Backend)
	}
}
