package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/narwhalmedia/moviecatalog/internal/config"
)

// New creates the service logger.
func New(service config.ServiceConfig, cfg config.LoggerConfig) (*zap.Logger, error) {
	var zc zap.Config
	if service.Environment == "production" || service.Environment == "prod" {
		zc = zap.NewProductionConfig()
	} else {
		zc = zap.NewDevelopmentConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	zc.Level = zap.NewAtomicLevelAt(level)

	if cfg.Format == "json" {
		zc.Encoding = "json"
	} else {
		zc.Encoding = "console"
	}

	zc.InitialFields = map[string]interface{}{
		"service": service.Name,
		"env":     service.Environment,
		"version": service.Version,
	}
	zc.OutputPaths = []string{"stdout"}
	zc.ErrorOutputPaths = []string{"stderr"}
	zc.EncoderConfig.TimeKey = "timestamp"
	zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	logger, err := zc.Build()
	if err != nil {
		return nil, err
	}

	if hostname, err := os.Hostname(); err == nil {
		logger = logger.With(zap.String("hostname", hostname))
	}
	return logger, nil
}

// WithRequest adds request correlation fields to logger.
func WithRequest(logger *zap.Logger, requestID, traceID string) *zap.Logger {
	fields := make([]zap.Field, 0, 2)
	if requestID != "" {
		fields = append(fields, zap.String("request_id", requestID))
	}
	if traceID != "" {
		fields = append(fields, zap.String("trace_id", traceID))
	}
	if len(fields) == 0 {
		return logger
	}
	return logger.With(fields...)
}
