package telemetry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"

	"github.com/narwhalmedia/moviecatalog/internal/config"
)

// ShutdownFunc flushes and stops the tracer provider
type ShutdownFunc func(context.Context) error

// NewTracerProvider builds the process tracer provider and installs it as
// the global one. With tracing disabled it returns the no-op provider.
func NewTracerProvider(cfg *config.Config, logger *zap.Logger) (trace.TracerProvider, ShutdownFunc, error) {
	if !cfg.Tracing.Enabled {
		logger.Info("tracing disabled")
		return noop.NewTracerProvider(), func(context.Context) error { return nil }, nil
	}
	if cfg.Tracing.Endpoint == "" {
		return nil, nil, errors.New("tracing.endpoint is required when tracing is enabled")
	}

	ctx := context.Background()
	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(cfg.Service.Name),
			semconv.ServiceVersion(cfg.Service.Version),
			semconv.DeploymentEnvironment(cfg.Service.Environment),
		),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("create otel resource: %w", err)
	}

	exporter, err := otlptracegrpc.New(ctx,
		otlptracegrpc.WithInsecure(),
		otlptracegrpc.WithEndpoint(cfg.Tracing.Endpoint),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("create otel trace exporter: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(Sampler(cfg.Tracing.SamplingRate)),
		sdktrace.WithResource(res),
		sdktrace.WithSpanProcessor(sdktrace.NewBatchSpanProcessor(exporter)),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))

	logger.Info("tracing enabled",
		zap.String("endpoint", cfg.Tracing.Endpoint),
		zap.Float64("sampling_rate", cfg.Tracing.SamplingRate),
	)

	shutdown := func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		return tp.Shutdown(ctx)
	}
	return tp, shutdown, nil
}

// Sampler honours the parent's decision and samples root spans at rate
func Sampler(rate float64) sdktrace.Sampler {
	return sdktrace.ParentBased(sdktrace.TraceIDRatioBased(rate))
}
