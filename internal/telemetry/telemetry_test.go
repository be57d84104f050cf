package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap/zaptest"

	"github.com/narwhalmedia/moviecatalog/internal/config"
)

func TestNewTracerProvider_Disabled(t *testing.T) {
	cfg := &config.Config{}

	tp, shutdown, err := NewTracerProvider(cfg, zaptest.NewLogger(t))
	require.NoError(t, err)
	assert.IsType(t, noop.TracerProvider{}, tp)
	assert.NoError(t, shutdown(context.Background()))
}

func TestNewTracerProvider_RequiresEndpoint(t *testing.T) {
	cfg := &config.Config{Tracing: config.TracingConfig{Enabled: true}}

	_, _, err := NewTracerProvider(cfg, zaptest.NewLogger(t))
	assert.Error(t, err)
}

func TestNewTracerProvider_Enabled(t *testing.T) {
	cfg := &config.Config{
		Service: config.ServiceConfig{Name: "catalog", Version: "test", Environment: "test"},
		Tracing: config.TracingConfig{Enabled: true, Endpoint: "127.0.0.1:4317", SamplingRate: 1},
	}

	tp, shutdown, err := NewTracerProvider(cfg, zaptest.NewLogger(t))
	require.NoError(t, err)
	assert.IsType(t, &sdktrace.TracerProvider{}, tp)
	// no spans were recorded, so nothing is exported on shutdown
	assert.NoError(t, shutdown(context.Background()))
}

func TestSampler(t *testing.T) {
	assert.Contains(t, Sampler(0.25).Description(), "TraceIDRatioBased{0.25}")
	assert.Contains(t, Sampler(0.25).Description(), "ParentBased")
}
