package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/narwhalmedia/moviecatalog/internal/config"
)

func TestNew(t *testing.T) {
	log, err := New(config.ServiceConfig{Name: "catalog", Environment: "production"}, config.LoggerConfig{Level: "warn", Format: "json"})
	require.NoError(t, err)
	assert.False(t, log.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, log.Core().Enabled(zapcore.WarnLevel))
}

func TestNew_InvalidLevel(t *testing.T) {
	_, err := New(config.ServiceConfig{Name: "catalog"}, config.LoggerConfig{Level: "verbose"})
	assert.Error(t, err)
}

func TestWithRequest(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	log := WithRequest(zap.New(core), "req-1", "")
	log.Info("hello")

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "req-1", entries[0].ContextMap()["request_id"])
	_, hasTrace := entries[0].ContextMap()["trace_id"]
	assert.False(t, hasTrace)
}
