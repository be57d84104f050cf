package interceptors

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

var healthInfo = &grpc.UnaryServerInfo{FullMethod: "/grpc.health.v1.Health/Check"}

type fakeStream struct {
	grpc.ServerStream
	ctx context.Context
}

func (s *fakeStream) Context() context.Context { return s.ctx }

func TestUnaryLoggingInterceptor_PropagatesRequestID(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	interceptor := UnaryLoggingInterceptor(zap.New(core))

	ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs(RequestIDHeader, "req-42"))
	var seen string
	resp, err := interceptor(ctx, "ping", healthInfo, func(ctx context.Context, req interface{}) (interface{}, error) {
		seen = RequestID(ctx)
		return "pong", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "pong", resp)
	assert.Equal(t, "req-42", seen)

	entries := logs.FilterMessage("grpc request").All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
	fields := entries[0].ContextMap()
	assert.Equal(t, "req-42", fields["request_id"])
	assert.Equal(t, "OK", fields["code"])
	assert.Equal(t, healthInfo.FullMethod, fields["method"])
}

func TestUnaryLoggingInterceptor_ErrorLevels(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	interceptor := UnaryLoggingInterceptor(zap.New(core))

	_, _ = interceptor(context.Background(), nil, healthInfo, func(ctx context.Context, req interface{}) (interface{}, error) {
		assert.NotEmpty(t, RequestID(ctx), "generated when absent")
		return nil, status.Error(codes.NotFound, "unknown service")
	})
	_, _ = interceptor(context.Background(), nil, healthInfo, func(context.Context, interface{}) (interface{}, error) {
		return nil, errors.New("boom")
	})

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
	assert.Equal(t, "NotFound", entries[0].ContextMap()["code"])
	assert.Equal(t, zapcore.ErrorLevel, entries[1].Level)
	assert.Equal(t, "Unknown", entries[1].ContextMap()["code"])
}

func TestStreamLoggingInterceptor(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	interceptor := StreamLoggingInterceptor(zap.New(core))
	ss := &fakeStream{ctx: metadata.NewIncomingContext(context.Background(), metadata.Pairs(RequestIDHeader, "req-7"))}
	info := &grpc.StreamServerInfo{FullMethod: "/grpc.health.v1.Health/Watch", IsServerStream: true}

	err := interceptor(nil, ss, info, func(srv interface{}, stream grpc.ServerStream) error {
		assert.Equal(t, "req-7", RequestID(stream.Context()))
		return nil
	})

	require.NoError(t, err)
	entries := logs.FilterMessage("grpc stream").All()
	require.Len(t, entries, 1)
	assert.Equal(t, true, entries[0].ContextMap()["server_stream"])
}

func TestUnaryRecoveryInterceptor(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	interceptor := UnaryRecoveryInterceptor(zap.New(core))

	resp, err := interceptor(context.Background(), nil, healthInfo, func(context.Context, interface{}) (interface{}, error) {
		panic("nil map")
	})

	assert.Nil(t, resp)
	assert.Equal(t, codes.Internal, status.Code(err))
	assert.NotContains(t, err.Error(), "nil map")
	entries := logs.FilterMessage("handler panicked").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "grpc.recovery", entries[0].LoggerName)
	assert.Equal(t, "nil map", entries[0].ContextMap()["value"])
	assert.NotEmpty(t, entries[0].ContextMap()["stack"])
}

func TestStreamRecoveryInterceptor(t *testing.T) {
	interceptor := StreamRecoveryInterceptor(zap.NewNop())
	info := &grpc.StreamServerInfo{FullMethod: "/grpc.health.v1.Health/Watch"}

	err := interceptor(nil, &fakeStream{ctx: context.Background()}, info, func(interface{}, grpc.ServerStream) error {
		panic(errors.New("closed channel"))
	})

	assert.Equal(t, codes.Internal, status.Code(err))
}

func TestRecoveryInterceptor_PassesThroughWithoutPanic(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	interceptor := UnaryRecoveryInterceptor(zap.New(core))
	failure := status.Error(codes.NotFound, "no such service")

	resp, err := interceptor(context.Background(), nil, healthInfo, func(context.Context, interface{}) (interface{}, error) {
		return "ok", failure
	})

	assert.Equal(t, "ok", resp)
	assert.Equal(t, failure, err)
	assert.Zero(t, logs.Len())
}
