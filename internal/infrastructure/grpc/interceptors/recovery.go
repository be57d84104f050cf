package interceptors

import (
	"context"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// errHandlerPanic is what a client sees when a handler panics. The panic
// value only goes to the log.
var errHandlerPanic = status.Error(codes.Internal, "internal server error")

type panicGuard struct {
	logger *zap.Logger
}

func newPanicGuard(logger *zap.Logger) panicGuard {
	return panicGuard{logger: logger.Named("grpc.recovery")}
}

// catch has to be the deferred call itself for recover to see the panic.
func (g panicGuard) catch(ctx context.Context, method string, err *error) {
	value := recover()
	if value == nil {
		return
	}
	g.logger.Error("handler panicked",
		zap.String("method", method),
		zap.String("request_id", RequestID(ctx)),
		zap.Any("value", value),
		zap.Stack("stack"),
	)
	*err = errHandlerPanic
}

// UnaryRecoveryInterceptor answers codes.Internal when a unary handler panics
func UnaryRecoveryInterceptor(logger *zap.Logger) grpc.UnaryServerInterceptor {
	guard := newPanicGuard(logger)
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp interface{}, err error) {
		defer guard.catch(ctx, info.FullMethod, &err)
		return handler(ctx, req)
	}
}

// StreamRecoveryInterceptor answers codes.Internal when a stream handler panics
func StreamRecoveryInterceptor(logger *zap.Logger) grpc.StreamServerInterceptor {
	guard := newPanicGuard(logger)
	return func(srv interface{}, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) (err error) {
		defer guard.catch(ss.Context(), info.FullMethod, &err)
		return handler(srv, ss)
	}
}
