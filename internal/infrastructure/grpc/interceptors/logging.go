package interceptors

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// RequestIDHeader is the metadata key carrying the caller's request id
const RequestIDHeader = "x-request-id"

type requestIDKey struct{}

// RequestID returns the request id attached by the logging interceptors
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// UnaryLoggingInterceptor logs unary RPC calls
func UnaryLoggingInterceptor(logger *zap.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		start := time.Now()
		ctx, requestID := withRequestID(ctx)

		resp, err := handler(ctx, req)

		log(logger, "grpc request", err,
			zap.String("request_id", requestID),
			zap.String("method", info.FullMethod),
			zap.Duration("duration", time.Since(start)),
		)
		return resp, err
	}
}

// StreamLoggingInterceptor logs streaming RPC calls
func StreamLoggingInterceptor(logger *zap.Logger) grpc.StreamServerInterceptor {
	return func(srv interface{}, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		start := time.Now()
		ctx, requestID := withRequestID(ss.Context())

		err := handler(srv, &contextStream{ServerStream: ss, ctx: ctx})

		log(logger, "grpc stream", err,
			zap.String("request_id", requestID),
			zap.String("method", info.FullMethod),
			zap.Duration("duration", time.Since(start)),
			zap.Bool("client_stream", info.IsClientStream),
			zap.Bool("server_stream", info.IsServerStream),
		)
		return err
	}
}

func log(logger *zap.Logger, msg string, err error, fields ...zap.Field) {
	code := status.Code(err)
	fields = append(fields, zap.String("code", code.String()))
	switch code {
	case codes.OK:
		logger.Info(msg, fields...)
	case codes.Internal, codes.Unknown, codes.DataLoss, codes.Unavailable:
		logger.Error(msg, append(fields, zap.Error(err))...)
	default:
		logger.Warn(msg, append(fields, zap.Error(err))...)
	}
}

func withRequestID(ctx context.Context) (context.Context, string) {
	requestID := ""
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if values := md.Get(RequestIDHeader); len(values) > 0 {
			requestID = values[0]
		}
	}
	if requestID == "" {
		requestID = uuid.NewString()
	}
	return context.WithValue(ctx, requestIDKey{}, requestID), requestID
}

// contextStream overrides the stream context
type contextStream struct {
	grpc.ServerStream
	ctx context.Context
}

func (s *contextStream) Context() context.Context {
	return s.ctx
}
