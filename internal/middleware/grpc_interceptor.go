package middleware

import (
	"context"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	log "warbler/pkg/logger"
	"warbler/pkg/metrics"
)

// gRPC 只用于健康检查服务，下面的拦截器挂在该服务上

// ============================================================================
// 1. 日志拦截器
// ============================================================================

// LoggingInterceptor 记录所有 RPC 请求的日志
func LoggingInterceptor() grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req interface{},
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (interface{}, error) {
		start := time.Now()

		resp, err := handler(ctx, req)

		duration := time.Since(start)
		if err != nil {
			log.Warn("gRPC 请求失败",
				zap.String("method", info.FullMethod),
				zap.Duration("duration", duration),
				zap.Error(err),
			)
		} else {
			// 探测请求频繁，使用 Debug 级别
			log.Debug("gRPC 请求成功",
				zap.String("method", info.FullMethod),
				zap.Duration("duration", duration),
			)
		}

		return resp, err
	}
}

// ============================================================================
// 2. Panic 恢复拦截器
// ============================================================================

// RecoveryInterceptor 捕获 Panic 并返回错误
func RecoveryInterceptor() grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req interface{},
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (resp interface{}, err error) {
		defer func() {
			if r := recover(); r != nil {
				log.Error("gRPC Panic 恢复",
					zap.String("method", info.FullMethod),
					zap.Any("panic", r),
				)
				err = status.Error(codes.Internal, "internal error")
			}
		}()

		return handler(ctx, req)
	}
}

// ============================================================================
// 3. 性能监控拦截器
// ============================================================================

// MetricsInterceptor 按方法和状态码记录 RPC 耗时
func MetricsInterceptor() grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req interface{},
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (interface{}, error) {
		start := time.Now()

		resp, err := handler(ctx, req)

		metrics.RPCDuration.
			WithLabelValues(info.FullMethod, status.Code(err).String()).
			Observe(time.Since(start).Seconds())

		return resp, err
	}
}

// UnaryInterceptors 健康检查服务使用的拦截器链，Recovery 放在最内层
func UnaryInterceptors() grpc.ServerOption {
	return grpc.ChainUnaryInterceptor(
		LoggingInterceptor(),
		MetricsInterceptor(),
		RecoveryInterceptor(),
	)
}
