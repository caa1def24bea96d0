package health

import (
	"context"
	"net"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	log "warbler/pkg/logger"
	"warbler/pkg/metrics"
)

// Check 单个依赖的探测函数
type Check struct {
	Name  string
	Probe func(ctx context.Context) error
}

// Server gRPC 健康检查服务
// 整体状态（服务名 ""）在所有依赖可用时为 SERVING，每个依赖也以自己的名字注册
type Server struct {
	grpcServer *grpc.Server
	health     *health.Server
	checks     []Check
	interval   time.Duration
}

// New 在 grpcServer 上注册 grpc.health.v1.Health 服务
func New(grpcServer *grpc.Server, interval time.Duration, checks ...Check) *Server {
	hs := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, hs)

	// 第一次探测前视为不可用
	hs.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
	for _, c := range checks {
		hs.SetServingStatus(c.Name, healthpb.HealthCheckResponse_NOT_SERVING)
	}

	return &Server{
		grpcServer: grpcServer,
		health:     hs,
		checks:     checks,
		interval:   interval,
	}
}

// Probe 执行一轮探测并更新状态，返回整体是否可用
func (s *Server) Probe(ctx context.Context) bool {
	healthy := true
	for _, c := range s.checks {
		status := healthpb.HealthCheckResponse_SERVING
		up := 1.0

		probeCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		err := c.Probe(probeCtx)
		cancel()

		if err != nil {
			log.Warn("依赖健康检查失败", zap.String("dependency", c.Name), zap.Error(err))
			status = healthpb.HealthCheckResponse_NOT_SERVING
			up = 0
			healthy = false
		}

		s.health.SetServingStatus(c.Name, status)
		metrics.DependencyUp.WithLabelValues(c.Name).Set(up)
	}

	if healthy {
		s.health.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	} else {
		s.health.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
	}
	return healthy
}

// Run 周期性探测直到 ctx 取消
func (s *Server) Run(ctx context.Context) {
	s.Probe(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Probe(ctx)
		}
	}
}

// Serve 阻塞处理 gRPC 请求
func (s *Server) Serve(lis net.Listener) error {
	log.Info("健康检查服务启动", zap.String("addr", lis.Addr().String()))
	return s.grpcServer.Serve(lis)
}

// Stop 标记所有服务为 NOT_SERVING 并优雅停止
func (s *Server) Stop() {
	s.health.Shutdown()
	s.grpcServer.GracefulStop()
}

// Health 暴露底层 health.Server，便于直接调用 Check
func (s *Server) Health() healthpb.HealthServer {
	return s.health
}
