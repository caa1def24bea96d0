package main

import (
	"context"
	"errors"
	"flag"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"warbler/config"
	"warbler/internal/repository"
	"warbler/pkg/container"
	"warbler/pkg/health"

	log "warbler/pkg/logger"
)

var (
	configPath = flag.String("config", "config/config.yaml", "配置文件路径")
	initDB     = flag.Bool("initdb", false, "建表后退出")
	resetDB    = flag.Bool("resetdb", false, "删除并重建所有表后退出")
)

func main() {
	// 解析命令行参数
	flag.Parse()

	// 1. 加载配置
	cfg, err := config.Load(*configPath)
	if err != nil {
		panic("加载配置失败: " + err.Error())
	}

	// 2. 初始化日志
	logConfig := &log.Config{
		Level:    cfg.Log.Level,
		Output:   cfg.Log.Output,
		FilePath: cfg.Log.FilePath,
		Format:   cfg.Log.Format,
	}
	if err := log.Init(logConfig); err != nil {
		panic("初始化日志失败: " + err.Error())
	}
	defer log.Sync()

	log.Info("Warbler 启动中...")
	log.Info("配置加载成功", zap.String("config_path", *configPath))

	// 3. 初始化依赖注入容器
	if err := container.Init(cfg); err != nil {
		log.Fatal("初始化容器失败", zap.Error(err))
	}
	log.Info("依赖注入容器初始化成功")

	// 4. 建表 / 重建表
	if *initDB || *resetDB {
		if err := container.Invoke(func(db *sqlx.DB) error {
			return migrate(db, *resetDB)
		}); err != nil {
			log.Fatal("初始化数据表失败", zap.Error(err))
		}
		return
	}

	// 5. 从容器获取 HTTP 引擎和健康检查服务
	var (
		engine       *gin.Engine
		healthServer *health.Server
	)
	if err := container.Invoke(func(e *gin.Engine, hs *health.Server) {
		engine = e
		healthServer = hs
	}); err != nil {
		log.Fatal("获取服务依赖失败", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 6. 启动健康检查（gRPC）
	healthAddr := cfg.Health.GetAddr()
	lis, err := net.Listen("tcp", healthAddr)
	if err != nil {
		log.Fatal("监听失败", zap.String("addr", healthAddr), zap.Error(err))
	}
	go healthServer.Run(ctx)
	go func() {
		if err := healthServer.Serve(lis); err != nil {
			log.Error("健康检查服务异常退出", zap.Error(err))
		}
	}()

	// 7. 启动 HTTP Server（在 goroutine 中）
	srv := &http.Server{
		Addr:              cfg.Server.GetHTTPAddr(),
		Handler:           engine,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		log.Info("HTTP Server 启动成功",
			zap.String("addr", srv.Addr),
			zap.String("mode", cfg.Server.Mode),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("启动 HTTP Server 失败", zap.Error(err))
		}
	}()

	// 8. 等待退出信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("收到退出信号，开始优雅关闭...")

	// 9. 优雅关闭
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP Server 关闭失败", zap.Error(err))
	}
	cancel()
	healthServer.Stop()

	if err := container.Invoke(func(db *sqlx.DB) error { return db.Close() }); err != nil {
		log.Warn("关闭数据库连接失败", zap.Error(err))
	}
	log.Info("Warbler 已关闭")
}

func migrate(db *sqlx.DB, reset bool) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if reset {
		if err := repository.DropAll(ctx, db); err != nil {
			return err
		}
		log.Info("数据表已删除")
	}
	if err := repository.CreateAll(ctx, db); err != nil {
		return err
	}
	log.Info("数据表已创建")
	return nil
}
