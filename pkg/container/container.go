package container

import (
	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"go.uber.org/dig"
	"google.golang.org/grpc"

	"warbler/config"
	"warbler/internal/handler"
	"warbler/internal/middleware"
	"warbler/internal/repository"
	"warbler/internal/router"
	"warbler/internal/service"
	"warbler/pkg/db"
	"warbler/pkg/health"
	"warbler/pkg/redis"
	"warbler/pkg/websession"
)

// Container 全局依赖注入容器
var Container *dig.Container

// Init 初始化依赖注入容器
func Init(cfg *config.Config) error {
	c, err := New(cfg)
	if err != nil {
		return err
	}
	Container = c
	return nil
}

// New 创建并注册所有依赖，构造函数在第一次 Invoke 时才执行
func New(cfg *config.Config, opts ...dig.Option) (*dig.Container, error) {
	c := dig.New(opts...)

	providers := []interface{}{
		// 配置
		func() *config.Config { return cfg },

		// 基础设施
		db.InitDB,
		redis.InitRedis,
		redis.NewManager,
		func(cfg *config.Config) (db.IDGenerator, error) {
			return db.NewSnowflake(cfg.Snowflake.MachineID)
		},
		func(cfg *config.Config) *websession.Store {
			return websession.New(&cfg.Session)
		},

		// Repository
		func(conn *sqlx.DB, rm redis.Manager) repository.UserRepository {
			return repository.NewUserRepository(conn, rm.GetUserCache())
		},
		repository.NewMessageRepository,
		repository.NewFollowRepository,

		// Service
		service.NewUserService,
		service.NewFollowService,
		service.NewMessageService,

		// Handler
		handler.NewHomeHandler,
		handler.NewAuthHandler,
		handler.NewUserHandler,
		handler.NewMessageHandler,
		newHandlers,

		// HTTP
		newEngine,

		// gRPC 健康检查
		func() *grpc.Server {
			return grpc.NewServer(middleware.UnaryInterceptors())
		},
		newHealthServer,
	}

	for _, p := range providers {
		if err := c.Provide(p); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Invoke 调用函数，自动注入依赖
func Invoke(function interface{}) error {
	return Container.Invoke(function)
}

func newHandlers(
	home *handler.HomeHandler,
	auth *handler.AuthHandler,
	user *handler.UserHandler,
	message *handler.MessageHandler,
) *router.Handlers {
	return &router.Handlers{Home: home, Auth: auth, User: user, Message: message}
}

func newEngine(cfg *config.Config, store *websession.Store, users service.UserService, h *router.Handlers) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)
	return router.SetupRouter(cfg.Server.AllowedOrigins, store, users, h)
}

func newHealthServer(cfg *config.Config, grpcServer *grpc.Server, conn *sqlx.DB, rc redis.Client) *health.Server {
	return health.New(grpcServer, cfg.Health.GetInterval(),
		health.Check{Name: "database", Probe: conn.PingContext},
		health.Check{Name: "redis", Probe: rc.Ping},
	)
}
