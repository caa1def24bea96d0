package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"warbler/config"
	"warbler/internal/repository"
	"warbler/internal/seed"
	"warbler/pkg/db"

	log "warbler/pkg/logger"
)

var (
	configPath      = flag.String("config", "config/config.yaml", "配置文件路径")
	users           = flag.Int("users", seed.DefaultUsers, "用户数量")
	messagesPerUser = flag.Int("messages", seed.DefaultMessagesPerUser, "每个用户的消息数")
	followsPerUser  = flag.Int("follows", seed.DefaultFollowsPerUser, "每个用户关注的人数")
	workers         = flag.Int("workers", seed.DefaultWorkers, "并发 worker 数量")
	password        = flag.String("password", seed.DefaultPassword, "所有测试用户的密码")
	reset           = flag.Bool("reset", false, "生成前删除并重建所有表")
)

func main() {
	flag.Parse()

	// 1. 加载配置
	cfg, err := config.Load(*configPath)
	if err != nil {
		panic("加载配置失败: " + err.Error())
	}

	// 2. 初始化日志
	if err := log.Init(&log.Config{
		Level:    cfg.Log.Level,
		Output:   cfg.Log.Output,
		FilePath: cfg.Log.FilePath,
		Format:   cfg.Log.Format,
	}); err != nil {
		panic("初始化日志失败: " + err.Error())
	}
	defer log.Sync()

	// 3. 连接数据库（不需要 Redis）
	conn, err := db.InitDB(cfg)
	if err != nil {
		log.Fatal("连接数据库失败", zap.Error(err))
	}
	defer conn.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := prepareSchema(ctx, conn, *reset); err != nil {
		log.Fatal("初始化数据表失败", zap.Error(err))
	}

	ids, err := db.NewSnowflake(cfg.Snowflake.MachineID)
	if err != nil {
		log.Fatal("创建ID生成器失败", zap.Error(err))
	}

	// 4. 生成数据
	seeder := seed.New(
		repository.NewUserRepository(conn, nil),
		repository.NewMessageRepository(conn),
		repository.NewFollowRepository(conn),
		ids,
		seed.Options{
			Users:           *users,
			MessagesPerUser: *messagesPerUser,
			FollowsPerUser:  *followsPerUser,
			Workers:         *workers,
			Password:        *password,
		},
	)

	log.Info("开始生成数据",
		zap.Int("users", *users),
		zap.Int("messages_per_user", *messagesPerUser),
		zap.Int("follows_per_user", *followsPerUser),
		zap.Int("workers", *workers),
	)
	result, err := seeder.Run(ctx)
	if err != nil {
		log.Fatal("生成数据失败", zap.Error(err))
	}

	log.Info("数据生成完成！",
		zap.Int("users", result.Users),
		zap.Int("messages", result.Messages),
		zap.Int("follows", result.Follows),
		zap.Duration("elapsed", result.Elapsed),
		zap.String("example_username", seed.Username(0)),
	)
}

func prepareSchema(ctx context.Context, conn *sqlx.DB, reset bool) error {
	if reset {
		if err := repository.DropAll(ctx, conn); err != nil {
			return err
		}
	}
	return repository.CreateAll(ctx, conn)
}
