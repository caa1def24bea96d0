package db

import (
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"           // PostgreSQL 驱动
	_ "github.com/mattn/go-sqlite3" // SQLite 驱动（本地开发与测试）
	"go.uber.org/zap"

	"warbler/config"
	log "warbler/pkg/logger"
)

// DriverName 将配置中的驱动名归一为 database/sql 注册的驱动名
func DriverName(driver string) (string, error) {
	switch driver {
	case "mysql":
		return "mysql", nil
	case "postgres", "pgsql", "postgresql":
		return "postgres", nil
	case "sqlite3", "sqlite":
		return "sqlite3", nil
	default:
		return "", fmt.Errorf("不支持的数据库驱动: %s", driver)
	}
}

// InitDB 初始化数据库连接（使用 sqlx）
func InitDB(cfg *config.Config) (*sqlx.DB, error) {
	log.Info("开始初始化数据库连接",
		zap.String("driver", cfg.Database.Driver),
		zap.String("host", cfg.Database.Host),
		zap.Int("port", cfg.Database.Port),
		zap.String("database", cfg.Database.Database),
	)

	driverName, err := DriverName(cfg.Database.Driver)
	if err != nil {
		log.Error("不支持的数据库驱动", zap.String("driver", cfg.Database.Driver))
		return nil, err
	}

	db, err := Open(driverName, cfg.Database.GetDSN())
	if err != nil {
		log.Error("连接数据库失败",
			zap.Error(err),
			zap.String("driver", driverName),
			zap.String("host", cfg.Database.Host),
		)
		return nil, err
	}

	if driverName == "sqlite3" {
		// SQLite 单写者，内存库每个连接各自独立
		db.SetMaxOpenConns(1)
	} else {
		log.Debug("配置数据库连接池",
			zap.Int("max_open_conns", cfg.Database.MaxOpenConns),
			zap.Int("max_idle_conns", cfg.Database.MaxIdleConns),
			zap.Int("conn_max_lifetime", cfg.Database.ConnMaxLifetime),
		)
		db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
		db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
		db.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetime) * time.Second)
	}

	log.Info("数据库连接成功",
		zap.String("driver", driverName),
		zap.String("database", cfg.Database.Database),
	)

	return db, nil
}

// Open 打开连接并 Ping，失败时关闭已打开的连接
func Open(driverName, dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("打开数据库失败: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("数据库连接测试失败: %w", err)
	}
	return db, nil
}

// OpenMemory 打开一个开启外键约束的 SQLite 内存库，供测试和 seed 演练使用
func OpenMemory() (*sqlx.DB, error) {
	db, err := Open("sqlite3", "file::memory:?_foreign_keys=on")
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	return db, nil
}
