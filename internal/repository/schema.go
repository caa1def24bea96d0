package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"warbler/internal/model"
	log "warbler/pkg/logger"
)

// dialect 各数据库的列类型
type dialect struct {
	id        string
	varchar   string
	text      string
	timestamp string
	suffix    string
}

var dialects = map[string]dialect{
	"mysql": {
		id:        "BIGINT UNSIGNED",
		varchar:   "VARCHAR(255)",
		text:      "VARCHAR(1000)",
		timestamp: "DATETIME(6)",
		suffix:    " ENGINE=InnoDB DEFAULT CHARSET=utf8mb4",
	},
	"postgres": {
		id:        "BIGINT",
		varchar:   "VARCHAR(255)",
		text:      "TEXT",
		timestamp: "TIMESTAMP",
	},
	"sqlite3": {
		id:        "INTEGER",
		varchar:   "TEXT",
		text:      "TEXT",
		timestamp: "TIMESTAMP",
	},
}

func schemaFor(driverName string) ([]string, error) {
	d, ok := dialects[driverName]
	if !ok {
		return nil, fmt.Errorf("不支持的数据库驱动: %s", driverName)
	}

	users := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS users (
	id %[1]s NOT NULL PRIMARY KEY,
	email %[2]s NOT NULL UNIQUE,
	username %[2]s NOT NULL UNIQUE,
	image_url %[2]s NOT NULL DEFAULT '%[5]s',
	header_image_url %[2]s NOT NULL DEFAULT '%[6]s',
	bio %[3]s NOT NULL,
	location %[2]s NOT NULL DEFAULT '',
	password %[2]s NOT NULL,
	created_at %[4]s NOT NULL
)%[7]s`, d.id, d.varchar, d.text, d.timestamp, model.DefaultImageURL, model.DefaultHeaderImageURL, d.suffix)

	messages := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS messages (
	id %[1]s NOT NULL PRIMARY KEY,
	text VARCHAR(%[3]d) NOT NULL,
	created_at %[2]s NOT NULL,
	user_id %[1]s NOT NULL,
	FOREIGN KEY (user_id) REFERENCES users (id) ON DELETE CASCADE
)%[4]s`, d.id, d.timestamp, model.MaxMessageLength, d.suffix)

	follows := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS follows (
	user_being_followed_id %[1]s NOT NULL,
	user_following_id %[1]s NOT NULL,
	PRIMARY KEY (user_being_followed_id, user_following_id),
	FOREIGN KEY (user_being_followed_id) REFERENCES users (id) ON DELETE CASCADE,
	FOREIGN KEY (user_following_id) REFERENCES users (id) ON DELETE CASCADE
)%[2]s`, d.id, d.suffix)

	indexes := []string{
		"CREATE INDEX idx_messages_user_created ON messages (user_id, created_at)",
		"CREATE INDEX idx_follows_following ON follows (user_following_id)",
	}

	return append([]string{users, messages, follows}, indexes...), nil
}

// CreateAll 建表（已存在时跳过）
func CreateAll(ctx context.Context, db *sqlx.DB) error {
	stmts, err := schemaFor(db.DriverName())
	if err != nil {
		return err
	}

	var exists bool
	if err := db.GetContext(ctx, &exists, tableExistsQuery(db.DriverName()), "messages"); err != nil {
		return fmt.Errorf("检查表是否存在失败: %w", err)
	}
	if exists {
		log.Info("数据表已存在，跳过建表")
		return nil
	}

	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("建表失败: %w", err)
		}
	}

	log.Info("数据表创建完成", zap.String("driver", db.DriverName()))
	return nil
}

// DropAll 删除全部数据表，按外键依赖倒序
func DropAll(ctx context.Context, db *sqlx.DB) error {
	for _, table := range []string{"follows", "messages", "users"} {
		if _, err := db.ExecContext(ctx, "DROP TABLE IF EXISTS "+table); err != nil {
			return fmt.Errorf("删除表 %s 失败: %w", table, err)
		}
	}

	log.Info("数据表已删除", zap.String("driver", db.DriverName()))
	return nil
}

func tableExistsQuery(driverName string) string {
	switch driverName {
	case "postgres":
		return "SELECT EXISTS (SELECT 1 FROM information_schema.tables WHERE table_schema = current_schema() AND table_name = $1)"
	case "mysql":
		return "SELECT EXISTS (SELECT 1 FROM information_schema.tables WHERE table_schema = DATABASE() AND table_name = ?)"
	default:
		return "SELECT EXISTS (SELECT 1 FROM sqlite_master WHERE type = 'table' AND name = ?)"
	}
}
