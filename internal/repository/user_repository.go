package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"warbler/internal/model"
	log "warbler/pkg/logger"
	"warbler/pkg/redis"
)

const userColumns = "id, email, username, image_url, header_image_url, bio, location, password, created_at"

// UserRepository 用户仓储接口
type UserRepository interface {
	// GetByID 直接查库，包含密码哈希
	GetByID(ctx context.Context, id uint64) (*model.User, error)

	// GetProfile 优先读缓存，返回的用户不含密码哈希
	GetProfile(ctx context.Context, id uint64) (*model.User, error)

	GetByUsername(ctx context.Context, username string) (*model.User, error)

	// Create 用户名或邮箱重复时返回 ErrDuplicate
	Create(ctx context.Context, user *model.User) error

	// Update 更新资料（不含密码），并使缓存失效
	Update(ctx context.Context, user *model.User) error

	// Delete 在一个事务内删除用户及其消息、关注关系
	Delete(ctx context.Context, id uint64) error

	// List 按用户名模糊搜索，search 为空时返回全部
	List(ctx context.Context, search string) ([]*model.User, error)

	Count(ctx context.Context) (int, error)
}

type userRepository struct {
	db    *sqlx.DB
	cache redis.UserCache
}

// NewUserRepository 创建用户仓储实例，cache 为 nil 时不使用缓存
func NewUserRepository(db *sqlx.DB, cache redis.UserCache) UserRepository {
	return &userRepository{db: db, cache: cache}
}

func (r *userRepository) GetByID(ctx context.Context, id uint64) (*model.User, error) {
	var user model.User
	query := r.db.Rebind("SELECT " + userColumns + " FROM users WHERE id = ?")

	if err := r.db.GetContext(ctx, &user, query, id); err != nil {
		return nil, translate(err, "查询用户失败")
	}
	return &user, nil
}

func (r *userRepository) GetProfile(ctx context.Context, id uint64) (*model.User, error) {
	if r.cache != nil {
		cached, err := r.cache.GetUser(ctx, id)
		switch {
		case errors.Is(err, redis.ErrCachedNull):
			return nil, ErrNotFound
		case err != nil:
			// 缓存不可用时降级为查库
			log.Warn("读取用户缓存失败", zap.Error(err), zap.Uint64("user_id", id))
		case cached != nil:
			return cached.ToModel(), nil
		}
	}

	user, err := r.GetByID(ctx, id)
	if errors.Is(err, ErrNotFound) {
		if r.cache != nil {
			_ = r.cache.SetNullCache(ctx, id)
		}
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if r.cache != nil {
		_ = r.cache.SetUser(ctx, user)
	}
	user.Password = ""
	return user, nil
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	var user model.User
	query := r.db.Rebind("SELECT " + userColumns + " FROM users WHERE username = ?")

	if err := r.db.GetContext(ctx, &user, query, username); err != nil {
		return nil, translate(err, "按用户名查询用户失败")
	}
	return &user, nil
}

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	query := r.db.Rebind(`INSERT INTO users (` + userColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)

	_, err := r.db.ExecContext(ctx, query,
		user.ID, user.Email, user.Username, user.ImageURL, user.HeaderImageURL,
		user.Bio, user.Location, user.Password, user.CreatedAt)
	if err != nil {
		return translate(err, "创建用户失败")
	}

	// 覆盖可能存在的负缓存
	r.invalidate(ctx, user.ID)
	return nil
}

func (r *userRepository) Update(ctx context.Context, user *model.User) error {
	query := r.db.Rebind(`UPDATE users
		SET email = ?, username = ?, image_url = ?, header_image_url = ?, bio = ?, location = ?
		WHERE id = ?`)

	_, err := r.db.ExecContext(ctx, query,
		user.Email, user.Username, user.ImageURL, user.HeaderImageURL, user.Bio, user.Location, user.ID)
	if err != nil {
		return translate(err, "更新用户失败")
	}

	r.invalidate(ctx, user.ID)
	return nil
}

func (r *userRepository) Delete(ctx context.Context, id uint64) error {
	err := withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx,
			tx.Rebind("DELETE FROM follows WHERE user_being_followed_id = ? OR user_following_id = ?"), id, id); err != nil {
			return fmt.Errorf("删除关注关系失败: %w", err)
		}
		if _, err := tx.ExecContext(ctx, tx.Rebind("DELETE FROM messages WHERE user_id = ?"), id); err != nil {
			return fmt.Errorf("删除消息失败: %w", err)
		}

		result, err := tx.ExecContext(ctx, tx.Rebind("DELETE FROM users WHERE id = ?"), id)
		if err != nil {
			return fmt.Errorf("删除用户失败: %w", err)
		}
		if n, err := result.RowsAffected(); err == nil && n == 0 {
			return ErrNotFound
		}
		return nil
	})
	if err != nil {
		return err
	}

	r.invalidate(ctx, id)
	return nil
}

// likeEscaper 按字面量匹配搜索词中的 % 和 _
var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

func (r *userRepository) List(ctx context.Context, search string) ([]*model.User, error) {
	builder := sq.Select(userColumns).From("users").OrderBy("username")
	if search != "" {
		builder = builder.Where(sq.Expr("username LIKE ? ESCAPE '!'", "%"+likeEscaper.Replace(search)+"%"))
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("构建查询失败: %w", err)
	}

	users := make([]*model.User, 0)
	if err := r.db.SelectContext(ctx, &users, r.db.Rebind(query), args...); err != nil {
		return nil, translate(err, "查询用户列表失败")
	}
	return users, nil
}

func (r *userRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.GetContext(ctx, &n, "SELECT COUNT(*) FROM users"); err != nil {
		return 0, translate(err, "统计用户失败")
	}
	return n, nil
}

func (r *userRepository) invalidate(ctx context.Context, id uint64) {
	if r.cache == nil {
		return
	}
	if err := r.cache.DeleteUser(ctx, id); err != nil {
		log.Warn("删除用户缓存失败", zap.Error(err), zap.Uint64("user_id", id))
	}
}
