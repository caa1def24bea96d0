package redis

import (
	"context"
	"errors"
	"strconv"
	"time"

	"go.uber.org/zap"

	"warbler/internal/model"
	log "warbler/pkg/logger"
)

const (
	// UserCacheKeyPrefix 用户缓存键前缀，user:<id>
	UserCacheKeyPrefix = "user:"

	// UserCacheTTL 用户缓存过期时间（30分钟）
	UserCacheTTL = 30 * time.Minute

	// NullCacheValue 负缓存标记值
	NullCacheValue = "NULL"

	// NullCacheTTL 负缓存过期时间（5分钟）
	NullCacheTTL = 5 * time.Minute
)

// ErrCachedNull 命中负缓存，数据库中确定不存在该用户
var ErrCachedNull = errors.New("user cached as missing")

// CachedUser 缓存的用户资料，不含密码哈希
type CachedUser struct {
	ID             uint64    `json:"id"`
	Email          string    `json:"email"`
	Username       string    `json:"username"`
	ImageURL       string    `json:"image_url"`
	HeaderImageURL string    `json:"header_image_url"`
	Bio            string    `json:"bio"`
	Location       string    `json:"location"`
	CreatedAt      time.Time `json:"created_at"`
}

// ToModel 还原为 model.User，Password 为空
func (c *CachedUser) ToModel() *model.User {
	return &model.User{
		ID:             c.ID,
		Email:          c.Email,
		Username:       c.Username,
		ImageURL:       c.ImageURL,
		HeaderImageURL: c.HeaderImageURL,
		Bio:            c.Bio,
		Location:       c.Location,
		CreatedAt:      c.CreatedAt,
	}
}

// UserCache 用户缓存
type UserCache interface {
	// GetUser 未命中返回 (nil, nil)，命中负缓存返回 ErrCachedNull
	GetUser(ctx context.Context, userID uint64) (*CachedUser, error)

	SetUser(ctx context.Context, user *model.User) error
	SetNullCache(ctx context.Context, userID uint64) error
	DeleteUser(ctx context.Context, userID uint64) error
}

type userCache struct {
	client Client
}

// NewUserCache 创建用户缓存管理器
func NewUserCache(client Client) UserCache {
	return &userCache{client: client}
}

func userKey(userID uint64) string {
	return UserCacheKeyPrefix + strconv.FormatUint(userID, 10)
}

func (uc *userCache) GetUser(ctx context.Context, userID uint64) (*CachedUser, error) {
	var user CachedUser
	if err := uc.client.GetJSON(ctx, userKey(userID), &user); err != nil {
		if errors.Is(err, ErrNil) {
			return nil, nil
		}
		return nil, err
	}

	if user.Username == NullCacheValue {
		log.Debug("命中负缓存", zap.Uint64("user_id", userID))
		return nil, ErrCachedNull
	}

	log.Debug("命中用户缓存", zap.Uint64("user_id", userID))
	return &user, nil
}

func (uc *userCache) SetUser(ctx context.Context, user *model.User) error {
	cached := &CachedUser{
		ID:             user.ID,
		Email:          user.Email,
		Username:       user.Username,
		ImageURL:       user.ImageURL,
		HeaderImageURL: user.HeaderImageURL,
		Bio:            user.Bio,
		Location:       user.Location,
		CreatedAt:      user.CreatedAt,
	}

	if err := uc.client.SetJSON(ctx, userKey(user.ID), cached, UserCacheTTL); err != nil {
		log.Error("设置用户缓存失败", zap.Error(err), zap.Uint64("user_id", user.ID))
		return err
	}
	return nil
}

func (uc *userCache) SetNullCache(ctx context.Context, userID uint64) error {
	nullUser := &CachedUser{Username: NullCacheValue}

	if err := uc.client.SetJSON(ctx, userKey(userID), nullUser, NullCacheTTL); err != nil {
		log.Error("设置负缓存失败", zap.Error(err), zap.Uint64("user_id", userID))
		return err
	}
	return nil
}

func (uc *userCache) DeleteUser(ctx context.Context, userID uint64) error {
	if err := uc.client.Del(ctx, userKey(userID)); err != nil {
		log.Error("删除用户缓存失败", zap.Error(err), zap.Uint64("user_id", userID))
		return err
	}
	return nil
}
