package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	log "warbler/pkg/logger"
)

const (
	// LoginFailKeyPrefix 登录失败计数键前缀，login_fail:<username>
	LoginFailKeyPrefix = "login_fail:"

	// LoginFailTTL 登录失败计数过期时间（15分钟）
	LoginFailTTL = 15 * time.Minute

	// MaxLoginAttempts 最大登录尝试次数
	MaxLoginAttempts = 5
)

// LoginLimiter 按用户名统计登录失败次数
type LoginLimiter interface {
	RecordLoginFail(ctx context.Context, username string) (int64, error)
	GetLoginFailCount(ctx context.Context, username string) (int64, error)

	// IsLoginAllowed 失败次数 < MaxLoginAttempts 时允许登录
	IsLoginAllowed(ctx context.Context, username string) (bool, error)

	ResetLoginFail(ctx context.Context, username string) error
}

type loginLimiter struct {
	client Client
}

// NewLoginLimiter 创建登录限制器
func NewLoginLimiter(client Client) LoginLimiter {
	return &loginLimiter{client: client}
}

func (ll *loginLimiter) RecordLoginFail(ctx context.Context, username string) (int64, error) {
	key := LoginFailKeyPrefix + username

	count, err := ll.client.Incr(ctx, key)
	if err != nil {
		log.Error("记录登录失败次数失败", zap.Error(err), zap.String("username", username))
		return 0, err
	}

	// 第一次失败时开始计时，窗口内不续期
	if count == 1 {
		if err := ll.client.Expire(ctx, key, LoginFailTTL); err != nil {
			log.Error("设置登录失败计数过期时间失败",
				zap.Error(err),
				zap.String("username", username))
		}
	}

	log.Warn("记录登录失败", zap.String("username", username), zap.Int64("fail_count", count))
	return count, nil
}

func (ll *loginLimiter) GetLoginFailCount(ctx context.Context, username string) (int64, error) {
	countStr, err := ll.client.Get(ctx, LoginFailKeyPrefix+username)
	if err != nil {
		if errors.Is(err, ErrNil) {
			return 0, nil
		}
		return 0, err
	}

	count, err := strconv.ParseInt(countStr, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("解析登录失败计数失败: %w", err)
	}
	return count, nil
}

func (ll *loginLimiter) IsLoginAllowed(ctx context.Context, username string) (bool, error) {
	count, err := ll.GetLoginFailCount(ctx, username)
	if err != nil {
		return false, err
	}

	allowed := count < MaxLoginAttempts
	if !allowed {
		log.Warn("登录尝试次数过多", zap.String("username", username), zap.Int64("fail_count", count))
	}
	return allowed, nil
}

func (ll *loginLimiter) ResetLoginFail(ctx context.Context, username string) error {
	if err := ll.client.Del(ctx, LoginFailKeyPrefix+username); err != nil {
		log.Error("重置登录失败计数失败", zap.Error(err), zap.String("username", username))
		return err
	}
	return nil
}
