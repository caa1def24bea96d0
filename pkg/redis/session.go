package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	log "warbler/pkg/logger"
)

const (
	// SessionTTL 登录态有效期（2小时）
	SessionTTL = 2 * time.Hour

	// SessionKeyPrefix 登录态键前缀，sess:<token> -> userID
	SessionKeyPrefix = "sess:"
)

// ErrSessionNotFound token 不存在或已过期
var ErrSessionNotFound = errors.New("session not found")

// SessionManager 服务端登录态，浏览器 cookie 中只保存 token
type SessionManager interface {
	CreateSession(ctx context.Context, userID uint64) (string, error)

	// ValidateSession 返回 token 对应的 userID，不存在时返回 ErrSessionNotFound
	ValidateSession(ctx context.Context, token string) (uint64, error)

	DestroySession(ctx context.Context, token string) error

	// RefreshSession 延长有效期（滑动过期）
	RefreshSession(ctx context.Context, token string) error
}

type sessionManager struct {
	client Client
}

// NewSessionManager 创建Session管理器
func NewSessionManager(client Client) SessionManager {
	return &sessionManager{client: client}
}

func (sm *sessionManager) CreateSession(ctx context.Context, userID uint64) (string, error) {
	token := uuid.New().String()

	if err := sm.client.Set(ctx, SessionKeyPrefix+token, userID, SessionTTL); err != nil {
		log.Error("创建Session失败", zap.Error(err), zap.Uint64("user_id", userID))
		return "", fmt.Errorf("创建Session失败: %w", err)
	}

	log.Debug("创建Session成功", zap.Uint64("user_id", userID))
	return token, nil
}

func (sm *sessionManager) ValidateSession(ctx context.Context, token string) (uint64, error) {
	if token == "" {
		return 0, ErrSessionNotFound
	}
	userID, err := sm.client.GetUint64(ctx, SessionKeyPrefix+token)
	if err != nil {
		if errors.Is(err, ErrNil) {
			return 0, ErrSessionNotFound
		}
		return 0, fmt.Errorf("读取Session失败: %w", err)
	}
	return userID, nil
}

func (sm *sessionManager) DestroySession(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := sm.client.Del(ctx, SessionKeyPrefix+token); err != nil {
		log.Error("销毁Session失败", zap.Error(err))
		return err
	}
	log.Debug("销毁Session成功")
	return nil
}

func (sm *sessionManager) RefreshSession(ctx context.Context, token string) error {
	return sm.client.Expire(ctx, SessionKeyPrefix+token, SessionTTL)
}
