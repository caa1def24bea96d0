package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"warbler/internal/dto"
	"warbler/internal/repository"
	log "warbler/pkg/logger"
	"warbler/pkg/metrics"
)

// FollowService 关注关系
type FollowService interface {
	// IsFollowing self 是否关注了 other
	IsFollowing(ctx context.Context, self, other uint64) (bool, error)

	// IsFollowedBy other 是否关注了 self
	IsFollowedBy(ctx context.Context, self, other uint64) (bool, error)

	Followers(ctx context.Context, userID uint64) (*dto.FollowListDTO, error)
	Following(ctx context.Context, userID uint64) (*dto.FollowListDTO, error)

	// Follow 幂等；不能关注自己
	Follow(ctx context.Context, followerID, followedID uint64) error

	// Unfollow 幂等
	Unfollow(ctx context.Context, followerID, followedID uint64) error
}

type followService struct {
	userRepo   repository.UserRepository
	followRepo repository.FollowRepository
}

// NewFollowService 创建FollowService实例
func NewFollowService(userRepo repository.UserRepository, followRepo repository.FollowRepository) FollowService {
	return &followService{userRepo: userRepo, followRepo: followRepo}
}

func (s *followService) IsFollowing(ctx context.Context, self, other uint64) (bool, error) {
	return s.followRepo.IsFollowing(ctx, self, other)
}

func (s *followService) IsFollowedBy(ctx context.Context, self, other uint64) (bool, error) {
	return s.followRepo.IsFollowing(ctx, other, self)
}

func (s *followService) Followers(ctx context.Context, userID uint64) (*dto.FollowListDTO, error) {
	user, err := s.requireUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	users, err := s.followRepo.ListFollowers(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("查询粉丝失败: %w", err)
	}
	return &dto.FollowListDTO{User: user, Users: dto.FromUsers(users)}, nil
}

func (s *followService) Following(ctx context.Context, userID uint64) (*dto.FollowListDTO, error) {
	user, err := s.requireUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	users, err := s.followRepo.ListFollowing(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("查询关注失败: %w", err)
	}
	return &dto.FollowListDTO{User: user, Users: dto.FromUsers(users)}, nil
}

func (s *followService) Follow(ctx context.Context, followerID, followedID uint64) error {
	if followerID == followedID {
		return ErrSelfFollow
	}
	if _, err := s.requireUser(ctx, followedID); err != nil {
		return err
	}

	if err := s.followRepo.Follow(ctx, followerID, followedID); err != nil {
		log.Error("关注失败", zap.Error(err), zap.Uint64("follower", followerID), zap.Uint64("followed", followedID))
		return fmt.Errorf("关注失败: %w", err)
	}

	metrics.FollowChanges.WithLabelValues("follow").Inc()
	log.Info("关注成功", zap.Uint64("follower", followerID), zap.Uint64("followed", followedID))
	return nil
}

func (s *followService) Unfollow(ctx context.Context, followerID, followedID uint64) error {
	if err := s.followRepo.Unfollow(ctx, followerID, followedID); err != nil {
		log.Error("取消关注失败", zap.Error(err), zap.Uint64("follower", followerID), zap.Uint64("followed", followedID))
		return fmt.Errorf("取消关注失败: %w", err)
	}

	metrics.FollowChanges.WithLabelValues("unfollow").Inc()
	log.Info("取消关注成功", zap.Uint64("follower", followerID), zap.Uint64("followed", followedID))
	return nil
}

func (s *followService) requireUser(ctx context.Context, userID uint64) (*dto.UserProfileDTO, error) {
	user, err := s.userRepo.GetProfile(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("查询用户失败: %w", err)
	}
	return dto.FromUser(user), nil
}
