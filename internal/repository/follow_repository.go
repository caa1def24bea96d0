package repository

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"warbler/internal/model"
)

// FollowRepository 关注关系仓储接口
// 边 (follower -> followed) 存为 follows(user_being_followed_id=followed, user_following_id=follower)
type FollowRepository interface {
	// Follow 重复关注不报错
	Follow(ctx context.Context, followerID, followedID uint64) error

	// Unfollow 关系不存在时不报错
	Unfollow(ctx context.Context, followerID, followedID uint64) error

	IsFollowing(ctx context.Context, followerID, followedID uint64) (bool, error)

	// ListFollowers 关注了 userID 的用户
	ListFollowers(ctx context.Context, userID uint64) ([]*model.User, error)

	// ListFollowing userID 关注的用户
	ListFollowing(ctx context.Context, userID uint64) ([]*model.User, error)

	CountFollowers(ctx context.Context, userID uint64) (int, error)
	CountFollowing(ctx context.Context, userID uint64) (int, error)
}

type followRepository struct {
	db *sqlx.DB
}

// NewFollowRepository 创建关注关系仓储实例
func NewFollowRepository(db *sqlx.DB) FollowRepository {
	return &followRepository{db: db}
}

func (r *followRepository) Follow(ctx context.Context, followerID, followedID uint64) error {
	edge := &model.Follow{UserBeingFollowedID: followedID, UserFollowingID: followerID}

	_, err := r.db.NamedExecContext(ctx, `INSERT INTO follows (user_being_followed_id, user_following_id)
		VALUES (:user_being_followed_id, :user_following_id)`, edge)
	if err = translate(err, "关注失败"); errors.Is(err, ErrDuplicate) {
		return nil
	}
	return err
}

func (r *followRepository) Unfollow(ctx context.Context, followerID, followedID uint64) error {
	query := r.db.Rebind("DELETE FROM follows WHERE user_being_followed_id = ? AND user_following_id = ?")

	if _, err := r.db.ExecContext(ctx, query, followedID, followerID); err != nil {
		return translate(err, "取消关注失败")
	}
	return nil
}

func (r *followRepository) IsFollowing(ctx context.Context, followerID, followedID uint64) (bool, error) {
	var n int
	query := r.db.Rebind("SELECT COUNT(*) FROM follows WHERE user_being_followed_id = ? AND user_following_id = ?")

	if err := r.db.GetContext(ctx, &n, query, followedID, followerID); err != nil {
		return false, translate(err, "查询关注关系失败")
	}
	return n > 0, nil
}

func (r *followRepository) ListFollowers(ctx context.Context, userID uint64) ([]*model.User, error) {
	return r.listUsers(ctx, "f.user_following_id", "f.user_being_followed_id", userID)
}

func (r *followRepository) ListFollowing(ctx context.Context, userID uint64) ([]*model.User, error) {
	return r.listUsers(ctx, "f.user_being_followed_id", "f.user_following_id", userID)
}

// listUsers 取 follows 中 matchColumn = userID 的行，返回 joinColumn 一侧的用户
func (r *followRepository) listUsers(ctx context.Context, joinColumn, matchColumn string, userID uint64) ([]*model.User, error) {
	query, args, err := sq.Select(
		"u.id", "u.email", "u.username", "u.image_url", "u.header_image_url",
		"u.bio", "u.location", "u.password", "u.created_at",
	).
		From("users u").
		Join("follows f ON u.id = " + joinColumn).
		Where(sq.Eq{matchColumn: userID}).
		OrderBy("u.username").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("构建查询失败: %w", err)
	}

	users := make([]*model.User, 0)
	if err := r.db.SelectContext(ctx, &users, r.db.Rebind(query), args...); err != nil {
		return nil, translate(err, "查询关注列表失败")
	}
	for _, u := range users {
		u.Password = ""
	}
	return users, nil
}

func (r *followRepository) CountFollowers(ctx context.Context, userID uint64) (int, error) {
	return r.count(ctx, "user_being_followed_id", userID)
}

func (r *followRepository) CountFollowing(ctx context.Context, userID uint64) (int, error) {
	return r.count(ctx, "user_following_id", userID)
}

func (r *followRepository) count(ctx context.Context, column string, userID uint64) (int, error) {
	var n int
	query := r.db.Rebind("SELECT COUNT(*) FROM follows WHERE " + column + " = ?")

	if err := r.db.GetContext(ctx, &n, query, userID); err != nil {
		return 0, translate(err, "统计关注数失败")
	}
	return n, nil
}
