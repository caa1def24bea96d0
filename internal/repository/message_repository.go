package repository

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"warbler/internal/model"
)

// MessageRepository 消息仓储接口
type MessageRepository interface {
	Create(ctx context.Context, message *model.Message) error

	// GetByID 连同作者信息返回
	GetByID(ctx context.Context, id uint64) (*model.MessageWithAuthor, error)

	Delete(ctx context.Context, id uint64) error

	// ListByUser 某个用户的消息，按时间倒序
	ListByUser(ctx context.Context, userID uint64, limit uint64) ([]*model.MessageWithAuthor, error)

	// Timeline 自己及关注对象的消息，按时间倒序
	Timeline(ctx context.Context, userID uint64, limit uint64) ([]*model.MessageWithAuthor, error)

	CountByUser(ctx context.Context, userID uint64) (int, error)
}

type messageRepository struct {
	db *sqlx.DB
}

// NewMessageRepository 创建消息仓储实例
func NewMessageRepository(db *sqlx.DB) MessageRepository {
	return &messageRepository{db: db}
}

// selectWithAuthor messages JOIN users 的公共部分
func selectWithAuthor() sq.SelectBuilder {
	return sq.Select(
		"m.id", "m.text", "m.created_at", "m.user_id",
		"u.username AS author_username", "u.image_url AS author_image_url",
	).
		From("messages m").
		Join("users u ON u.id = m.user_id")
}

func (r *messageRepository) Create(ctx context.Context, message *model.Message) error {
	query := r.db.Rebind("INSERT INTO messages (id, text, created_at, user_id) VALUES (?, ?, ?, ?)")

	if _, err := r.db.ExecContext(ctx, query, message.ID, message.Text, message.CreatedAt, message.UserID); err != nil {
		return translate(err, "创建消息失败")
	}
	return nil
}

func (r *messageRepository) GetByID(ctx context.Context, id uint64) (*model.MessageWithAuthor, error) {
	query, args, err := selectWithAuthor().Where(sq.Eq{"m.id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("构建查询失败: %w", err)
	}

	var message model.MessageWithAuthor
	if err := r.db.GetContext(ctx, &message, r.db.Rebind(query), args...); err != nil {
		return nil, translate(err, "查询消息失败")
	}
	return &message, nil
}

func (r *messageRepository) Delete(ctx context.Context, id uint64) error {
	result, err := r.db.ExecContext(ctx, r.db.Rebind("DELETE FROM messages WHERE id = ?"), id)
	if err != nil {
		return translate(err, "删除消息失败")
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *messageRepository) ListByUser(ctx context.Context, userID uint64, limit uint64) ([]*model.MessageWithAuthor, error) {
	builder := selectWithAuthor().
		Where(sq.Eq{"m.user_id": userID}).
		OrderBy("m.created_at DESC", "m.id DESC").
		Limit(limit)

	return r.selectMessages(ctx, builder)
}

func (r *messageRepository) Timeline(ctx context.Context, userID uint64, limit uint64) ([]*model.MessageWithAuthor, error) {
	builder := selectWithAuthor().
		Where(sq.Or{
			sq.Eq{"m.user_id": userID},
			sq.Expr("m.user_id IN (SELECT user_being_followed_id FROM follows WHERE user_following_id = ?)", userID),
		}).
		OrderBy("m.created_at DESC", "m.id DESC").
		Limit(limit)

	return r.selectMessages(ctx, builder)
}

func (r *messageRepository) CountByUser(ctx context.Context, userID uint64) (int, error) {
	var n int
	if err := r.db.GetContext(ctx, &n, r.db.Rebind("SELECT COUNT(*) FROM messages WHERE user_id = ?"), userID); err != nil {
		return 0, translate(err, "统计消息失败")
	}
	return n, nil
}

func (r *messageRepository) selectMessages(ctx context.Context, builder sq.SelectBuilder) ([]*model.MessageWithAuthor, error) {
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("构建查询失败: %w", err)
	}

	messages := make([]*model.MessageWithAuthor, 0)
	if err := r.db.SelectContext(ctx, &messages, r.db.Rebind(query), args...); err != nil {
		return nil, translate(err, "查询消息列表失败")
	}
	return messages, nil
}
