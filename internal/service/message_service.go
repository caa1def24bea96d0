package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"warbler/internal/dto"
	"warbler/internal/model"
	"warbler/internal/repository"
	"warbler/pkg/db"
	log "warbler/pkg/logger"
	"warbler/pkg/metrics"
)

// MessageService 消息
type MessageService interface {
	Create(ctx context.Context, newDTO *dto.NewMessageDTO) (*dto.MessageDTO, error)
	Get(ctx context.Context, messageID uint64) (*dto.MessageDTO, error)

	// Delete 只有作者可以删除，否则返回 ErrForbidden
	Delete(ctx context.Context, userID, messageID uint64) error
}

type messageService struct {
	messageRepo repository.MessageRepository
	ids         db.IDGenerator
}

// NewMessageService 创建MessageService实例
func NewMessageService(messageRepo repository.MessageRepository, ids db.IDGenerator) MessageService {
	return &messageService{messageRepo: messageRepo, ids: ids}
}

func (s *messageService) Create(ctx context.Context, newDTO *dto.NewMessageDTO) (*dto.MessageDTO, error) {
	if err := newDTO.Validate(); err != nil {
		return nil, err
	}

	id, err := s.ids.NextID()
	if err != nil {
		return nil, fmt.Errorf("生成消息ID失败: %w", err)
	}

	message := &model.Message{ID: id, Text: newDTO.Text, UserID: newDTO.UserID, CreatedAt: now()}
	if err := s.messageRepo.Create(ctx, message); err != nil {
		log.Error("发布消息失败", zap.Error(err), zap.Uint64("user_id", newDTO.UserID))
		return nil, fmt.Errorf("发布消息失败: %w", err)
	}

	metrics.MessagesPosted.Inc()
	log.Info("发布消息成功", zap.Uint64("user_id", newDTO.UserID), zap.Uint64("message_id", id))

	return dto.FromMessage(&model.MessageWithAuthor{Message: *message}), nil
}

func (s *messageService) Get(ctx context.Context, messageID uint64) (*dto.MessageDTO, error) {
	message, err := s.messageRepo.GetByID(ctx, messageID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrMessageNotFound
		}
		return nil, fmt.Errorf("查询消息失败: %w", err)
	}
	return dto.FromMessage(message), nil
}

func (s *messageService) Delete(ctx context.Context, userID, messageID uint64) error {
	message, err := s.messageRepo.GetByID(ctx, messageID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrMessageNotFound
		}
		return fmt.Errorf("查询消息失败: %w", err)
	}

	if message.UserID != userID {
		log.Warn("非作者尝试删除消息", zap.Uint64("user_id", userID), zap.Uint64("message_id", messageID))
		return ErrForbidden
	}

	if err := s.messageRepo.Delete(ctx, messageID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrMessageNotFound
		}
		return fmt.Errorf("删除消息失败: %w", err)
	}

	log.Info("删除消息成功", zap.Uint64("user_id", userID), zap.Uint64("message_id", messageID))
	return nil
}
