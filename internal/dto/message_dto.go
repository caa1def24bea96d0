package dto

import "time"

// NewMessageDTO 发布消息请求
type NewMessageDTO struct {
	UserID uint64
	Text   string
}

// MessageDTO 消息及作者信息
type MessageDTO struct {
	ID             uint64    `json:"id,string"`
	Text           string    `json:"text"`
	CreatedAt      time.Time `json:"created_at"`
	UserID         uint64    `json:"user_id,string"`
	AuthorUsername string    `json:"author_username"`
	AuthorImageURL string    `json:"author_image_url"`
}
