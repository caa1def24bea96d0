package model

import "time"

// MaxMessageLength 单条消息最大字符数
const MaxMessageLength = 140

// Message 消息表 messages
type Message struct {
	ID        uint64    `db:"id"`
	Text      string    `db:"text"`
	CreatedAt time.Time `db:"created_at"`
	UserID    uint64    `db:"user_id"`
}

// MessageWithAuthor 消息及作者的展示信息（messages JOIN users）
type MessageWithAuthor struct {
	Message
	AuthorUsername string `db:"author_username"`
	AuthorImageURL string `db:"author_image_url"`
}
