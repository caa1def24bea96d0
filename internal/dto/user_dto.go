package dto

import "time"

// UserProfileDTO 对外展示的用户资料（不含密码）
type UserProfileDTO struct {
	ID             uint64    `json:"id,string"`
	Username       string    `json:"username"`
	Email          string    `json:"email"`
	ImageURL       string    `json:"image_url"`
	HeaderImageURL string    `json:"header_image_url"`
	Bio            string    `json:"bio"`
	Location       string    `json:"location"`
	CreatedAt      time.Time `json:"created_at"`
}

// UpdateProfileDTO 修改资料请求，Password 为当前密码，用于再次确认身份
type UpdateProfileDTO struct {
	UserID         uint64
	Username       string
	Email          string
	ImageURL       string
	HeaderImageURL string
	Bio            string
	Location       string
	Password       string
}

// UserDetailDTO 用户主页
type UserDetailDTO struct {
	User           *UserProfileDTO `json:"user"`
	Messages       []*MessageDTO   `json:"messages"`
	MessageCount   int             `json:"message_count"`
	FollowerCount  int             `json:"follower_count"`
	FollowingCount int             `json:"following_count"`
	IsFollowing    bool            `json:"is_following"`   // 当前登录用户是否关注了该用户
	IsFollowedBy   bool            `json:"is_followed_by"` // 该用户是否关注了当前登录用户
}

// FollowListDTO 关注 / 粉丝列表
type FollowListDTO struct {
	User  *UserProfileDTO   `json:"user"`
	Users []*UserProfileDTO `json:"users"`
}

// HomeDTO 登录用户首页
type HomeDTO struct {
	User           *UserProfileDTO `json:"user"`
	Messages       []*MessageDTO   `json:"messages"`
	MessageCount   int             `json:"message_count"`
	FollowerCount  int             `json:"follower_count"`
	FollowingCount int             `json:"following_count"`
}
