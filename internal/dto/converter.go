package dto

import (
	"warbler/internal/model"
)

// ============================================================================
// Model → DTO
// ============================================================================

// FromUser model.User → UserProfileDTO
func FromUser(user *model.User) *UserProfileDTO {
	if user == nil {
		return nil
	}
	return &UserProfileDTO{
		ID:             user.ID,
		Username:       user.Username,
		Email:          user.Email,
		ImageURL:       user.ImageURL,
		HeaderImageURL: user.HeaderImageURL,
		Bio:            user.Bio,
		Location:       user.Location,
		CreatedAt:      user.CreatedAt,
	}
}

// FromUsers []model.User → []*UserProfileDTO
func FromUsers(users []*model.User) []*UserProfileDTO {
	out := make([]*UserProfileDTO, 0, len(users))
	for _, u := range users {
		out = append(out, FromUser(u))
	}
	return out
}

// FromMessage model.MessageWithAuthor → MessageDTO
func FromMessage(m *model.MessageWithAuthor) *MessageDTO {
	if m == nil {
		return nil
	}
	return &MessageDTO{
		ID:             m.ID,
		Text:           m.Text,
		CreatedAt:      m.CreatedAt,
		UserID:         m.UserID,
		AuthorUsername: m.AuthorUsername,
		AuthorImageURL: m.AuthorImageURL,
	}
}

// FromMessages []model.MessageWithAuthor → []*MessageDTO
func FromMessages(messages []*model.MessageWithAuthor) []*MessageDTO {
	out := make([]*MessageDTO, 0, len(messages))
	for _, m := range messages {
		out = append(out, FromMessage(m))
	}
	return out
}

// ============================================================================
// DTO → Model
// ============================================================================

// ApplyTo 把修改资料请求写入已有用户，空头像字段回落为默认值
func (d *UpdateProfileDTO) ApplyTo(user *model.User) {
	user.Username = d.Username
	user.Email = d.Email
	user.ImageURL = d.ImageURL
	if user.ImageURL == "" {
		user.ImageURL = model.DefaultImageURL
	}
	user.HeaderImageURL = d.HeaderImageURL
	if user.HeaderImageURL == "" {
		user.HeaderImageURL = model.DefaultHeaderImageURL
	}
	user.Bio = d.Bio
	user.Location = d.Location
}
