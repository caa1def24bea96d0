package model

import (
	"fmt"
	"time"
)

const (
	// DefaultImageURL 未上传头像时使用的默认头像
	DefaultImageURL = "/static/images/default-pic.png"
	// DefaultHeaderImageURL 默认个人页背景图
	DefaultHeaderImageURL = "/static/images/warbler-hero.jpg"
)

// User 用户表 users
type User struct {
	ID             uint64    `db:"id"`
	Email          string    `db:"email"`
	Username       string    `db:"username"`
	ImageURL       string    `db:"image_url"`
	HeaderImageURL string    `db:"header_image_url"`
	Bio            string    `db:"bio"`
	Location       string    `db:"location"`
	Password       string    `db:"password"` // bcrypt 哈希，从不保存明文
	CreatedAt      time.Time `db:"created_at"`
}

func (u *User) String() string {
	return fmt.Sprintf("<User #%d: %s, %s>", u.ID, u.Username, u.Email)
}
