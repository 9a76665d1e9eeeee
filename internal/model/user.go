package model

import "time"

const (
	MaxUsernameLength = 150
	MaxBioLength      = 500
	MinPasswordLength = 8
)

// User 结构体表示用户模型
type User struct {
	ID             int       `json:"id"`
	Username       string    `json:"username"`
	Email          string    `json:"email"`
	PasswordHash   string    `json:"-"` // 密码哈希不应在JSON中暴露
	FirstName      string    `json:"first_name"`
	LastName       string    `json:"last_name"`
	Bio            string    `json:"bio"`
	ProfilePicture string    `json:"profile_picture"`
	CoverPhoto     string    `json:"cover_photo"`
	FollowersCount int       `json:"-"` // 冗余计数，对外以实时统计为准
	FollowingCount int       `json:"-"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// UserProfile 用户资料的对外表示
type UserProfile struct {
	ID             int       `json:"id"`
	Username       string    `json:"username"`
	Email          string    `json:"email"`
	FirstName      string    `json:"first_name"`
	LastName       string    `json:"last_name"`
	Bio            string    `json:"bio"`
	ProfilePicture string    `json:"profile_picture"`
	CoverPhoto     string    `json:"cover_photo"`
	FollowersCount int       `json:"followers_count"`
	FollowingCount int       `json:"following_count"`
	IsFollowing    bool      `json:"is_following"`
	CreatedAt      time.Time `json:"created_at"`
}

// RegisterInput 注册请求
type RegisterInput struct {
	Username  string `json:"username" binding:"required"`
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required"`
	Password2 string `json:"password2" binding:"required"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// ProfileUpdate 可由用户修改的资料字段，nil 表示不修改
type ProfileUpdate struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Email     *string `json:"email" binding:"omitempty,email"`
	Bio       *string `json:"bio"`
}
