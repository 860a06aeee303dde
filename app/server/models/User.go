package models

import "time"

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	ID        uint      `gorm:"primarykey"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`

	// 基础信息
	Username string `gorm:"column:username;uniqueIndex;size:64;not null"` // 用户名，全局唯一
	Email    string `gorm:"column:email;uniqueIndex;size:255;not null"`   // 邮箱，全局唯一
	Role     string `gorm:"column:role;size:16;not null;default:user"`    // user / admin ，管理员拥有所有角色的权限
	IsActive bool   `gorm:"column:is_active;not null;default:true"`       // 停用后已签发的 token 立即失效

	// 登录与授权认证相关
	PasswordHash string     `gorm:"column:password_hash;not null"` // 密码，使用 argon2id 储存
	LastLogin    *time.Time `gorm:"column:last_login"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
