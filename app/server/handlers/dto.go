package handlers

import (
	"remote-connection-manager/app/server/models"
	"time"
)

type userInfo struct {
	ID        uint       `json:"id"`
	Username  string     `json:"username"`
	Email     string     `json:"email"`
	Role      string     `json:"role"`
	IsActive  bool       `json:"is_active"`
	CreatedAt time.Time  `json:"created_at"`
	LastLogin *time.Time `json:"last_login"`
}

func newUserInfo(user *models.User) userInfo {
	return userInfo{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		Role:      user.Role,
		IsActive:  user.IsActive,
		CreatedAt: user.CreatedAt,
		LastLogin: user.LastLogin,
	}
}

// connectionInfo 不含密文，只有查看单个连接时才带上解密后的密码
type connectionInfo struct {
	ID          uint      `json:"id"`
	Name        string    `json:"name"`
	Type        string    `json:"type"`
	Host        string    `json:"host"`
	Port        int       `json:"port"`
	Username    string    `json:"username"`
	URL         string    `json:"url"`
	Description string    `json:"description"`
	GroupName   string    `json:"group_name"`
	IsFavorite  bool      `json:"is_favorite"`
	Tags        []string  `json:"tags"`
	PreScript   string    `json:"pre_script"`
	PostScript  string    `json:"post_script"`
	HasPassword bool      `json:"has_password"`
	Password    *string   `json:"password,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func newConnectionInfo(conn *models.Connection) connectionInfo {
	tags := conn.Tags
	if tags == nil {
		tags = []string{}
	}
	return connectionInfo{
		ID:          conn.ID,
		Name:        conn.Name,
		Type:        conn.Type,
		Host:        conn.Host,
		Port:        conn.Port,
		Username:    conn.Username,
		URL:         conn.URL,
		Description: conn.Description,
		GroupName:   conn.GroupName,
		IsFavorite:  conn.IsFavorite,
		Tags:        tags,
		PreScript:   conn.PreScript,
		PostScript:  conn.PostScript,
		HasPassword: conn.HasPassword(),
		CreatedAt:   conn.CreatedAt,
		UpdatedAt:   conn.UpdatedAt,
	}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	User      userInfo  `json:"user"`
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}
