// Package directory 提供组织目录（LDAP / Active Directory）的查询与认证。
// 具体实现在启动时根据配置选择一次： Live 连接真实目录， Mock 用于离线开发。
package directory

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound           = errors.New("directory user not found")
	ErrInvalidCredentials = errors.New("invalid directory credentials")
	ErrDisabled           = errors.New("directory account is disabled")
	ErrUnavailable        = errors.New("directory service unavailable")
)

type User struct {
	Username        string     `json:"username"` // sAMAccountName
	DisplayName     string     `json:"display_name"`
	Email           string     `json:"email"`
	Department      string     `json:"department"`
	Title           string     `json:"title"`
	DN              string     `json:"dn"`
	Groups          []string   `json:"groups"`
	Enabled         bool       `json:"enabled"`
	AccountExpires  *time.Time `json:"account_expires"`
	LastLogon       *time.Time `json:"last_logon"`
	PasswordLastSet *time.Time `json:"password_last_set"`
}

type Directory interface {
	Search(ctx context.Context, query string) ([]User, error)
	GetUser(ctx context.Context, username string) (*User, error)
	Authenticate(ctx context.Context, username string, password string) (*User, error)
}
