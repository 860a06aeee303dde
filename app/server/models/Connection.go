package models

import "time"

const (
	ConnectionTypeRDP    = "rdp"
	ConnectionTypeSSH    = "ssh"
	ConnectionTypeVNC    = "vnc"
	ConnectionTypeTelnet = "telnet"
	ConnectionTypeWeb    = "web"
)

var ConnectionTypes = []string{
	ConnectionTypeRDP,
	ConnectionTypeSSH,
	ConnectionTypeVNC,
	ConnectionTypeTelnet,
	ConnectionTypeWeb,
}

func IsConnectionType(t string) bool {
	for _, ct := range ConnectionTypes {
		if ct == t {
			return true
		}
	}
	return false
}

type Connection struct {
	ID        uint      `gorm:"primarykey"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`

	UserID uint `gorm:"column:user_id;index;not null"` // 所有者，连接只对所有者可见

	// 连接的基础信息
	Name     string `gorm:"column:name;not null"`
	Type     string `gorm:"column:type;size:16;not null"`
	Host     string `gorm:"column:host"`
	Port     int    `gorm:"column:port"`
	Username string `gorm:"column:username"`
	URL      string `gorm:"column:url"`

	PasswordEncrypted []byte `gorm:"column:password_encrypted"` // nonce + 密文，使用来自环境变量的 secret key 加密，无密码时为 NULL

	// 展示与整理
	Description string   `gorm:"column:description"`
	GroupName   string   `gorm:"column:group_name;index"`
	IsFavorite  bool     `gorm:"column:is_favorite;not null;default:false"`
	Tags        []string `gorm:"column:tags;serializer:json"` // 按顺序保存

	// 启动前后执行的脚本，由桌面端执行
	PreScript  string `gorm:"column:pre_script"`
	PostScript string `gorm:"column:post_script"`
}

func (c *Connection) HasPassword() bool {
	return len(c.PasswordEncrypted) > 0
}
