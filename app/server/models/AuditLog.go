package models

import "time"

// AuditLog 只追加，不修改也不删除
type AuditLog struct {
	ID           uint      `gorm:"primarykey" json:"id"`
	UserID       uint      `gorm:"column:user_id;index" json:"user_id"`
	ConnectionID *uint     `gorm:"column:connection_id;index" json:"connection_id"`
	Action       string    `gorm:"column:action;size:64;index" json:"action"`
	Details      string    `gorm:"column:details" json:"details"`
	IPAddress    string    `gorm:"column:ip_address;size:64" json:"ip_address"`
	UserAgent    string    `gorm:"column:user_agent" json:"user_agent"`
	Timestamp    time.Time `gorm:"column:timestamp;index" json:"timestamp"`
}
