package store

import (
	"context"
	"fmt"
	"remote-connection-manager/app/server/models"
	"time"

	"gorm.io/gorm"
)

// 单次导出的最大条数
const maxExportRows = 100000

type AuditQuery struct {
	UserID *uint
	Action string
	Start  *time.Time
	End    *time.Time // 不包含
	Page   int        // 从 0 开始
	Limit  int
}

func (q *AuditQuery) apply(db *gorm.DB) *gorm.DB {
	query := db.Model(&models.AuditLog{})
	if q.UserID != nil {
		query = query.Where("user_id = ?", *q.UserID)
	}
	if q.Action != "" {
		query = query.Where("action = ?", q.Action)
	}
	if q.Start != nil {
		query = query.Where("timestamp >= ?", *q.Start)
	}
	if q.End != nil {
		query = query.Where("timestamp < ?", *q.End)
	}
	return query
}

// AppendAudit 追加一条审计记录
func (s *Store) AppendAudit(ctx context.Context, entry *models.AuditLog) error {
	if entry.Timestamp.IsZero() {
		entry.Timestamp = s.now()
	}

	db, cancel := s.session(ctx)
	defer cancel()

	if err := db.Create(entry).Error; err != nil {
		return fmt.Errorf("append audit %s: %w", entry.Action, err)
	}
	return nil
}

func (s *Store) ListAudit(ctx context.Context, q AuditQuery) ([]models.AuditLog, int64, error) {
	db, cancel := s.session(ctx)
	defer cancel()

	var count int64
	if err := q.apply(db).Count(&count).Error; err != nil {
		return nil, 0, fmt.Errorf("count audit: %w", err)
	}

	entries := []models.AuditLog{}
	query := q.apply(db).Order("timestamp DESC").Order("id DESC")
	if q.Limit > 0 {
		query = query.Limit(q.Limit).Offset(q.Page * q.Limit)
	}
	if err := query.Find(&entries).Error; err != nil {
		return nil, 0, fmt.Errorf("list audit: %w", err)
	}

	return entries, count, nil
}

// ExportAudit 忽略分页参数，按时间倒序返回全部匹配记录
func (s *Store) ExportAudit(ctx context.Context, q AuditQuery) ([]models.AuditLog, error) {
	db, cancel := s.session(ctx)
	defer cancel()

	entries := []models.AuditLog{}
	if err := q.apply(db).
		Order("timestamp DESC").
		Order("id DESC").
		Limit(maxExportRows).
		Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("export audit: %w", err)
	}
	return entries, nil
}
