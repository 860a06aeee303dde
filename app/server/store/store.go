package store

import (
	"context"
	"errors"
	"fmt"
	"remote-connection-manager/app/server/crypto"
	"time"

	"gorm.io/gorm"
)

const defaultQueryTimeout = 5 * time.Second

// Store 持久化用户、连接与审计记录，并负责连接密码的加解密
type Store struct {
	db      *gorm.DB
	cipher  *crypto.Cipher
	timeout time.Duration
	now     func() time.Time
}

func New(db *gorm.DB, cipher *crypto.Cipher, timeout time.Duration) *Store {
	if timeout <= 0 {
		timeout = defaultQueryTimeout
	}
	return &Store{
		db:      db,
		cipher:  cipher,
		timeout: timeout,
		now:     time.Now,
	}
}

// WithClock 替换时间来源，用于测试
func (s *Store) WithClock(now func() time.Time) *Store {
	cp := *s
	cp.now = now
	return &cp
}

// session 返回带超时的会话，每一次存储操作都不应无限期阻塞
func (s *Store) session(ctx context.Context) (*gorm.DB, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	return s.db.WithContext(ctx), cancel
}

func (s *Store) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("get sql db: %w", err)
	}
	return sqlDB.PingContext(ctx)
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("get sql db: %w", err)
	}
	return sqlDB.Close()
}

func notFoundOr(err error, format string, args ...any) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

func validationf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrValidation}, args...)...)
}
