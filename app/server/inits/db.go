package inits

import (
	"context"
	"errors"
	"fmt"
	"remote-connection-manager/app/server/config"
	"remote-connection-manager/app/server/models"
	"remote-connection-manager/app/server/store"
	"strings"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Dialector 根据连接字符串选择数据库：
// postgres:// 、 postgresql:// 或 key=value 形式使用 Postgres ，其余视为 sqlite 文件路径
func Dialector(conn string) gorm.Dialector {
	switch {
	case strings.HasPrefix(conn, "postgres://"),
		strings.HasPrefix(conn, "postgresql://"),
		strings.Contains(conn, "host="):
		return postgres.Open(conn)
	default:
		path := strings.TrimPrefix(conn, "sqlite://")
		path = strings.TrimPrefix(path, "sqlite:")
		if !strings.Contains(path, "?") {
			// sqlite 写入在引擎内部串行化，等待锁而不是立刻失败
			path += "?_busy_timeout=5000&_foreign_keys=on"
		}
		return sqlite.Open(path)
	}
}

func DB(conn string, debugMode bool) (db *gorm.DB, err error) {
	gormConfig := &gorm.Config{
		TranslateError: true, // 唯一约束冲突映射为 gorm.ErrDuplicatedKey
	}
	if !debugMode {
		gormConfig.Logger = logger.Default.LogMode(logger.Error)
	}

	// 打开连接
	if db, err = gorm.Open(Dialector(conn), gormConfig); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// 迁移
	if err = store.Migrate(db); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	// 返回
	return db, nil
}

// Bootstrap 在没有任何用户时，根据配置创建初始管理员
func Bootstrap(ctx context.Context, st *store.Store, cfg *config.Config, l *zap.Logger) error {
	if cfg.Bootstrap.AdminUsername == "" {
		return nil
	}

	// 查询现有记录数量
	counter, err := st.CountUsers(ctx)
	if err != nil {
		return fmt.Errorf("failed to get user count: %w", err)
	} else if counter > 0 {
		return nil
	}

	user, err := st.CreateUser(ctx, store.NewUser{
		Username: cfg.Bootstrap.AdminUsername,
		Email:    cfg.Bootstrap.AdminEmail,
		Password: cfg.Bootstrap.AdminPassword,
		Role:     models.RoleAdmin,
	})
	if err != nil {
		if errors.Is(err, store.ErrConflict) {
			return nil
		}
		return fmt.Errorf("failed to create admin user: %w", err)
	}

	l.Info("bootstrap admin created", zap.Uint("id", user.ID), zap.String("username", user.Username))
	return nil
}
