package handlers

import (
	"net"
	"remote-connection-manager/app/server/archive"
	"remote-connection-manager/app/server/directory"
	"remote-connection-manager/app/server/jwt"
	"remote-connection-manager/app/server/store"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type App struct {
	l   *zap.Logger         // 日志
	st  *store.Store        // 存储
	rdb *redis.Client       // Redis ，为 nil 时不缓存也不限流
	jwt *jwt.JWT            // JWT ，用于无状态验证
	dir directory.Directory // 目录服务，为 nil 表示已关闭
	arc archive.Archiver    // 审计归档，为 nil 表示未配置

	loginMaxFailures int64
	ipExtractor      echo.IPExtractor // 审计中的客户端地址
	now              func() time.Time
}

func NewApp(l *zap.Logger, st *store.Store, rdb *redis.Client, j *jwt.JWT, dir directory.Directory, arc archive.Archiver, loginMaxFailures int64) *App {
	return &App{
		l:   l,
		st:  st,
		rdb: rdb,
		jwt: j,
		dir: dir,
		arc: arc,

		loginMaxFailures: loginMaxFailures,
		ipExtractor:      echo.ExtractIPDirect(),
		now:              time.Now,
	}
}

// WithClock 替换时钟，用于测试
func (a *App) WithClock(now func() time.Time) *App {
	a.now = now
	return a
}

// WithTrustedProxies 只采信来自这些代理的 X-Forwarded-For ，为空时使用对端地址
func (a *App) WithTrustedProxies(nets []*net.IPNet) *App {
	if len(nets) == 0 {
		a.ipExtractor = echo.ExtractIPDirect()
		return a
	}

	opts := []echo.TrustOption{
		echo.TrustLoopback(false),
		echo.TrustLinkLocal(false),
		echo.TrustPrivateNet(false),
	}
	for _, n := range nets {
		opts = append(opts, echo.TrustIPRange(n))
	}
	a.ipExtractor = echo.ExtractIPFromXFFHeader(opts...)
	return a
}
