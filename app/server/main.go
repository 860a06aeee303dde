package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"remote-connection-manager/app/server/apidocs"
	"remote-connection-manager/app/server/crypto"
	"remote-connection-manager/app/server/handlers"
	"remote-connection-manager/app/server/inits"
	"remote-connection-manager/app/server/jwt"
	"remote-connection-manager/app/server/store"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

func main() {
	// 初始化配置
	cfg, err := inits.Config()
	if err != nil {
		log.Fatal(fmt.Errorf("error loading config: %w", err))
	}

	// 初始化日志
	l, err := inits.Logger(!cfg.System.IsProd)
	if err != nil {
		log.Fatal(fmt.Errorf("error initializing logger: %w", err))
	}
	defer func() { _ = l.Sync() }()

	// 切换日志系统
	l.Debug("logger initialized")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 初始化数据库连接
	db, err := inits.DB(cfg.System.DBConnectionString, !cfg.System.IsProd)
	if err != nil {
		l.Fatal("error initializing DB connection", zap.Error(err))
	}

	// 初始化加密
	cipher, err := crypto.New(cfg.Security.EncryptSecretKey)
	if err != nil {
		l.Fatal("error initializing cipher", zap.Error(err))
	}

	st := store.New(db, cipher, cfg.System.DBQueryTimeout)
	defer func() { _ = st.Close() }()

	if err := inits.Bootstrap(ctx, st, cfg, l); err != nil {
		l.Fatal("error bootstrapping admin", zap.Error(err))
	}

	// 初始化 redis 连接
	rdb, err := inits.Redis(cfg.System.RedisConnectionString)
	if err != nil {
		l.Fatal("error initializing Redis connection", zap.Error(err))
	} else if rdb == nil {
		l.Warn("redis is not configured, account state cache and login throttling are disabled")
	}

	// 初始化 JWT
	j, err := jwt.New(cfg.Security.SignatureSecretKey)
	if err != nil {
		l.Fatal("error initializing JWT", zap.Error(err))
	}

	// 初始化目录服务与审计归档
	dir, err := inits.Directory(cfg, l)
	if err != nil {
		l.Fatal("error initializing directory service", zap.Error(err))
	}
	arc, err := inits.Archiver(ctx, cfg)
	if err != nil {
		l.Fatal("error initializing audit archive", zap.Error(err))
	}

	// 准备 handler app
	handlerApp := handlers.NewApp(l.Named("handlers"), st, rdb, j, dir, arc, cfg.Security.LoginMaxFailures).
		WithTrustedProxies(cfg.System.TrustedProxies)

	// 准备 echo 服务
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:       true,
		LogMethod:    true,
		LogStatus:    true,
		LogLatency:   true,
		LogRemoteIP:  true,
		LogUserAgent: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			l.Info("request",
				zap.String("method", v.Method),
				zap.String("URI", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
				zap.String("remote_ip", v.RemoteIP),
			)

			return nil
		},
	}))
	e.Use(middleware.Recover())

	// 绑定 echo 服务
	handlers.RegisterHandlers(e, handlerApp)

	// 添加 API 文档
	if !cfg.System.IsProd {
		if apiJSON, err := apidocs.Load(ctx, ""); err != nil {
			l.Error("error initializing api docs", zap.Error(err))
		} else {
			var opts []apidocs.Opts
			if !cfg.System.APIDocsPublic {
				opts = append(opts, apidocs.WithAuthorizer(apidocs.LoopbackOnly))
			}
			e.Pre(apidocs.Doc("/api", apiJSON, opts...))
		}
	}

	// 启动 echo 服务
	go func() {
		if err := e.Start(cfg.System.Listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
			l.Fatal("shutting down the server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	l.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		l.Error("error shutting down the server", zap.Error(err))
	}
	if rdb != nil {
		_ = rdb.Close()
	}
}
