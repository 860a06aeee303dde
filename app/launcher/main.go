package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"remote-connection-manager/app/launcher/handlers"
	"remote-connection-manager/app/launcher/inits"
	"strconv"

	"go.uber.org/zap"
)

func main() {
	if len(os.Args) != 2 {
		log.Fatalf("usage: %s <connection-id>", os.Args[0])
	}
	connectionID, err := strconv.ParseUint(os.Args[1], 10, 64)
	if err != nil || connectionID == 0 {
		log.Fatalf("invalid connection id: %q", os.Args[1])
	}

	// 初始化配置
	cfg, err := inits.Config()
	if err != nil {
		log.Fatal(fmt.Errorf("error loading config: %w", err))
	}

	// 初始化日志
	l, err := inits.Logger(!cfg.IsProd)
	if err != nil {
		log.Fatal(fmt.Errorf("error initializing logger: %w", err))
	}
	defer func() { _ = l.Sync() }()

	// 切换日志系统
	l.Debug("logger initialized")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	handlerApp := handlers.NewApp(cfg, l)
	if err := handlerApp.Print(ctx, uint(connectionID)); err != nil {
		l.Fatal("failed to print launch descriptor", zap.Uint64("connection", connectionID), zap.Error(err))
	}
}
