package handlers

import (
	"io"
	"net/http"
	"os"
	"remote-connection-manager/app/launcher/config"

	"go.uber.org/zap"
)

type App struct {
	cfg    *config.Config
	l      *zap.Logger
	client *http.Client
	out    io.Writer

	token string
}

func NewApp(cfg *config.Config, l *zap.Logger) *App {
	return &App{
		cfg:    cfg,
		l:      l,
		client: &http.Client{Timeout: cfg.RequestTimeout},
		out:    os.Stdout,
		token:  cfg.Token,
	}
}
