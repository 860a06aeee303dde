package inits

import (
	"fmt"
	"remote-connection-manager/app/server/config"
	"remote-connection-manager/app/server/directory"

	"go.uber.org/zap"
)

// Directory 根据配置选择目录服务，关闭时返回 nil
func Directory(cfg *config.Config, l *zap.Logger) (directory.Directory, error) {
	switch cfg.Directory.Mode {
	case config.DirectoryModeMock:
		l.Info("using mock directory service")
		return directory.NewMock(), nil
	case config.DirectoryModeLive:
		return directory.NewLive(directory.LiveConfig{
			URL:          cfg.Directory.URL,
			Domain:       cfg.Directory.Domain,
			BaseDN:       cfg.Directory.BaseDN,
			BindDN:       cfg.Directory.BindDN,
			BindPassword: cfg.Directory.BindPassword,
			Timeout:      cfg.Directory.Timeout,
			Retries:      cfg.Directory.Retries,
		}, l.Named("directory")), nil
	case config.DirectoryModeDisabled:
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown directory mode %q", cfg.Directory.Mode)
	}
}
