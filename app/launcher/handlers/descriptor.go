package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"remote-connection-manager/app/launcher/config"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// Descriptor 服务端返回的启动信息
type Descriptor struct {
	Type       string   `json:"type"`
	Command    string   `json:"command"`
	Args       []string `json:"args"`
	URI        string   `json:"uri"`
	Password   *string  `json:"password"`
	PreScript  string   `json:"pre_script"`
	PostScript string   `json:"post_script"`
}

func (a *App) Fetch(ctx context.Context, connectionID uint) (*Descriptor, error) {
	token, err := a.ensureToken(ctx)
	if err != nil {
		return nil, err
	}

	var d Descriptor
	if err := a.request(ctx, http.MethodGet, fmt.Sprintf("/connections/%d/launch", connectionID), token, nil, &d); err != nil {
		a.l.Error("failed to fetch launch descriptor", zap.Uint("connection", connectionID), zap.Error(err))
		return nil, err
	}
	return &d, nil
}

// Print 获取启动信息并按配置的格式输出，由桌面端负责执行
func (a *App) Print(ctx context.Context, connectionID uint) error {
	d, err := a.Fetch(ctx, connectionID)
	if err != nil {
		return err
	}

	a.l.Debug("launch descriptor fetched", zap.Uint("connection", connectionID), zap.String("type", d.Type))

	if a.cfg.Output == config.OutputCommand {
		line, err := d.CommandLine()
		if err != nil {
			return fmt.Errorf("connection %d: %w", connectionID, err)
		}
		_, err = fmt.Fprintln(a.out, line)
		return err
	}

	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(d)
}

// CommandLine 拼接可直接粘贴到终端的命令，网页类型返回地址
func (d *Descriptor) CommandLine() (string, error) {
	if d.Command == "" {
		if d.URI == "" {
			return "", fmt.Errorf("launch descriptor has neither command nor uri")
		}
		return d.URI, nil
	}

	parts := make([]string, 0, len(d.Args)+1)
	parts = append(parts, quote(d.Command))
	for _, arg := range d.Args {
		parts = append(parts, quote(arg))
	}
	return strings.Join(parts, " "), nil
}

func quote(s string) string {
	if s != "" && !strings.ContainsAny(s, " \t\"'\\$`") {
		return s
	}
	return strconv.Quote(s)
}
