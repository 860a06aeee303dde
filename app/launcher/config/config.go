package config

import (
	"time"
)

type Config struct {
	// 基础配置
	IsProd bool

	// 与 Server 通信配置
	ServerEndpoint string
	Token          string // 已有的 token ，设置后不再登录
	Username       string
	Password       string
	RequestTimeout time.Duration

	// 输出格式
	Output string
}

const (
	OutputJSON    = "json"    // 完整的启动信息，交给桌面端执行
	OutputCommand = "command" // 只输出命令行，不包含密码
)
