package config

import (
	"net"
	"time"
)

type Config struct {
	System struct {
		IsProd                bool          // 是否为生产环境
		Listen                string        // 监听地址
		DBConnectionString    string        // 数据库连接字符串， postgres DSN 或者 sqlite 文件路径
		DBQueryTimeout        time.Duration // 单次存储操作的超时时间
		RedisConnectionString string        // Redis 连接字符串，为空时不启用缓存与登录限流
		TrustedProxies        []*net.IPNet  // 可信反向代理，为空时直接使用连接的对端地址
		APIDocsPublic         bool          // 非生产环境下是否允许非本机访问 API 文档
	}
	Security struct {
		EncryptSecretKey   string // 加密密钥，用于加密数据库中的连接密码，设定后不能更改
		SignatureSecretKey string // 签名密钥，用于签发 JWT ，更新会导致旧有会话失效
		LoginMaxFailures   int64  // 登录失败次数上限（需要 Redis ）
	}
	Bootstrap struct {
		AdminUsername string // 数据库为空时创建的管理员
		AdminPassword string
		AdminEmail    string
	}
	Directory struct {
		Mode         string // mock / live / disabled
		URL          string // ldap://dc.example.com:389
		Domain       string // 用于 DNS SRV 回退查询
		BaseDN       string
		BindDN       string
		BindPassword string
		Timeout      time.Duration
		Retries      int
	}
	Archive struct {
		Bucket    string // 为空时不启用审计归档
		Region    string
		Endpoint  string // S3 兼容服务的地址（例如 MinIO ）
		AccessKey string
		SecretKey string
		Prefix    string
	}
}

const (
	DirectoryModeMock     = "mock"
	DirectoryModeLive     = "live"
	DirectoryModeDisabled = "disabled"
)
