package inits

import (
	"fmt"
	"net"
	"os"
	"remote-connection-manager/app/server/config"
	"strconv"
	"strings"
	"time"
)

// 生产环境下密钥的最小长度
const minProdSecretLength = 32

func Config() (*config.Config, error) {
	var cfg config.Config

	{
		mode, exist := os.LookupEnv("MODE")
		cfg.System.IsProd = exist && strings.HasPrefix(strings.ToLower(mode), "p")
	}

	cfg.System.Listen = envOr("LISTEN", ":1323")
	cfg.System.DBConnectionString = envOr("DB_CONN", "connections.db")
	cfg.System.RedisConnectionString = os.Getenv("REDIS_CONN")

	if nets, err := envCIDRs("TRUSTED_PROXIES"); err != nil {
		return nil, err
	} else {
		cfg.System.TrustedProxies = nets
	}

	if public, exist := os.LookupEnv("APIDOCS_PUBLIC"); exist && public != "" {
		v, err := strconv.ParseBool(public)
		if err != nil {
			return nil, fmt.Errorf("APIDOCS_PUBLIC should be a boolean")
		}
		cfg.System.APIDocsPublic = v
	}

	if d, err := envDuration("DB_QUERY_TIMEOUT", 5*time.Second); err != nil {
		return nil, err
	} else {
		cfg.System.DBQueryTimeout = d
	}

	if encsk, exist := os.LookupEnv("ENCRYPT_SECRET_KEY"); !exist || encsk == "" {
		return nil, fmt.Errorf("ENCRYPT_SECRET_KEY environment variable not set")
	} else {
		cfg.Security.EncryptSecretKey = encsk
	}

	if sigsk, exist := os.LookupEnv("SIGNATURE_SECRET_KEY"); !exist || sigsk == "" {
		return nil, fmt.Errorf("SIGNATURE_SECRET_KEY environment variable not set")
	} else {
		cfg.Security.SignatureSecretKey = sigsk
	}

	if cfg.System.IsProd {
		if len(cfg.Security.EncryptSecretKey) < minProdSecretLength {
			return nil, fmt.Errorf("ENCRYPT_SECRET_KEY must be at least %d characters in production", minProdSecretLength)
		}
		if len(cfg.Security.SignatureSecretKey) < minProdSecretLength {
			return nil, fmt.Errorf("SIGNATURE_SECRET_KEY must be at least %d characters in production", minProdSecretLength)
		}
		if cfg.Security.EncryptSecretKey == cfg.Security.SignatureSecretKey {
			return nil, fmt.Errorf("ENCRYPT_SECRET_KEY and SIGNATURE_SECRET_KEY must differ")
		}
	}

	if n, err := envInt("LOGIN_MAX_FAILURES", 5); err != nil {
		return nil, err
	} else {
		cfg.Security.LoginMaxFailures = int64(n)
	}

	// 初始管理员，三者需同时设置
	cfg.Bootstrap.AdminUsername = os.Getenv("ADMIN_USERNAME")
	cfg.Bootstrap.AdminPassword = os.Getenv("ADMIN_PASSWORD")
	cfg.Bootstrap.AdminEmail = os.Getenv("ADMIN_EMAIL")
	if cfg.Bootstrap.AdminUsername != "" && (cfg.Bootstrap.AdminPassword == "" || cfg.Bootstrap.AdminEmail == "") {
		return nil, fmt.Errorf("ADMIN_PASSWORD and ADMIN_EMAIL are required when ADMIN_USERNAME is set")
	}

	if err := directoryConfig(&cfg); err != nil {
		return nil, err
	}

	cfg.Archive.Bucket = os.Getenv("ARCHIVE_S3_BUCKET")
	cfg.Archive.Region = envOr("ARCHIVE_S3_REGION", "us-east-1")
	cfg.Archive.Endpoint = os.Getenv("ARCHIVE_S3_ENDPOINT")
	cfg.Archive.AccessKey = os.Getenv("ARCHIVE_S3_ACCESS_KEY")
	cfg.Archive.SecretKey = os.Getenv("ARCHIVE_S3_SECRET_KEY")
	cfg.Archive.Prefix = envOr("ARCHIVE_S3_PREFIX", "audit/")

	return &cfg, nil
}

func directoryConfig(cfg *config.Config) error {
	mode, exist := os.LookupEnv("DIRECTORY_MODE")
	if !exist || mode == "" {
		// 开发环境默认使用模拟目录，生产环境默认关闭
		if cfg.System.IsProd {
			mode = config.DirectoryModeDisabled
		} else {
			mode = config.DirectoryModeMock
		}
	}
	mode = strings.ToLower(mode)

	switch mode {
	case config.DirectoryModeMock, config.DirectoryModeLive, config.DirectoryModeDisabled:
	default:
		return fmt.Errorf("DIRECTORY_MODE should be one of mock, live, disabled")
	}
	if cfg.System.IsProd && mode == config.DirectoryModeMock {
		// 模拟目录使用公开的固定密码
		return fmt.Errorf("DIRECTORY_MODE mock is not allowed in production")
	}
	cfg.Directory.Mode = mode

	cfg.Directory.URL = os.Getenv("LDAP_URL")
	cfg.Directory.Domain = os.Getenv("LDAP_DOMAIN")
	cfg.Directory.BaseDN = os.Getenv("LDAP_BASE_DN")
	cfg.Directory.BindDN = os.Getenv("LDAP_BIND_DN")
	cfg.Directory.BindPassword = os.Getenv("LDAP_BIND_PASSWORD")

	if d, err := envDuration("LDAP_TIMEOUT", 5*time.Second); err != nil {
		return err
	} else {
		cfg.Directory.Timeout = d
	}

	if n, err := envInt("LDAP_RETRIES", 2); err != nil {
		return err
	} else if n < 0 {
		return fmt.Errorf("LDAP_RETRIES should not be negative")
	} else {
		cfg.Directory.Retries = n
	}

	if mode == config.DirectoryModeLive {
		if cfg.Directory.URL == "" && cfg.Directory.Domain == "" {
			return fmt.Errorf("LDAP_URL or LDAP_DOMAIN is required in live directory mode")
		}
		if cfg.Directory.BaseDN == "" {
			return fmt.Errorf("LDAP_BASE_DN is required in live directory mode")
		}
	}

	return nil
}

func envOr(key string, fallback string) string {
	if v, exist := os.LookupEnv(key); exist && v != "" {
		return v
	}
	return fallback
}

// envCIDRs 读取逗号分隔的网段，单个 IP 视为 /32 或 /128
func envCIDRs(key string) ([]*net.IPNet, error) {
	v := os.Getenv(key)
	if v == "" {
		return nil, nil
	}

	var nets []*net.IPNet
	for _, item := range strings.Split(v, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		if !strings.Contains(item, "/") {
			ip := net.ParseIP(item)
			if ip == nil {
				return nil, fmt.Errorf("%s contains an invalid address: %q", key, item)
			}
			bits := 128
			if ip.To4() != nil {
				ip, bits = ip.To4(), 32
			}
			nets = append(nets, &net.IPNet{IP: ip, Mask: net.CIDRMask(bits, bits)})
			continue
		}
		_, ipNet, err := net.ParseCIDR(item)
		if err != nil {
			return nil, fmt.Errorf("%s contains an invalid network: %q", key, item)
		}
		nets = append(nets, ipNet)
	}
	return nets, nil
}

func envDuration(key string, fallback time.Duration) (time.Duration, error) {
	v, exist := os.LookupEnv(key)
	if !exist || v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s should be a valid duration", key)
	}
	return d, nil
}

func envInt(key string, fallback int) (int, error) {
	v, exist := os.LookupEnv(key)
	if !exist || v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s should be an integer", key)
	}
	return n, nil
}
