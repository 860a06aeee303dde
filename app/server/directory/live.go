package directory

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/go-ldap/ldap/v3"
	"go.uber.org/zap"
)

const (
	searchSizeLimit = 50

	// userAccountControl 中的 ACCOUNTDISABLE 位
	uacAccountDisable = 0x2
)

var userAttributes = []string{
	"sAMAccountName",
	"displayName",
	"mail",
	"department",
	"title",
	"memberOf",
	"userAccountControl",
	"accountExpires",
	"lastLogonTimestamp",
	"pwdLastSet",
}

type LiveConfig struct {
	URL          string
	Domain       string
	BaseDN       string
	BindDN       string
	BindPassword string
	Timeout      time.Duration
	Retries      int
}

// conn 是 Live 使用到的 LDAP 连接操作
type conn interface {
	Bind(username, password string) error
	Search(req *ldap.SearchRequest) (*ldap.SearchResult, error)
	Close()
}

type ldapConn struct {
	c *ldap.Conn
}

func (l *ldapConn) Bind(username, password string) error { return l.c.Bind(username, password) }
func (l *ldapConn) Search(req *ldap.SearchRequest) (*ldap.SearchResult, error) {
	return l.c.Search(req)
}
func (l *ldapConn) Close() { l.c.Close() }

// Live 连接真实的 LDAP / AD 服务。
// 依次尝试配置的 URL 与域名 SRV 记录中的服务器，每个服务器重试 Retries 次
type Live struct {
	cfg LiveConfig
	l   *zap.Logger

	dial      func(ctx context.Context, url string, timeout time.Duration) (conn, error)
	lookupSRV func(ctx context.Context, service, proto, name string) (string, []*net.SRV, error)
}

func NewLive(cfg LiveConfig, l *zap.Logger) *Live {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	return &Live{
		cfg:       cfg,
		l:         l,
		dial:      dialLDAP,
		lookupSRV: net.DefaultResolver.LookupSRV,
	}
}

func dialLDAP(ctx context.Context, url string, timeout time.Duration) (conn, error) {
	c, err := ldap.DialURL(url, ldap.DialWithDialer(&net.Dialer{Timeout: timeout}))
	if err != nil {
		return nil, err
	}
	c.SetTimeout(timeout)
	return &ldapConn{c: c}, nil
}

// srvEndpoints 通过 DNS SRV 记录查找域控制器
func (d *Live) srvEndpoints(ctx context.Context) []string {
	if d.cfg.Domain == "" {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, d.cfg.Timeout)
	defer cancel()

	_, records, err := d.lookupSRV(ctx, "ldap", "tcp", d.cfg.Domain)
	if err != nil {
		d.l.Warn("ldap srv lookup failed", zap.String("domain", d.cfg.Domain), zap.Error(err))
		return nil
	}

	endpoints := make([]string, 0, len(records))
	for _, r := range records {
		endpoints = append(endpoints, fmt.Sprintf("ldap://%s:%d", strings.TrimSuffix(r.Target, "."), r.Port))
	}
	return endpoints
}

func (d *Live) tryEndpoint(ctx context.Context, url string) (conn, error) {
	var lastErr error
	for attempt := 0; attempt <= d.cfg.Retries; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		c, err := d.dial(ctx, url, d.cfg.Timeout)
		if err != nil {
			lastErr = err
			d.l.Debug("ldap dial failed", zap.String("url", url), zap.Int("attempt", attempt+1), zap.Error(err))
			continue
		}

		if d.cfg.BindDN != "" {
			if err := c.Bind(d.cfg.BindDN, d.cfg.BindPassword); err != nil {
				c.Close()
				// 服务账号凭据错误不需要重试
				if ldap.IsErrorWithCode(err, ldap.LDAPResultInvalidCredentials) {
					return nil, fmt.Errorf("service account bind: %w", err)
				}
				lastErr = err
				continue
			}
		}

		return c, nil
	}
	return nil, lastErr
}

// connect 先尝试配置的 URL ，失败后回退到 DNS SRV 记录
func (d *Live) connect(ctx context.Context) (conn, error) {
	var lastErr error

	if d.cfg.URL != "" {
		c, err := d.tryEndpoint(ctx, d.cfg.URL)
		if err == nil {
			return c, nil
		}
		lastErr = err
		d.l.Warn("ldap endpoint unavailable", zap.String("url", d.cfg.URL), zap.Error(err))
	}

	for _, url := range d.srvEndpoints(ctx) {
		c, err := d.tryEndpoint(ctx, url)
		if err == nil {
			return c, nil
		}
		lastErr = err
		d.l.Warn("ldap endpoint unavailable", zap.String("url", url), zap.Error(err))
	}

	if lastErr == nil {
		lastErr = errors.New("no endpoints")
	}
	return nil, fmt.Errorf("%w: %w", ErrUnavailable, lastErr)
}

func (d *Live) search(c conn, filter string, sizeLimit int) ([]*ldap.Entry, error) {
	req := ldap.NewSearchRequest(
		d.cfg.BaseDN,
		ldap.ScopeWholeSubtree,
		ldap.NeverDerefAliases,
		sizeLimit,
		int(d.cfg.Timeout.Seconds()),
		false,
		filter,
		userAttributes,
		nil,
	)

	res, err := c.Search(req)
	if err != nil {
		// 超出数量限制时仍然返回已有的结果
		if ldap.IsErrorWithCode(err, ldap.LDAPResultSizeLimitExceeded) && res != nil {
			return res.Entries, nil
		}
		return nil, fmt.Errorf("ldap search: %w", err)
	}
	return res.Entries, nil
}

func (d *Live) findUser(c conn, username string) (*User, error) {
	filter := fmt.Sprintf("(&(objectCategory=person)(objectClass=user)(sAMAccountName=%s))", ldap.EscapeFilter(username))
	entries, err := d.search(c, filter, 2)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, ErrNotFound
	}
	return entryToUser(entries[0]), nil
}

func (d *Live) Search(ctx context.Context, query string) ([]User, error) {
	c, err := d.connect(ctx)
	if err != nil {
		return nil, err
	}
	defer c.Close()

	filter := "(&(objectCategory=person)(objectClass=user)(sAMAccountName=*))"
	if q := ldap.EscapeFilter(strings.TrimSpace(query)); q != "" {
		filter = fmt.Sprintf("(&(objectCategory=person)(objectClass=user)(|(sAMAccountName=*%s*)(displayName=*%s*)(mail=*%s*)))", q, q, q)
	}

	entries, err := d.search(c, filter, searchSizeLimit)
	if err != nil {
		return nil, err
	}

	users := make([]User, 0, len(entries))
	for _, e := range entries {
		users = append(users, *entryToUser(e))
	}
	return users, nil
}

func (d *Live) GetUser(ctx context.Context, username string) (*User, error) {
	c, err := d.connect(ctx)
	if err != nil {
		return nil, err
	}
	defer c.Close()

	return d.findUser(c, strings.TrimSpace(username))
}

func (d *Live) Authenticate(ctx context.Context, username string, password string) (*User, error) {
	// 空密码会变成匿名绑定，直接拒绝
	if password == "" || strings.TrimSpace(username) == "" {
		return nil, ErrInvalidCredentials
	}

	c, err := d.connect(ctx)
	if err != nil {
		return nil, err
	}
	defer c.Close()

	user, err := d.findUser(c, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := c.Bind(user.DN, password); err != nil {
		if ldap.IsErrorWithCode(err, ldap.LDAPResultInvalidCredentials) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("%w: user bind: %w", ErrUnavailable, err)
	}

	if !user.Enabled {
		return nil, ErrDisabled
	}
	if user.AccountExpires != nil && user.AccountExpires.Before(time.Now()) {
		return nil, ErrDisabled
	}

	return user, nil
}

func entryToUser(e *ldap.Entry) *User {
	uac, _ := strconv.ParseInt(e.GetAttributeValue("userAccountControl"), 10, 64)

	u := &User{
		Username:        e.GetAttributeValue("sAMAccountName"),
		DisplayName:     e.GetAttributeValue("displayName"),
		Email:           e.GetAttributeValue("mail"),
		Department:      e.GetAttributeValue("department"),
		Title:           e.GetAttributeValue("title"),
		DN:              e.DN,
		Groups:          groupNames(e.GetAttributeValues("memberOf")),
		Enabled:         uac&uacAccountDisable == 0,
		AccountExpires:  FileTimeToTime(e.GetAttributeValue("accountExpires")),
		LastLogon:       FileTimeToTime(e.GetAttributeValue("lastLogonTimestamp")),
		PasswordLastSet: FileTimeToTime(e.GetAttributeValue("pwdLastSet")),
	}
	return u
}

// groupNames 从 memberOf 的 DN 中取出 CN
func groupNames(dns []string) []string {
	groups := make([]string, 0, len(dns))
	for _, dn := range dns {
		parsed, err := ldap.ParseDN(dn)
		if err != nil || len(parsed.RDNs) == 0 || len(parsed.RDNs[0].Attributes) == 0 {
			groups = append(groups, dn)
			continue
		}
		groups = append(groups, parsed.RDNs[0].Attributes[0].Value)
	}
	return groups
}
