package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"remote-connection-manager/app/server/constants"
	"remote-connection-manager/app/server/jwt"
	"remote-connection-manager/app/server/models"
	"remote-connection-manager/app/server/store"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func (a *App) AuthLogin(c echo.Context) error {
	rctx := c.Request().Context()

	// 绑定请求体
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		a.l.Debug("failed to bind json body", zap.Error(err))
		return a.er(c, http.StatusBadRequest)
	}

	// 没有写用户名或密码
	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		return a.erm(c, http.StatusBadRequest, "username and password are required")
	}

	if a.loginThrottled(rctx, req.Username) {
		return a.erm(c, http.StatusTooManyRequests, "too many failed login attempts, try again later")
	}

	user, err := a.st.Authenticate(rctx, req.Username, req.Password)
	if err != nil {
		if errors.Is(err, store.ErrInvalidCredentials) || errors.Is(err, store.ErrAccountDisabled) {
			a.loginFailed(rctx, req.Username)
			a.recordAudit(c, 0, constants.AuditLoginFailed, nil, fmt.Sprintf("username=%s reason=%s", req.Username, err))
		}
		return a.storeError(c, err, "failed to authenticate", zap.String("username", req.Username))
	}

	a.loginSucceeded(rctx, req.Username)
	a.recordAudit(c, user.ID, constants.AuditLogin, nil, "")

	return a.issueToken(c, user)
}

// issueToken 签出 JWT 并返回登录结果
func (a *App) issueToken(c echo.Context, user *models.User) error {
	token, expires, err := a.jwt.SignToken(&jwt.User{
		ID:       user.ID,
		Username: user.Username,
		Role:     user.Role,
	})
	if err != nil {
		a.l.Error("failed to sign token", zap.Error(err))
		return a.er(c, http.StatusInternalServerError)
	}

	return c.JSON(http.StatusOK, &loginResponse{
		Token:     token,
		ExpiresAt: expires,
		User:      newUserInfo(user),
	})
}

// loginThrottled 未配置 Redis 时不限流
func (a *App) loginThrottled(ctx context.Context, username string) bool {
	if a.rdb == nil || a.loginMaxFailures <= 0 {
		return false
	}
	n, err := a.rdb.Get(ctx, loginFailuresKey(username)).Int64()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			a.l.Error("failed to query login failures", zap.String("username", username), zap.Error(err))
		}
		return false
	}
	return n >= a.loginMaxFailures
}

// countFailure 计数与设置过期在同一脚本中完成，窗口从第一次失败开始计算
var countFailure = redis.NewScript(`
local n = redis.call("INCR", KEYS[1])
if n == 1 or redis.call("PTTL", KEYS[1]) < 0 then
	redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return n
`)

func (a *App) loginFailed(ctx context.Context, username string) {
	if a.rdb == nil {
		return
	}
	key := loginFailuresKey(username)
	if err := countFailure.Run(ctx, a.rdb, []string{key}, constants.CacheExpireLoginFailures.Milliseconds()).Err(); err != nil {
		a.l.Error("failed to count login failure", zap.String("username", username), zap.Error(err))
	}
}

func (a *App) loginSucceeded(ctx context.Context, username string) {
	if a.rdb == nil {
		return
	}
	if err := a.rdb.Del(ctx, loginFailuresKey(username)).Err(); err != nil {
		a.l.Error("failed to reset login failures", zap.String("username", username), zap.Error(err))
	}
}

func loginFailuresKey(username string) string {
	return fmt.Sprintf(constants.CacheKeyLoginFailures, strings.ToLower(username))
}
