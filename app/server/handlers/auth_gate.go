package handlers

import (
	"errors"
	"net/http"
	"remote-connection-manager/app/server/middlewares"
	"remote-connection-manager/app/server/models"
	"remote-connection-manager/app/server/store"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const contextKeyPrincipal = "principal"

// Principal 通过校验的请求主体
type Principal struct {
	ID       uint
	Username string
	Role     string
}

func (p *Principal) IsAdmin() bool {
	return p.Role == models.RoleAdmin
}

// principal 在 token 校验之后重新检查账户是否存在且处于启用状态
func (a *App) principal(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		tokenUser := middlewares.TokenUser(c)
		if tokenUser == nil {
			return a.er(c, http.StatusUnauthorized)
		}

		account, err := a.loadAccount(c.Request().Context(), tokenUser.ID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return a.erm(c, http.StatusUnauthorized, "account no longer exists")
			}
			a.l.Error("failed to load account", zap.Uint("id", tokenUser.ID), zap.Error(err))
			return a.er(c, http.StatusInternalServerError)
		}
		if !account.IsActive {
			return a.erm(c, http.StatusUnauthorized, store.ErrAccountDisabled.Error())
		}

		// 角色以数据库为准，旧 token 中的角色不再可信
		c.Set(contextKeyPrincipal, &Principal{
			ID:       account.ID,
			Username: account.Username,
			Role:     account.Role,
		})
		return next(c)
	}
}

// requireRole 管理员视为拥有所有角色
func (a *App) requireRole(role string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			p := currentPrincipal(c)
			if p == nil {
				return a.er(c, http.StatusUnauthorized)
			}
			if p.Role != role && !p.IsAdmin() {
				return a.erm(c, http.StatusForbidden, "insufficient permissions")
			}
			return next(c)
		}
	}
}

// registrationGate 没有任何用户时允许公开注册，之后只有管理员可以注册
func (a *App) registrationGate(next echo.HandlerFunc) echo.HandlerFunc {
	gated := middlewares.Bearer(a.jwt)(a.principal(a.requireRole(models.RoleAdmin)(next)))

	return func(c echo.Context) error {
		count, err := a.st.CountUsers(c.Request().Context())
		if err != nil {
			a.l.Error("failed to count users", zap.Error(err))
			return a.er(c, http.StatusInternalServerError)
		}
		if count == 0 {
			return next(c)
		}
		return gated(c)
	}
}

func currentPrincipal(c echo.Context) *Principal {
	p, _ := c.Get(contextKeyPrincipal).(*Principal)
	return p
}
