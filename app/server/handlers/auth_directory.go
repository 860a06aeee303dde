package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"remote-connection-manager/app/server/constants"
	"remote-connection-manager/app/server/directory"
	"remote-connection-manager/app/server/store"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// AuthDirectoryLogin 通过目录服务认证，只为同名且启用的本地账户签发 token
func (a *App) AuthDirectoryLogin(c echo.Context) error {
	if a.dir == nil {
		return a.erm(c, http.StatusNotImplemented, "directory service is disabled")
	}

	rctx := c.Request().Context()

	var req loginRequest
	if err := c.Bind(&req); err != nil {
		a.l.Debug("failed to bind json body", zap.Error(err))
		return a.er(c, http.StatusBadRequest)
	}
	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		return a.erm(c, http.StatusBadRequest, "username and password are required")
	}

	if a.loginThrottled(rctx, req.Username) {
		return a.erm(c, http.StatusTooManyRequests, "too many failed login attempts, try again later")
	}

	entry, err := a.dir.Authenticate(rctx, req.Username, req.Password)
	if err != nil {
		if errors.Is(err, directory.ErrInvalidCredentials) || errors.Is(err, directory.ErrNotFound) || errors.Is(err, directory.ErrDisabled) {
			a.loginFailed(rctx, req.Username)
			a.recordAudit(c, 0, constants.AuditLoginFailed, nil, fmt.Sprintf("username=%s source=directory reason=%s", req.Username, err))
			if errors.Is(err, directory.ErrDisabled) {
				return a.erm(c, http.StatusUnauthorized, directory.ErrDisabled.Error())
			}
			return a.erm(c, http.StatusUnauthorized, directory.ErrInvalidCredentials.Error())
		}
		return a.directoryError(c, err, "failed to authenticate against directory")
	}

	user, err := a.st.GetUserByUsername(rctx, entry.Username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return a.erm(c, http.StatusForbidden, "no local account is linked to this directory user")
		}
		return a.storeError(c, err, "failed to get user", zap.String("username", entry.Username))
	}
	if !user.IsActive {
		return a.erm(c, http.StatusUnauthorized, store.ErrAccountDisabled.Error())
	}
	if err := a.st.TouchLastLogin(rctx, user); err != nil {
		a.l.Error("failed to update last login", zap.Uint("id", user.ID), zap.Error(err))
	}

	a.loginSucceeded(rctx, req.Username)
	a.recordAudit(c, user.ID, constants.AuditLoginDirectory, nil, fmt.Sprintf("dn=%s", entry.DN))

	return a.issueToken(c, user)
}
