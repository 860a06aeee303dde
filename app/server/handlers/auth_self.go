package handlers

import (
	"errors"
	"net/http"
	"remote-connection-manager/app/server/constants"
	"remote-connection-manager/app/server/store"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

func (a *App) AuthMe(c echo.Context) error {
	p := currentPrincipal(c)

	user, err := a.st.GetUser(c.Request().Context(), p.ID)
	if err != nil {
		return a.storeError(c, err, "failed to get user", zap.Uint("id", p.ID))
	}

	return c.JSON(http.StatusOK, newUserInfo(user))
}

func (a *App) AuthChangePassword(c echo.Context) error {
	p := currentPrincipal(c)

	var req changePasswordRequest
	if err := c.Bind(&req); err != nil {
		a.l.Debug("failed to bind json body", zap.Error(err))
		return a.er(c, http.StatusBadRequest)
	}
	if req.CurrentPassword == "" || req.NewPassword == "" {
		return a.erm(c, http.StatusBadRequest, "currentPassword and newPassword are required")
	}

	if err := a.st.ChangePassword(c.Request().Context(), p.ID, req.CurrentPassword, req.NewPassword); err != nil {
		if errors.Is(err, store.ErrInvalidCredentials) {
			// 会话本身有效，不能返回 401
			return a.erm(c, http.StatusBadRequest, "current password is incorrect")
		}
		return a.storeError(c, err, "failed to change password", zap.Uint("id", p.ID))
	}

	a.recordAudit(c, p.ID, constants.AuditChangePassword, nil, "")

	return c.NoContent(http.StatusNoContent)
}
