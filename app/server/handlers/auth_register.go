package handlers

import (
	"fmt"
	"net/http"
	"remote-connection-manager/app/server/constants"
	"remote-connection-manager/app/server/models"
	"remote-connection-manager/app/server/store"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// AuthRegister 由 registrationGate 保护：第一个账户自动成为管理员
func (a *App) AuthRegister(c echo.Context) error {
	rctx := c.Request().Context()

	var req registerRequest
	if err := c.Bind(&req); err != nil {
		a.l.Debug("failed to bind json body", zap.Error(err))
		return a.er(c, http.StatusBadRequest)
	}

	actor := currentPrincipal(c)
	role := req.Role
	if actor == nil {
		role = models.RoleAdmin
	}

	user, err := a.st.CreateUser(rctx, store.NewUser{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Role:     role,
	})
	if err != nil {
		return a.storeError(c, err, "failed to register user", zap.String("username", req.Username))
	}

	actorID := user.ID
	if actor != nil {
		actorID = actor.ID
	}
	a.recordAudit(c, actorID, constants.AuditRegister, nil, fmt.Sprintf("user_id=%d username=%s role=%s", user.ID, user.Username, user.Role))

	return c.JSON(http.StatusCreated, map[string]uint{
		"userId": user.ID,
	})
}
