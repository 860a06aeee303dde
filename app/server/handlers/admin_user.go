package handlers

import (
	"fmt"
	"net/http"
	"remote-connection-manager/app/server/constants"
	"remote-connection-manager/app/server/store"
	"remote-connection-manager/app/server/utils"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

func (a *App) UserList(c echo.Context) error {
	page, limit, ok := a.parsePagination(c)
	if !ok {
		return a.erm(c, http.StatusBadRequest, "page and limit should be positive integers")
	}

	users, count, err := a.st.ListUsers(c.Request().Context(), page, limit)
	if err != nil {
		return a.storeError(c, err, "failed to list users")
	}

	resUsers := make([]userInfo, 0, len(users))
	for i := range users {
		resUsers = append(resUsers, newUserInfo(&users[i]))
	}

	return c.JSON(http.StatusOK, newListResponse(resUsers, page, limit, count, a.calcMaxPage(count, limit)))
}

func (a *App) UserCreate(c echo.Context) error {
	p := currentPrincipal(c)

	var req registerRequest
	if err := c.Bind(&req); err != nil {
		a.l.Debug("failed to bind json body", zap.Error(err))
		return a.er(c, http.StatusBadRequest)
	}

	user, err := a.st.CreateUser(c.Request().Context(), store.NewUser{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		return a.storeError(c, err, "failed to create user", zap.String("username", req.Username))
	}

	a.recordAudit(c, p.ID, constants.AuditCreateUser, nil, fmt.Sprintf("user_id=%d username=%s role=%s", user.ID, user.Username, user.Role))

	return c.JSON(http.StatusCreated, newUserInfo(user))
}

func (a *App) UserUpdate(c echo.Context) error {
	p := currentPrincipal(c)

	id, err := utils.ParseID(c.Param("id"))
	if err != nil {
		return a.erm(c, http.StatusBadRequest, err.Error())
	}

	var req store.UserPatch
	if err := c.Bind(&req); err != nil {
		a.l.Debug("failed to bind json body", zap.Error(err))
		return a.er(c, http.StatusBadRequest)
	}

	rctx := c.Request().Context()
	user, err := a.st.UpdateUser(rctx, p.ID, id, req)
	if err != nil {
		return a.storeError(c, err, "failed to update user", zap.Uint("id", id))
	}
	a.publishAccount(rctx, user)

	a.recordAudit(c, p.ID, constants.AuditUpdateUser, nil, fmt.Sprintf("user_id=%d fields=%s", id, strings.Join(patchedFields(&req), ",")))

	return c.JSON(http.StatusOK, newUserInfo(user))
}

func (a *App) UserToggleStatus(c echo.Context) error {
	p := currentPrincipal(c)

	id, err := utils.ParseID(c.Param("id"))
	if err != nil {
		return a.erm(c, http.StatusBadRequest, err.Error())
	}

	rctx := c.Request().Context()
	user, err := a.st.ToggleActive(rctx, p.ID, id)
	if err != nil {
		return a.storeError(c, err, "failed to toggle user status", zap.Uint("id", id))
	}
	a.publishAccount(rctx, user)

	a.recordAudit(c, p.ID, constants.AuditToggleUserStatus, nil, fmt.Sprintf("user_id=%d is_active=%t", id, user.IsActive))

	return c.JSON(http.StatusOK, newUserInfo(user))
}

func (a *App) UserDelete(c echo.Context) error {
	p := currentPrincipal(c)

	id, err := utils.ParseID(c.Param("id"))
	if err != nil {
		return a.erm(c, http.StatusBadRequest, err.Error())
	}

	rctx := c.Request().Context()
	if err := a.st.DeleteUser(rctx, p.ID, id); err != nil {
		return a.storeError(c, err, "failed to delete user", zap.Uint("id", id))
	}
	a.revokeAccount(rctx, id)

	a.recordAudit(c, p.ID, constants.AuditDeleteUser, nil, fmt.Sprintf("user_id=%d", id))

	return c.NoContent(http.StatusNoContent)
}

// patchedFields 审计中只记录字段名，不记录密码
func patchedFields(req *store.UserPatch) []string {
	var fields []string
	if req.Email != nil {
		fields = append(fields, "email")
	}
	if req.Role != nil {
		fields = append(fields, "role")
	}
	if req.IsActive != nil {
		fields = append(fields, "is_active")
	}
	if req.Password != nil {
		fields = append(fields, "password")
	}
	return fields
}
