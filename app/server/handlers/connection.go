package handlers

import (
	"fmt"
	"net/http"
	"remote-connection-manager/app/server/constants"
	"remote-connection-manager/app/server/models"
	"remote-connection-manager/app/server/store"
	"remote-connection-manager/app/server/utils"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

func (a *App) ConnectionList(c echo.Context) error {
	p := currentPrincipal(c)

	filter := store.ConnectionFilter{
		Type:   c.QueryParam("type"),
		Group:  c.QueryParam("group"),
		Search: c.QueryParam("search"),
	}
	if raw := c.QueryParam("favorite"); raw != "" {
		favorite, err := strconv.ParseBool(raw)
		if err != nil {
			return a.erm(c, http.StatusBadRequest, "favorite should be true or false")
		}
		filter.Favorite = &favorite
	}

	connections, err := a.st.ListConnections(c.Request().Context(), p.ID, filter)
	if err != nil {
		return a.storeError(c, err, "failed to list connections", zap.Uint("user", p.ID))
	}

	resConnections := make([]connectionInfo, 0, len(connections))
	for i := range connections {
		resConnections = append(resConnections, newConnectionInfo(&connections[i]))
	}

	return c.JSON(http.StatusOK, resConnections)
}

func (a *App) ConnectionCreate(c echo.Context) error {
	p := currentPrincipal(c)

	var req store.ConnectionFields
	if err := c.Bind(&req); err != nil {
		a.l.Debug("failed to bind json body", zap.Error(err))
		return a.er(c, http.StatusBadRequest)
	}

	conn, err := a.st.CreateConnection(c.Request().Context(), p.ID, req)
	if err != nil {
		return a.storeError(c, err, "failed to create connection", zap.Uint("user", p.ID))
	}

	a.recordAudit(c, p.ID, constants.AuditCreateConnection, &conn.ID, connectionDetails(conn))

	return c.JSON(http.StatusCreated, newConnectionInfo(conn))
}

func (a *App) ConnectionGroups(c echo.Context) error {
	p := currentPrincipal(c)

	groups, err := a.st.Groups(c.Request().Context(), p.ID)
	if err != nil {
		return a.storeError(c, err, "failed to list groups", zap.Uint("user", p.ID))
	}

	return c.JSON(http.StatusOK, groups)
}

// ConnectionGet 返回包括解密后密码在内的完整信息
func (a *App) ConnectionGet(c echo.Context) error {
	p := currentPrincipal(c)

	id, err := utils.ParseID(c.Param("id"))
	if err != nil {
		return a.erm(c, http.StatusBadRequest, err.Error())
	}

	conn, err := a.st.GetConnection(c.Request().Context(), id, p.ID)
	if err != nil {
		return a.storeError(c, err, "failed to get connection", zap.Uint("id", id))
	}

	password, err := a.st.DecryptSecret(conn.PasswordEncrypted)
	if err != nil {
		return a.storeError(c, err, "failed to decrypt connection secret", zap.Uint("id", id))
	}

	a.recordAudit(c, p.ID, constants.AuditViewConnection, &conn.ID, connectionDetails(conn))

	res := newConnectionInfo(conn)
	if conn.HasPassword() {
		res.Password = &password
	}
	return c.JSON(http.StatusOK, res)
}

func (a *App) ConnectionUpdate(c echo.Context) error {
	p := currentPrincipal(c)

	id, err := utils.ParseID(c.Param("id"))
	if err != nil {
		return a.erm(c, http.StatusBadRequest, err.Error())
	}

	var req store.ConnectionFields
	if err := c.Bind(&req); err != nil {
		a.l.Debug("failed to bind json body", zap.Error(err))
		return a.er(c, http.StatusBadRequest)
	}

	conn, err := a.st.UpdateConnection(c.Request().Context(), id, p.ID, req)
	if err != nil {
		return a.storeError(c, err, "failed to update connection", zap.Uint("id", id))
	}

	a.recordAudit(c, p.ID, constants.AuditUpdateConnection, &conn.ID, connectionDetails(conn))

	return c.JSON(http.StatusOK, newConnectionInfo(conn))
}

func (a *App) ConnectionDelete(c echo.Context) error {
	p := currentPrincipal(c)

	id, err := utils.ParseID(c.Param("id"))
	if err != nil {
		return a.erm(c, http.StatusBadRequest, err.Error())
	}

	if err := a.st.DeleteConnection(c.Request().Context(), id, p.ID); err != nil {
		return a.storeError(c, err, "failed to delete connection", zap.Uint("id", id))
	}

	a.recordAudit(c, p.ID, constants.AuditDeleteConnection, &id, "")

	return c.NoContent(http.StatusNoContent)
}

func (a *App) ConnectionToggleFavorite(c echo.Context) error {
	p := currentPrincipal(c)

	id, err := utils.ParseID(c.Param("id"))
	if err != nil {
		return a.erm(c, http.StatusBadRequest, err.Error())
	}

	conn, err := a.st.ToggleFavorite(c.Request().Context(), id, p.ID)
	if err != nil {
		return a.storeError(c, err, "failed to toggle favorite", zap.Uint("id", id))
	}

	a.recordAudit(c, p.ID, constants.AuditToggleFavorite, &conn.ID, fmt.Sprintf("is_favorite=%t", conn.IsFavorite))

	return c.JSON(http.StatusOK, newConnectionInfo(conn))
}

func connectionDetails(conn *models.Connection) string {
	return fmt.Sprintf("name=%s type=%s", conn.Name, conn.Type)
}
