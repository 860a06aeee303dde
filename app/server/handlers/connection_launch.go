package handlers

import (
	"fmt"
	"net"
	"net/http"
	"remote-connection-manager/app/server/constants"
	"remote-connection-manager/app/server/models"
	"remote-connection-manager/app/server/store"
	"remote-connection-manager/app/server/utils"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// launchInfo 由桌面端执行，服务端不启动任何进程
type launchInfo struct {
	Type       string   `json:"type"`
	Command    string   `json:"command,omitempty"`
	Args       []string `json:"args"`
	URI        string   `json:"uri,omitempty"`
	Password   *string  `json:"password,omitempty"`
	PreScript  string   `json:"pre_script"`
	PostScript string   `json:"post_script"`
}

func buildLaunch(conn *models.Connection) launchInfo {
	port := conn.Port
	if port == 0 {
		port = store.DefaultPort(conn.Type, conn.URL)
	}
	hostPort := net.JoinHostPort(conn.Host, strconv.Itoa(port))

	info := launchInfo{
		Type:       conn.Type,
		Args:       []string{},
		PreScript:  conn.PreScript,
		PostScript: conn.PostScript,
	}

	switch conn.Type {
	case models.ConnectionTypeRDP:
		info.Command = "mstsc"
		info.Args = []string{"/v:" + hostPort}
	case models.ConnectionTypeSSH:
		target := conn.Host
		if conn.Username != "" {
			target = conn.Username + "@" + conn.Host
		}
		info.Command = "ssh"
		info.Args = []string{"-p", strconv.Itoa(port), target}
	case models.ConnectionTypeTelnet:
		info.Command = "telnet"
		info.Args = []string{conn.Host, strconv.Itoa(port)}
	case models.ConnectionTypeVNC:
		info.Command = "vncviewer"
		info.Args = []string{fmt.Sprintf("%s::%d", conn.Host, port)}
	case models.ConnectionTypeWeb:
		info.URI = conn.URL
		if info.URI == "" {
			info.URI = "https://" + hostPort
		}
	}

	return info
}

func (a *App) ConnectionLaunch(c echo.Context) error {
	p := currentPrincipal(c)

	id, err := utils.ParseID(c.Param("id"))
	if err != nil {
		return a.erm(c, http.StatusBadRequest, err.Error())
	}

	conn, err := a.st.GetConnection(c.Request().Context(), id, p.ID)
	if err != nil {
		return a.storeError(c, err, "failed to get connection", zap.Uint("id", id))
	}

	info := buildLaunch(conn)
	if conn.HasPassword() {
		password, err := a.st.DecryptSecret(conn.PasswordEncrypted)
		if err != nil {
			return a.storeError(c, err, "failed to decrypt connection secret", zap.Uint("id", id))
		}
		info.Password = &password
	}

	a.recordAudit(c, p.ID, constants.AuditLaunchConnection, &conn.ID, connectionDetails(conn))

	return c.JSON(http.StatusOK, info)
}
