package handlers

import (
	"context"
	"remote-connection-manager/app/server/constants"
	"remote-connection-manager/app/server/models"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// recordAudit 写入审计记录，失败只记录日志，不影响请求结果
func (a *App) recordAudit(c echo.Context, userID uint, action string, connectionID *uint, details string) {
	// 即使客户端断开也要写完
	ctx, cancel := context.WithTimeout(context.WithoutCancel(c.Request().Context()), constants.AuditWriteTimeout)
	defer cancel()

	entry := &models.AuditLog{
		UserID:       userID,
		ConnectionID: connectionID,
		Action:       action,
		Details:      details,
		IPAddress:    c.RealIP(),
		UserAgent:    c.Request().UserAgent(),
	}
	if err := a.st.AppendAudit(ctx, entry); err != nil {
		a.l.Warn("failed to record audit entry",
			zap.String("action", action),
			zap.Uint("user", userID),
			zap.Error(err),
		)
	}
}
