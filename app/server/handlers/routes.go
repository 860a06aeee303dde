package handlers

import (
	"remote-connection-manager/app/server/middlewares"
	"remote-connection-manager/app/server/models"

	"github.com/labstack/echo/v4"
)

// RegisterHandlers 绑定所有路由
func RegisterHandlers(e *echo.Echo, a *App) {
	// 不直接信任客户端提供的转发头
	e.IPExtractor = a.ipExtractor

	// 按路由挂载中间件，避免分组中间件吞掉 404
	authed := []echo.MiddlewareFunc{middlewares.Bearer(a.jwt), a.principal}
	admin := []echo.MiddlewareFunc{middlewares.Bearer(a.jwt), a.principal, a.requireRole(models.RoleAdmin)}

	e.GET("/health", a.HealthCheck)

	e.POST("/auth/login", a.AuthLogin)
	e.POST("/auth/register", a.AuthRegister, a.registrationGate)
	e.POST("/auth/directory-login", a.AuthDirectoryLogin)
	e.GET("/auth/me", a.AuthMe, authed...)
	e.POST("/auth/change-password", a.AuthChangePassword, authed...)

	e.GET("/connections", a.ConnectionList, authed...)
	e.POST("/connections", a.ConnectionCreate, authed...)
	e.GET("/connections/groups", a.ConnectionGroups, authed...)
	e.GET("/connections/:id", a.ConnectionGet, authed...)
	e.PUT("/connections/:id", a.ConnectionUpdate, authed...)
	e.DELETE("/connections/:id", a.ConnectionDelete, authed...)
	e.PATCH("/connections/:id/favorite", a.ConnectionToggleFavorite, authed...)
	e.GET("/connections/:id/launch", a.ConnectionLaunch, authed...)

	e.GET("/users", a.UserList, admin...)
	e.POST("/users", a.UserCreate, admin...)
	e.PUT("/users/:id", a.UserUpdate, admin...)
	e.PATCH("/users/:id/toggle-status", a.UserToggleStatus, admin...)
	e.DELETE("/users/:id", a.UserDelete, admin...)

	e.GET("/audit", a.AuditList, authed...)
	e.GET("/audit/export", a.AuditExport, admin...)
	e.POST("/audit/archive", a.AuditArchive, admin...)

	e.GET("/directory/search", a.DirectorySearch, authed...)
	e.GET("/directory/users/:name", a.DirectoryGetUser, authed...)
}
