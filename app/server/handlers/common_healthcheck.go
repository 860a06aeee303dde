package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

func (a *App) HealthCheck(c echo.Context) error {
	status, code := "ok", http.StatusOK
	if err := a.st.Ping(c.Request().Context()); err != nil {
		a.l.Error("database is unreachable", zap.Error(err))
		status, code = "unavailable", http.StatusServiceUnavailable
	}

	return c.JSON(code, map[string]any{
		"status":    status,
		"timestamp": a.now().UTC(),
	})
}
