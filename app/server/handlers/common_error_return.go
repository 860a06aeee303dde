package handlers

import (
	"errors"
	"net/http"
	"remote-connection-manager/app/server/store"
	"remote-connection-manager/app/server/types"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

func (a *App) er(c echo.Context, statusCode int) error {
	return a.erm(c, statusCode, http.StatusText(statusCode))
}

func (a *App) erm(c echo.Context, statusCode int, message string) error {
	return c.JSON(statusCode, &types.ErrorMessage{
		Message: message,
	})
}

// storeError 把存储层错误映射为响应，未知错误只记录日志
func (a *App) storeError(c echo.Context, err error, msg string, fields ...zap.Field) error {
	switch {
	case errors.Is(err, store.ErrValidation):
		return a.erm(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, store.ErrSelfAction):
		return a.erm(c, http.StatusBadRequest, store.ErrSelfAction.Error())
	case errors.Is(err, store.ErrConflict):
		return a.erm(c, http.StatusConflict, err.Error())
	case errors.Is(err, store.ErrNotFound):
		return a.er(c, http.StatusNotFound)
	case errors.Is(err, store.ErrInvalidCredentials):
		return a.erm(c, http.StatusUnauthorized, store.ErrInvalidCredentials.Error())
	case errors.Is(err, store.ErrAccountDisabled):
		return a.erm(c, http.StatusUnauthorized, store.ErrAccountDisabled.Error())
	}

	a.l.Error(msg, append(fields, zap.Error(err))...)
	return a.er(c, http.StatusInternalServerError)
}
