package handlers

import (
	"errors"
	"net/http"
	"remote-connection-manager/app/server/directory"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

func (a *App) directoryError(c echo.Context, err error, msg string, fields ...zap.Field) error {
	switch {
	case errors.Is(err, directory.ErrNotFound):
		return a.erm(c, http.StatusNotFound, directory.ErrNotFound.Error())
	case errors.Is(err, directory.ErrUnavailable):
		a.l.Warn(msg, append(fields, zap.Error(err))...)
		return a.erm(c, http.StatusServiceUnavailable, directory.ErrUnavailable.Error())
	}

	a.l.Error(msg, append(fields, zap.Error(err))...)
	return a.er(c, http.StatusInternalServerError)
}

func (a *App) DirectorySearch(c echo.Context) error {
	if a.dir == nil {
		return a.erm(c, http.StatusNotFound, "directory service is disabled")
	}

	q := c.QueryParam("q")
	entries, err := a.dir.Search(c.Request().Context(), q)
	if err != nil {
		return a.directoryError(c, err, "failed to search directory", zap.String("q", q))
	}
	if entries == nil {
		entries = []directory.User{}
	}

	return c.JSON(http.StatusOK, entries)
}

func (a *App) DirectoryGetUser(c echo.Context) error {
	if a.dir == nil {
		return a.erm(c, http.StatusNotFound, "directory service is disabled")
	}

	name := c.Param("name")
	entry, err := a.dir.GetUser(c.Request().Context(), name)
	if err != nil {
		return a.directoryError(c, err, "failed to get directory user", zap.String("name", name))
	}

	return c.JSON(http.StatusOK, entry)
}
