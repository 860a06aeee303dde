package handlers

import (
	"math"
	"remote-connection-manager/app/server/constants"
	"strconv"

	"github.com/labstack/echo/v4"
)

type listResponse[T any] struct {
	Page    int   `json:"page"`
	Limit   int   `json:"limit"`
	PageMax int64 `json:"page_max"`
	Total   int64 `json:"total"`
	List    []T   `json:"list"`
}

// parsePagination 读取从 1 开始的 page 与 limit ，返回从 0 开始的页码
func (a *App) parsePagination(c echo.Context) (int, int, bool) {
	page, limit := 1, constants.PaginationDefaultLimit

	if raw := c.QueryParam("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return 0, 0, false
		}
		page = n
	}
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return 0, 0, false
		}
		limit = min(n, constants.PaginationMaxLimit)
	}

	// 偏移量需要能放进数据库的整数
	if page-1 > math.MaxInt32/limit {
		return 0, 0, false
	}

	return page - 1, limit, true
}

func (a *App) calcMaxPage(count int64, limit int) int64 {
	pageMax := count / int64(limit)
	if (count % int64(limit)) != 0 {
		pageMax++
	}
	return pageMax
}

func newListResponse[T any](list []T, page int, limit int, total int64, pageMax int64) *listResponse[T] {
	if list == nil {
		list = []T{}
	}
	return &listResponse[T]{
		Page:    page + 1,
		Limit:   limit,
		PageMax: pageMax,
		Total:   total,
		List:    list,
	}
}
