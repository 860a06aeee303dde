package handlers

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"net/http"
	"remote-connection-manager/app/server/constants"
	"remote-connection-manager/app/server/models"
	"remote-connection-manager/app/server/store"
	"remote-connection-manager/app/server/utils"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const dateOnlyLayout = "2006-01-02"

// parseAuditDate 接受 RFC 3339 或 YYYY-MM-DD ，结束日期只写日期时包含当天
func parseAuditDate(raw string, end bool) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		if end {
			// 查询条件的结束时间不包含，这里补上一纳秒
			t = t.Add(time.Nanosecond)
		}
		return &t, nil
	}
	t, err := time.Parse(dateOnlyLayout, raw)
	if err != nil {
		return nil, fmt.Errorf("date %q should be RFC 3339 or YYYY-MM-DD", raw)
	}
	if end {
		t = t.AddDate(0, 0, 1)
	}
	return &t, nil
}

// parseAuditQuery 非管理员只能看到自己的记录
func (a *App) parseAuditQuery(c echo.Context, p *Principal) (store.AuditQuery, error) {
	q := store.AuditQuery{
		Action: strings.ToUpper(strings.TrimSpace(c.QueryParam("action"))),
	}

	if raw := c.QueryParam("user_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return q, fmt.Errorf("user_id should be an integer")
		}
		q.UserID = utils.P(uint(id))
	}
	if !p.IsAdmin() {
		q.UserID = utils.P(p.ID)
	}

	var err error
	if q.Start, err = parseAuditDate(c.QueryParam("start_date"), false); err != nil {
		return q, err
	}
	if q.End, err = parseAuditDate(c.QueryParam("end_date"), true); err != nil {
		return q, err
	}
	if q.Start != nil && q.End != nil && !q.Start.Before(*q.End) {
		return q, fmt.Errorf("start_date should be before end_date")
	}

	return q, nil
}

func (a *App) AuditList(c echo.Context) error {
	p := currentPrincipal(c)

	page, limit, ok := a.parsePagination(c)
	if !ok {
		return a.erm(c, http.StatusBadRequest, "page and limit should be positive integers")
	}

	q, err := a.parseAuditQuery(c, p)
	if err != nil {
		return a.erm(c, http.StatusBadRequest, err.Error())
	}
	q.Page, q.Limit = page, limit

	entries, count, err := a.st.ListAudit(c.Request().Context(), q)
	if err != nil {
		return a.storeError(c, err, "failed to list audit entries")
	}

	return c.JSON(http.StatusOK, newListResponse(entries, page, limit, count, a.calcMaxPage(count, limit)))
}

func (a *App) AuditExport(c echo.Context) error {
	p := currentPrincipal(c)

	format := strings.ToLower(c.QueryParam("format"))
	if format == "" {
		format = "json"
	}
	if format != "json" && format != "csv" {
		return a.erm(c, http.StatusBadRequest, "format should be csv or json")
	}

	q, err := a.parseAuditQuery(c, p)
	if err != nil {
		return a.erm(c, http.StatusBadRequest, err.Error())
	}

	entries, err := a.st.ExportAudit(c.Request().Context(), q)
	if err != nil {
		return a.storeError(c, err, "failed to export audit entries")
	}

	body, contentType, err := encodeAudit(entries, format)
	if err != nil {
		a.l.Error("failed to encode audit export", zap.String("format", format), zap.Error(err))
		return a.er(c, http.StatusInternalServerError)
	}

	a.recordAudit(c, p.ID, constants.AuditExport, nil, fmt.Sprintf("format=%s rows=%d", format, len(entries)))

	filename := fmt.Sprintf("audit-%s.%s", a.now().UTC().Format("20060102-150405"), format)
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return c.Blob(http.StatusOK, contentType, body)
}

// AuditArchive 把导出结果上传到对象存储
func (a *App) AuditArchive(c echo.Context) error {
	if a.arc == nil {
		return a.erm(c, http.StatusNotImplemented, "audit archive is not configured")
	}

	p := currentPrincipal(c)

	q, err := a.parseAuditQuery(c, p)
	if err != nil {
		return a.erm(c, http.StatusBadRequest, err.Error())
	}

	rctx := c.Request().Context()
	entries, err := a.st.ExportAudit(rctx, q)
	if err != nil {
		return a.storeError(c, err, "failed to export audit entries")
	}

	body, contentType, err := encodeAudit(entries, "json")
	if err != nil {
		a.l.Error("failed to encode audit archive", zap.Error(err))
		return a.er(c, http.StatusInternalServerError)
	}

	key, err := a.arc.Put(rctx, "audit.json", body, contentType)
	if err != nil {
		a.l.Error("failed to upload audit archive", zap.Error(err))
		return a.erm(c, http.StatusBadGateway, "failed to upload audit archive")
	}

	a.recordAudit(c, p.ID, constants.AuditArchive, nil, fmt.Sprintf("key=%s rows=%d", key, len(entries)))

	return c.JSON(http.StatusCreated, map[string]any{
		"key":  key,
		"rows": len(entries),
	})
}

func encodeAudit(entries []models.AuditLog, format string) ([]byte, string, error) {
	if format == "json" {
		body, err := json.Marshal(entries)
		return body, echo.MIMEApplicationJSON, err
	}

	buf := bytes.NewBuffer(nil)
	w := csv.NewWriter(buf)
	_ = w.Write([]string{"id", "timestamp", "user_id", "connection_id", "action", "details", "ip_address", "user_agent"})
	for _, e := range entries {
		connectionID := ""
		if e.ConnectionID != nil {
			connectionID = strconv.FormatUint(uint64(*e.ConnectionID), 10)
		}
		_ = w.Write([]string{
			strconv.FormatUint(uint64(e.ID), 10),
			e.Timestamp.UTC().Format(time.RFC3339),
			strconv.FormatUint(uint64(e.UserID), 10),
			connectionID,
			e.Action,
			e.Details,
			e.IPAddress,
			e.UserAgent,
		})
	}
	w.Flush()
	return buf.Bytes(), "text/csv; charset=utf-8", w.Error()
}
