package apidocs

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	apiJSON, err := Load(context.Background(), "http://127.0.0.1:1323")
	require.NoError(t, err)

	var doc struct {
		Servers []struct {
			URL string `json:"url"`
		} `json:"servers"`
		Paths map[string]any `json:"paths"`
	}
	require.NoError(t, json.Unmarshal(apiJSON, &doc))

	require.Len(t, doc.Servers, 1)
	assert.Equal(t, "http://127.0.0.1:1323", doc.Servers[0].URL)
	for _, p := range []string{"/health", "/auth/login", "/connections/{id}/launch", "/users/{id}/toggle-status", "/audit/archive", "/directory/users/{name}"} {
		assert.Contains(t, doc.Paths, p)
	}
}

func TestDoc(t *testing.T) {
	e := echo.New()
	e.Pre(Doc("/api", []byte(`{"openapi":"3.0.3"}`), WithAuthorizer(func(r *http.Request) bool {
		return r.Header.Get("X-Deny") == ""
	})))
	e.GET("/health", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	serve := func(path string, deny bool) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		if deny {
			req.Header.Set("X-Deny", "1")
		}
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		return rec
	}

	rec := serve("/api/apispec.json", false)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"openapi":"3.0.3"}`, rec.Body.String())

	rec = serve("/api/apidocs", false)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "/api/apispec.json")

	assert.Equal(t, http.StatusFound, serve("/api", false).Code)
	assert.Equal(t, http.StatusForbidden, serve("/api/apidocs", true).Code)
	assert.Equal(t, http.StatusOK, serve("/health", false).Code)
}

func TestLoopbackOnly(t *testing.T) {
	e := echo.New()
	e.Pre(Doc("/api", []byte(`{"openapi":"3.0.3"}`), WithAuthorizer(LoopbackOnly)))

	for _, tt := range []struct {
		remote string
		code   int
	}{
		{remote: "127.0.0.1:50000", code: http.StatusOK},
		{remote: "[::1]:50000", code: http.StatusOK},
		{remote: "192.0.2.10:50000", code: http.StatusForbidden},
		{remote: "garbage", code: http.StatusForbidden},
	} {
		req := httptest.NewRequest(http.MethodGet, "/api/apispec.json", nil)
		req.RemoteAddr = tt.remote
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		assert.Equal(t, tt.code, rec.Code, tt.remote)
	}
}
