package handlers

import (
	"context"
	"net/http"
	"remote-connection-manager/app/server/constants"
	"remote-connection-manager/app/server/models"
	"remote-connection-manager/app/server/store"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserAdministration(t *testing.T) {
	env := newTestEnv(t)
	root := env.createUser("root", models.RoleAdmin)
	token := env.login("root")

	rec := env.do(http.MethodPost, "/users", token, map[string]string{
		"username": "alice",
		"email":    "alice@example.com",
		"password": "secret123",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var alice userInfo
	decode(t, rec, &alice)
	assert.Equal(t, models.RoleUser, alice.Role)
	assert.True(t, alice.IsActive)

	rec = env.do(http.MethodPost, "/users", token, map[string]string{
		"username": "alice",
		"email":    "other@example.com",
		"password": "secret123",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = env.do(http.MethodGet, "/users?page=1&limit=1", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var page listResponse[userInfo]
	decode(t, rec, &page)
	assert.Equal(t, int64(2), page.Total)
	assert.Equal(t, int64(2), page.PageMax)
	assert.Equal(t, 1, page.Page)
	require.Len(t, page.List, 1)
	assert.Equal(t, "root", page.List[0].Username)

	assert.Equal(t, http.StatusBadRequest, env.do(http.MethodGet, "/users?page=0", token, nil).Code)
	// 偏移量溢出
	assert.Equal(t, http.StatusBadRequest, env.do(http.MethodGet, "/users?page=9223372036854775807&limit=500", token, nil).Code)
	assert.Equal(t, http.StatusBadRequest, env.do(http.MethodGet, "/users?page=4294969&limit=500", token, nil).Code)
	rec = env.do(http.MethodGet, "/users?page=3&limit=500", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &page)
	assert.Equal(t, 3, page.Page)
	assert.Empty(t, page.List)

	rec = env.do(http.MethodPut, "/users/"+itoa(alice.ID), token, map[string]any{"email": "alice@corp.example.com"})
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &alice)
	assert.Equal(t, "alice@corp.example.com", alice.Email)

	// 不能停用或删除自己
	rec = env.do(http.MethodPut, "/users/"+itoa(root.ID), token, map[string]any{"is_active": false})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, http.StatusBadRequest, env.do(http.MethodPatch, "/users/"+itoa(root.ID)+"/toggle-status", token, nil).Code)
	assert.Equal(t, http.StatusBadRequest, env.do(http.MethodDelete, "/users/"+itoa(root.ID), token, nil).Code)

	assert.Equal(t, http.StatusNotFound, env.do(http.MethodDelete, "/users/9999", token, nil).Code)
	assert.Equal(t, http.StatusNoContent, env.do(http.MethodDelete, "/users/"+itoa(alice.ID), token, nil).Code)

	actions := env.auditActions(root.ID)
	for _, action := range []string{constants.AuditCreateUser, constants.AuditUpdateUser, constants.AuditDeleteUser} {
		assert.Contains(t, actions, action)
	}
}

func TestDeleteUserRemovesConnections(t *testing.T) {
	env := newTestEnv(t)
	env.createUser("root", models.RoleAdmin)
	alice := env.createUser("alice", models.RoleUser)
	adminToken := env.login("root")
	aliceToken := env.login("alice")

	rec := env.do(http.MethodPost, "/connections", aliceToken, map[string]any{"name": "db", "type": "ssh", "host": "db.lan"})
	require.Equal(t, http.StatusCreated, rec.Code)

	require.Equal(t, http.StatusNoContent, env.do(http.MethodDelete, "/users/"+itoa(alice.ID), adminToken, nil).Code)

	list, err := env.st.ListConnections(context.Background(), alice.ID, store.ConnectionFilter{})
	require.NoError(t, err)
	assert.Empty(t, list)
}
