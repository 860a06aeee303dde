package handlers

import (
	"net/http"
	"remote-connection-manager/app/server/constants"
	"remote-connection-manager/app/server/models"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (env *testEnv) attempt(username string, password string) int {
	env.t.Helper()
	return env.do(http.MethodPost, "/auth/login", "", map[string]string{
		"username": username,
		"password": password,
	}).Code
}

func TestLoginThrottle(t *testing.T) {
	env := newTestEnv(t, withRedis())
	env.createUser("alice", models.RoleUser)
	key := loginFailuresKey("alice")

	for i := 0; i < 5; i++ {
		assert.Equal(t, http.StatusUnauthorized, env.attempt("alice", "wrong-password"), "attempt %d", i)
	}
	assert.Equal(t, constants.CacheExpireLoginFailures, env.mr.TTL(key))

	// 达到上限后正确的密码也会被拒绝，用户名不区分大小写
	assert.Equal(t, http.StatusTooManyRequests, env.attempt("alice", "secret123"))
	assert.Equal(t, http.StatusTooManyRequests, env.attempt("ALICE", "secret123"))

	env.mr.FastForward(constants.CacheExpireLoginFailures + time.Second)
	assert.Equal(t, http.StatusOK, env.attempt("alice", "secret123"))
}

func TestLoginSuccessResetsFailures(t *testing.T) {
	env := newTestEnv(t, withRedis())
	env.createUser("alice", models.RoleUser)
	key := loginFailuresKey("alice")

	for i := 0; i < 4; i++ {
		require.Equal(t, http.StatusUnauthorized, env.attempt("alice", "wrong-password"))
	}
	require.Equal(t, http.StatusOK, env.attempt("alice", "secret123"))
	assert.False(t, env.mr.Exists(key))

	for i := 0; i < 4; i++ {
		require.Equal(t, http.StatusUnauthorized, env.attempt("alice", "wrong-password"))
	}
	assert.Equal(t, http.StatusOK, env.attempt("alice", "secret123"))
}

func TestLoginFailuresAlwaysExpire(t *testing.T) {
	env := newTestEnv(t, withRedis())
	env.createUser("alice", models.RoleUser)
	key := loginFailuresKey("alice")

	// 没有过期时间的计数会在下一次失败时补上
	require.NoError(t, env.mr.Set(key, "2"))
	assert.Zero(t, env.mr.TTL(key))

	require.Equal(t, http.StatusUnauthorized, env.attempt("alice", "wrong-password"))
	assert.Equal(t, constants.CacheExpireLoginFailures, env.mr.TTL(key))

	got, err := env.mr.Get(key)
	require.NoError(t, err)
	assert.Equal(t, "3", got)
}
