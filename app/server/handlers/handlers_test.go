package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"remote-connection-manager/app/server/archive"
	"remote-connection-manager/app/server/crypto"
	"remote-connection-manager/app/server/directory"
	"remote-connection-manager/app/server/jwt"
	"remote-connection-manager/app/server/models"
	"remote-connection-manager/app/server/store"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type fakeArchiver struct {
	mu      sync.Mutex
	objects map[string][]byte
	err     error
}

func (f *fakeArchiver) Put(ctx context.Context, name string, body []byte, contentType string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.objects == nil {
		f.objects = make(map[string][]byte)
	}
	key := fmt.Sprintf("audit/%d-%s", len(f.objects), name)
	f.objects[key] = body
	return key, nil
}

var _ archive.Archiver = (*fakeArchiver)(nil)

type testEnv struct {
	t   *testing.T
	e   *echo.Echo
	app *App
	st  *store.Store
	dir *directory.Mock
	arc *fakeArchiver
	mr  *miniredis.Miniredis

	mu  sync.Mutex
	now time.Time
}

func (env *testEnv) clock() time.Time {
	env.mu.Lock()
	defer env.mu.Unlock()
	return env.now
}

func (env *testEnv) advance(d time.Duration) {
	env.mu.Lock()
	defer env.mu.Unlock()
	env.now = env.now.Add(d)
}

type testOption func(*testEnv)

func withoutDirectory() testOption {
	return func(env *testEnv) { env.app.dir = nil }
}

func withoutArchive() testOption {
	return func(env *testEnv) { env.app.arc = nil }
}

// withRedis 使用内存中的 Redis ，启用账户状态缓存与登录限流
func withRedis() testOption {
	return func(env *testEnv) {
		env.mr = miniredis.RunT(env.t)
		rdb := redis.NewClient(&redis.Options{Addr: env.mr.Addr()})
		env.t.Cleanup(func() { _ = rdb.Close() })
		env.app.rdb = rdb
	}
}

func withTrustedProxies(cidrs ...string) testOption {
	return func(env *testEnv) {
		nets := make([]*net.IPNet, 0, len(cidrs))
		for _, cidr := range cidrs {
			_, n, err := net.ParseCIDR(cidr)
			require.NoError(env.t, err)
			nets = append(nets, n)
		}
		env.app.WithTrustedProxies(nets)
	}
}

func newTestEnv(t *testing.T, opts ...testOption) *testEnv {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:handlers_%s?mode=memory&cache=shared", name)), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, store.Migrate(db))

	cipher, err := crypto.New("handlers-test-encrypt-secret")
	require.NoError(t, err)

	env := &testEnv{
		t:   t,
		dir: directory.NewMock(),
		arc: &fakeArchiver{},
		now: time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC),
	}

	env.st = store.New(db, cipher, 5*time.Second).WithClock(env.clock)

	j, err := jwt.New("handlers-test-signature-secret")
	require.NoError(t, err)

	env.app = NewApp(zap.NewNop(), env.st, nil, j.WithClock(env.clock), env.dir, env.arc, 5).WithClock(env.clock)
	for _, opt := range opts {
		opt(env)
	}

	env.e = echo.New()
	RegisterHandlers(env.e, env.app)

	return env
}

// do 发送请求， body 为 nil 时不带请求体
func (env *testEnv) do(method string, path string, token string, body any) *httptest.ResponseRecorder {
	env.t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(env.t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	req.Header.Set("User-Agent", "handlers-test")

	return env.serve(req)
}

func (env *testEnv) serve(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	env.e.ServeHTTP(rec, req)
	return rec
}

func (env *testEnv) createUser(username string, role string) *models.User {
	env.t.Helper()
	user, err := env.st.CreateUser(context.Background(), store.NewUser{
		Username: username,
		Email:    username + "@example.com",
		Password: "secret123",
		Role:     role,
	})
	require.NoError(env.t, err)
	return user
}

func (env *testEnv) login(username string) string {
	env.t.Helper()
	rec := env.do(http.MethodPost, "/auth/login", "", map[string]string{
		"username": username,
		"password": "secret123",
	})
	require.Equal(env.t, http.StatusOK, rec.Code, rec.Body.String())

	var res loginResponse
	decode(env.t, rec, &res)
	require.NotEmpty(env.t, res.Token)
	return res.Token
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}

func message(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var res struct {
		Message string `json:"message"`
	}
	decode(t, rec, &res)
	return res.Message
}

func (env *testEnv) auditActions(userID uint) []string {
	env.t.Helper()
	entries, _, err := env.st.ListAudit(context.Background(), store.AuditQuery{UserID: &userID})
	require.NoError(env.t, err)
	actions := make([]string, 0, len(entries))
	for _, e := range entries {
		actions = append(actions, e.Action)
	}
	return actions
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
