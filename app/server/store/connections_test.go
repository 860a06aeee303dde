package store

import (
	"context"
	"remote-connection-manager/app/server/models"
	"remote-connection-manager/app/server/utils"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustCreateConnection(t *testing.T, st *Store, ownerID uint, name string) *models.Connection {
	t.Helper()
	conn, err := st.CreateConnection(context.Background(), ownerID, ConnectionFields{
		Name:     utils.P(name),
		Type:     utils.P(models.ConnectionTypeSSH),
		Host:     utils.P(name + ".internal"),
		Username: utils.P("root"),
		Password: utils.P("s3cret"),
	})
	require.NoError(t, err)
	return conn
}

func TestDefaultPort(t *testing.T) {
	assert.Equal(t, 3389, DefaultPort(models.ConnectionTypeRDP, ""))
	assert.Equal(t, 22, DefaultPort(models.ConnectionTypeSSH, ""))
	assert.Equal(t, 5900, DefaultPort(models.ConnectionTypeVNC, ""))
	assert.Equal(t, 23, DefaultPort(models.ConnectionTypeTelnet, ""))
	assert.Equal(t, 443, DefaultPort(models.ConnectionTypeWeb, "https://portal.example.com"))
	assert.Equal(t, 80, DefaultPort(models.ConnectionTypeWeb, "http://portal.example.com"))
	assert.Equal(t, 0, DefaultPort("ftp", ""))
}

func TestCreateConnection(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	alice := mustCreateUser(t, st, "alice", models.RoleUser)

	conn, err := st.CreateConnection(ctx, alice.ID, ConnectionFields{
		Name:      utils.P("Jump host"),
		Type:      utils.P("SSH"),
		Host:      utils.P("10.0.0.5"),
		Username:  utils.P("ops"),
		Password:  utils.P("hunter22"),
		GroupName: utils.P(" Production "),
		Tags:      utils.P([]string{" linux ", "", "bastion"}),
	})
	require.NoError(t, err)

	assert.Equal(t, models.ConnectionTypeSSH, conn.Type)
	assert.Equal(t, 22, conn.Port)
	assert.Equal(t, "Production", conn.GroupName)
	assert.Equal(t, []string{"linux", "bastion"}, conn.Tags)
	assert.True(t, conn.HasPassword())
	assert.NotContains(t, string(conn.PasswordEncrypted), "hunter22")

	got, err := st.GetConnection(ctx, conn.ID, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"linux", "bastion"}, got.Tags)

	password, err := st.DecryptSecret(got.PasswordEncrypted)
	require.NoError(t, err)
	assert.Equal(t, "hunter22", password)
}

func TestCreateConnectionValidation(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	alice := mustCreateUser(t, st, "alice", models.RoleUser)

	tests := []struct {
		name string
		in   ConnectionFields
	}{
		{"missing name", ConnectionFields{Type: utils.P("ssh"), Host: utils.P("h")}},
		{"missing type", ConnectionFields{Name: utils.P("n"), Host: utils.P("h")}},
		{"unknown type", ConnectionFields{Name: utils.P("n"), Type: utils.P("ftp"), Host: utils.P("h")}},
		{"missing host", ConnectionFields{Name: utils.P("n"), Type: utils.P("rdp")}},
		{"port out of range", ConnectionFields{Name: utils.P("n"), Type: utils.P("ssh"), Host: utils.P("h"), Port: utils.P(70000)}},
		{"web without target", ConnectionFields{Name: utils.P("n"), Type: utils.P("web")}},
		{"web with relative url", ConnectionFields{Name: utils.P("n"), Type: utils.P("web"), URL: utils.P("/admin")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := st.CreateConnection(ctx, alice.ID, tt.in)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}

	conn, err := st.CreateConnection(ctx, alice.ID, ConnectionFields{
		Name: utils.P("Portal"),
		Type: utils.P("web"),
		URL:  utils.P("http://portal.example.com"),
	})
	require.NoError(t, err)
	assert.Equal(t, 80, conn.Port)
	assert.False(t, conn.HasPassword())
}

func TestConnectionOwnership(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	alice := mustCreateUser(t, st, "alice", models.RoleUser)
	bob := mustCreateUser(t, st, "bob", models.RoleUser)
	conn := mustCreateConnection(t, st, alice.ID, "db")

	_, err := st.GetConnection(ctx, conn.ID, bob.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = st.UpdateConnection(ctx, conn.ID, bob.ID, ConnectionFields{Name: utils.P("stolen")})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = st.ToggleFavorite(ctx, conn.ID, bob.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, st.DeleteConnection(ctx, conn.ID, bob.ID), ErrNotFound)

	list, err := st.ListConnections(ctx, bob.ID, ConnectionFilter{})
	require.NoError(t, err)
	assert.Empty(t, list)

	// 仍然存在
	_, err = st.GetConnection(ctx, conn.ID, alice.ID)
	assert.NoError(t, err)
}

func TestUpdateConnectionMergePatch(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	alice := mustCreateUser(t, st, "alice", models.RoleUser)
	conn := mustCreateConnection(t, st, alice.ID, "db")
	original := append([]byte(nil), conn.PasswordEncrypted...)

	// 未提交密码时保留原密文
	updated, err := st.UpdateConnection(ctx, conn.ID, alice.ID, ConnectionFields{
		Description: utils.P("primary database"),
		Port:        utils.P(2222),
	})
	require.NoError(t, err)
	assert.Equal(t, "primary database", updated.Description)
	assert.Equal(t, 2222, updated.Port)
	assert.Equal(t, "db.internal", updated.Host)
	assert.Equal(t, "root", updated.Username)
	assert.Equal(t, original, updated.PasswordEncrypted)

	// 新密码重新加密
	updated, err = st.UpdateConnection(ctx, conn.ID, alice.ID, ConnectionFields{Password: utils.P("rotated")})
	require.NoError(t, err)
	password, err := st.DecryptSecret(updated.PasswordEncrypted)
	require.NoError(t, err)
	assert.Equal(t, "rotated", password)

	// 空字符串清除密码
	updated, err = st.UpdateConnection(ctx, conn.ID, alice.ID, ConnectionFields{Password: utils.P("")})
	require.NoError(t, err)
	assert.False(t, updated.HasPassword())

	got, err := st.GetConnection(ctx, conn.ID, alice.ID)
	require.NoError(t, err)
	assert.False(t, got.HasPassword())
	assert.Equal(t, "primary database", got.Description)

	_, err = st.UpdateConnection(ctx, conn.ID, alice.ID, ConnectionFields{Type: utils.P("gopher")})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestListConnectionsFilters(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	alice := mustCreateUser(t, st, "alice", models.RoleUser)

	for _, f := range []ConnectionFields{
		{Name: utils.P("beta"), Type: utils.P("ssh"), Host: utils.P("beta.lan"), GroupName: utils.P("lab")},
		{Name: utils.P("alpha"), Type: utils.P("rdp"), Host: utils.P("alpha.lan"), GroupName: utils.P("office")},
		{Name: utils.P("gamma"), Type: utils.P("ssh"), Host: utils.P("gamma.lan"), Description: utils.P("Backup box"), IsFavorite: utils.P(true)},
	} {
		_, err := st.CreateConnection(ctx, alice.ID, f)
		require.NoError(t, err)
	}

	names := func(list []models.Connection) []string {
		var out []string
		for _, c := range list {
			out = append(out, c.Name)
		}
		return out
	}

	list, err := st.ListConnections(ctx, alice.ID, ConnectionFilter{})
	require.NoError(t, err)
	assert.Equal(t, []string{"gamma", "alpha", "beta"}, names(list))

	list, err = st.ListConnections(ctx, alice.ID, ConnectionFilter{Type: "SSH"})
	require.NoError(t, err)
	assert.Equal(t, []string{"gamma", "beta"}, names(list))

	list, err = st.ListConnections(ctx, alice.ID, ConnectionFilter{Group: "office"})
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha"}, names(list))

	list, err = st.ListConnections(ctx, alice.ID, ConnectionFilter{Favorite: utils.P(false)})
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "beta"}, names(list))

	list, err = st.ListConnections(ctx, alice.ID, ConnectionFilter{Search: "BACKUP"})
	require.NoError(t, err)
	assert.Equal(t, []string{"gamma"}, names(list))

	groups, err := st.Groups(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"lab", "office"}, groups)
}

func TestToggleFavoriteAndDelete(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	alice := mustCreateUser(t, st, "alice", models.RoleUser)
	conn := mustCreateConnection(t, st, alice.ID, "db")

	toggled, err := st.ToggleFavorite(ctx, conn.ID, alice.ID)
	require.NoError(t, err)
	assert.True(t, toggled.IsFavorite)

	toggled, err = st.ToggleFavorite(ctx, conn.ID, alice.ID)
	require.NoError(t, err)
	assert.False(t, toggled.IsFavorite)

	require.NoError(t, st.DeleteConnection(ctx, conn.ID, alice.ID))
	assert.ErrorIs(t, st.DeleteConnection(ctx, conn.ID, alice.ID), ErrNotFound)
}

func TestDecryptSecretCorrupt(t *testing.T) {
	st := newTestStore(t)

	plain, err := st.DecryptSecret(nil)
	require.NoError(t, err)
	assert.Empty(t, plain)

	_, err = st.DecryptSecret([]byte("definitely not a valid ciphertext"))
	assert.ErrorIs(t, err, ErrSecretCorrupt)
}
