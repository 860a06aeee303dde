package store

import (
	"context"
	"remote-connection-manager/app/server/models"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuditQuery(t *testing.T) {
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	now := base
	st := newTestStore(t).WithClock(func() time.Time { return now })
	ctx := context.Background()

	connID := uint(7)
	for i, e := range []models.AuditLog{
		{UserID: 1, Action: "LOGIN"},
		{UserID: 1, Action: "VIEW_CONNECTION", ConnectionID: &connID},
		{UserID: 2, Action: "LOGIN"},
		{UserID: 2, Action: "DELETE_CONNECTION", ConnectionID: &connID},
	} {
		now = base.Add(time.Duration(i) * 24 * time.Hour)
		entry := e
		require.NoError(t, st.AppendAudit(ctx, &entry))
		assert.Equal(t, now, entry.Timestamp)
	}

	entries, count, err := st.ListAudit(ctx, AuditQuery{})
	require.NoError(t, err)
	assert.Equal(t, int64(4), count)
	require.Len(t, entries, 4)
	// 新的在前
	assert.Equal(t, "DELETE_CONNECTION", entries[0].Action)
	assert.Equal(t, "LOGIN", entries[3].Action)

	userID := uint(1)
	entries, count, err = st.ListAudit(ctx, AuditQuery{UserID: &userID})
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
	assert.Len(t, entries, 2)

	_, count, err = st.ListAudit(ctx, AuditQuery{Action: "LOGIN"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	start, end := base.Add(24*time.Hour), base.Add(3*24*time.Hour)
	entries, count, err = st.ListAudit(ctx, AuditQuery{Start: &start, End: &end})
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
	require.Len(t, entries, 2)
	assert.Equal(t, "LOGIN", entries[0].Action)
	assert.Equal(t, "VIEW_CONNECTION", entries[1].Action)
	require.NotNil(t, entries[1].ConnectionID)
	assert.Equal(t, connID, *entries[1].ConnectionID)

	// 分页时总数不受影响
	entries, count, err = st.ListAudit(ctx, AuditQuery{Page: 1, Limit: 3})
	require.NoError(t, err)
	assert.Equal(t, int64(4), count)
	require.Len(t, entries, 1)
	assert.Equal(t, "LOGIN", entries[0].Action)

	exported, err := st.ExportAudit(ctx, AuditQuery{Action: "LOGIN", Page: 5, Limit: 1})
	require.NoError(t, err)
	assert.Len(t, exported, 2)
}
