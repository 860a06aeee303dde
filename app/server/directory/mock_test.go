package directory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMock_Search(t *testing.T) {
	m := NewMock()
	ctx := context.Background()

	users, err := m.Search(ctx, "smith")
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "asmith", users[0].Username)

	all, err := m.Search(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)
	assert.Equal(t, "asmith", all[0].Username)
}

func TestMock_GetUser(t *testing.T) {
	m := NewMock()

	u, err := m.GetUser(context.Background(), "JDOE")
	require.NoError(t, err)
	assert.Equal(t, "John Doe", u.DisplayName)

	_, err = m.GetUser(context.Background(), "ghost")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestMock_Authenticate(t *testing.T) {
	m := NewMock()
	ctx := context.Background()

	u, err := m.Authenticate(ctx, "jdoe", "password123")
	require.NoError(t, err)
	assert.Equal(t, "jdoe", u.Username)

	_, err = m.Authenticate(ctx, "jdoe", "wrong")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = m.Authenticate(ctx, "jdoe", "")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = m.Authenticate(ctx, "bwilson", "password123")
	require.ErrorIs(t, err, ErrDisabled)
}

func TestMock_ImplementsDirectory(t *testing.T) {
	var _ Directory = NewMock()
	var _ Directory = (*Live)(nil)
}
