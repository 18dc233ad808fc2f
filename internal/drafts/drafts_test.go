package drafts

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phillip-england/employeems/internal/avatar"
	"github.com/phillip-england/employeems/internal/employee"
)

func TestDraftRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := New(NewMemoryBackend(), time.Minute)
	key := Key{BrowserID: "b1", Record: "e1"}

	missing, err := store.Draft(ctx, key)
	require.NoError(t, err)
	assert.Nil(t, missing)

	require.NoError(t, store.SaveDraft(ctx, key, employee.Employee{ID: "e1", Name: "Ada"}))
	got, err := store.Draft(ctx, key)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Ada", got.Name)

	_, err = store.LoadDraft(ctx, Key{BrowserID: "b2", Record: "e1"})
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.DeleteDraft(ctx, key))
	_, err = store.LoadDraft(ctx, key)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestAvatarAndDiscard(t *testing.T) {
	ctx := context.Background()
	backend := NewMemoryBackend()
	store := New(backend, time.Minute)
	key := Key{BrowserID: "b1", Record: NewRecord}

	require.NoError(t, store.SaveAvatar(ctx, key, avatar.Pending{Filename: "me.png", ContentType: "image/png", Data: []byte{1, 2, 3}}))
	require.NoError(t, store.SaveDraft(ctx, key, employee.Employee{Name: "Ada"}))

	p, err := store.LoadAvatar(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, p.Data)

	require.NoError(t, store.Discard(ctx, key))
	assert.Zero(t, backend.Len())
}

func TestMemoryBackendExpiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	backend := NewMemoryBackend()
	backend.now = func() time.Time { return now }

	require.NoError(t, backend.Set(ctx, "k", []byte("v"), time.Minute))
	v, err := backend.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), v)

	now = now.Add(2 * time.Minute)
	_, err = backend.Get(ctx, "k")
	require.ErrorIs(t, err, ErrNotFound)
	assert.Zero(t, backend.Len())
}
