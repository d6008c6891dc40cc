package bot

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionStore(t *testing.T) {
	start := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	store := NewSessionStore(10 * time.Minute)

	_, ok := store.Get(1, start)
	assert.False(t, ok)

	store.Set(1, Session{State: stateAwaitingAnswer, EntryID: 42}, start)

	got, ok := store.Get(1, start.Add(5*time.Minute))
	require.True(t, ok)
	assert.Equal(t, stateAwaitingAnswer, got.State)
	assert.Equal(t, int64(42), got.EntryID)
	assert.Equal(t, start, got.UpdatedAt)

	_, ok = store.Get(1, start.Add(11*time.Minute))
	assert.False(t, ok, "expired session must not be returned")
	assert.Equal(t, 0, store.Len())
}

func TestSessionStore_ClearAndPurge(t *testing.T) {
	start := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	store := NewSessionStore(time.Minute)

	store.Set(1, Session{State: stateAwaitingWord}, start)
	store.Set(2, Session{State: stateAwaitingBulk}, start.Add(30*time.Second))
	store.Set(3, Session{State: stateAwaitingPhoto}, start.Add(2*time.Minute))

	assert.True(t, store.Clear(3))
	assert.False(t, store.Clear(3))

	assert.Equal(t, 1, store.PurgeExpired(start.Add(75*time.Second)))
	assert.Equal(t, 1, store.Len())

	_, ok := store.Get(2, start.Add(75*time.Second))
	assert.True(t, ok)
}
