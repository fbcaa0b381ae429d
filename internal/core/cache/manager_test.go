package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"recipe-finder/internal/infrastructure/config"
	"recipe-finder/internal/pkg/common"
)

func newTestManager(t *testing.T, maxSize int) *Manager {
	t.Helper()
	m := NewManager(config.CacheConfig{
		Enabled:         true,
		MaxSize:         maxSize,
		TTL:             time.Minute,
		CleanupInterval: time.Hour,
	})
	require.NotNil(t, m)
	t.Cleanup(func() { _ = m.Close() })
	return m
}

func TestManager_SetGet(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t, 10)

	_, err := m.Get(ctx, "missing")
	assert.ErrorIs(t, err, common.ErrCacheMiss)

	require.NoError(t, m.Set(ctx, "k", []byte("v")))
	got, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), got)

	stats := m.GetStats()
	assert.Equal(t, int64(1), stats["hits"])
	assert.Equal(t, int64(1), stats["misses"])
}

func TestManager_Expiry(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t, 10)
	now := time.Now()
	m.now = func() time.Time { return now }

	require.NoError(t, m.Set(ctx, "k", []byte("v")))
	now = now.Add(2 * time.Minute)

	_, err := m.Get(ctx, "k")
	assert.ErrorIs(t, err, common.ErrCacheMiss)
	assert.Equal(t, 0, m.Len())
}

func TestManager_EvictsLeastUsed(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t, 2)

	require.NoError(t, m.Set(ctx, "a", []byte("1")))
	require.NoError(t, m.Set(ctx, "b", []byte("2")))
	_, err := m.Get(ctx, "a")
	require.NoError(t, err)

	require.NoError(t, m.Set(ctx, "c", []byte("3")))
	assert.Equal(t, 2, m.Len())

	_, err = m.Get(ctx, "b")
	assert.ErrorIs(t, err, common.ErrCacheMiss)
	_, err = m.Get(ctx, "a")
	assert.NoError(t, err)
}

func TestManager_DeletePrefix(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t, 10)

	require.NoError(t, m.Set(ctx, Key("search", "soup"), []byte("1")))
	require.NoError(t, m.Set(ctx, Key("recipe", 1), []byte("2")))
	require.NoError(t, m.Set(ctx, "other", []byte("3")))

	require.NoError(t, m.DeletePrefix(ctx, KeyPrefix))
	assert.Equal(t, 1, m.Len())
}

func TestManager_NilIsDisabled(t *testing.T) {
	ctx := context.Background()
	var m *Manager

	assert.Nil(t, NewManager(config.CacheConfig{Enabled: false}))
	_, err := m.Get(ctx, "k")
	assert.ErrorIs(t, err, common.ErrCacheDisabled)
	assert.NoError(t, m.Set(ctx, "k", nil))
	assert.NoError(t, m.Close())
	assert.Equal(t, false, m.GetStats()["enabled"])
}

func TestNew_FallsBackToMemory(t *testing.T) {
	ctx := context.Background()
	store := New(ctx,
		config.CacheConfig{Enabled: true, MaxSize: 5, TTL: time.Minute, CleanupInterval: time.Hour},
		config.RedisConfig{Enabled: true, Addr: "127.0.0.1:1"},
	)
	require.NotNil(t, store)
	t.Cleanup(func() { _ = store.Close() })

	_, ok := store.(*Manager)
	assert.True(t, ok)

	assert.Nil(t, New(ctx, config.CacheConfig{}, config.RedisConfig{}))
}

func TestKey(t *testing.T) {
	assert.Equal(t, "recipes:search:soup:0:20", Key("search", "soup", 0, 20))
	assert.Equal(t, "recipes:all", Key("all"))
}
