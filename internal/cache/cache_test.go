package cache

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/forgereview/internal/config"
)

func newTestCache(t *testing.T, ttl int) *Cache {
	t.Helper()
	c, err := New(config.CacheConfig{Enabled: true, Dir: t.TempDir(), TTLSeconds: ttl})
	require.NoError(t, err)
	return c
}

func TestCache_PutGet(t *testing.T) {
	c := newTestCache(t, 3600)
	key := Key("anthropic", "claude", "prompt text")

	_, ok := c.Get(key)
	assert.False(t, ok, "miss before put")

	require.NoError(t, c.Put(key, "SCORE: 80/100"))
	got, ok := c.Get(key)
	require.True(t, ok)
	assert.Equal(t, "SCORE: 80/100", got)
}

func TestCache_TTLExpiration(t *testing.T) {
	c := newTestCache(t, 60)
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return start }

	key := Key("k")
	require.NoError(t, c.Put(key, "data"))
	_, ok := c.Get(key)
	assert.True(t, ok)

	c.now = func() time.Time { return start.Add(61 * time.Second) }
	stats, err := c.GetStats()
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Expired)

	_, ok = c.Get(key)
	assert.False(t, ok, "expired entry should miss")
	assert.NoFileExists(t, filepath.Join(c.Dir(), key+".json"))
}

func TestCache_ZeroTTLNeverExpires(t *testing.T) {
	c := newTestCache(t, 0)
	start := time.Now()
	c.now = func() time.Time { return start }
	require.NoError(t, c.Put("k", "v"))
	c.now = func() time.Time { return start.Add(1000 * time.Hour) }
	_, ok := c.Get("k")
	assert.True(t, ok)
}

func TestCache_Disabled(t *testing.T) {
	c, err := New(config.CacheConfig{Enabled: false, Dir: t.TempDir()})
	require.NoError(t, err)
	require.NoError(t, c.Put("k", "v"))
	_, ok := c.Get("k")
	assert.False(t, ok)
	assert.False(t, c.Enabled())
	n, err := c.Clear()
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestCache_ClearAndStats(t *testing.T) {
	c := newTestCache(t, 3600)
	require.NoError(t, c.Put(Key("a"), "1"))
	require.NoError(t, c.Put(Key("b"), "22"))
	require.NoError(t, os.WriteFile(filepath.Join(c.Dir(), "notes.txt"), []byte("keep"), 0o644))

	stats, err := c.GetStats()
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Entries)
	assert.Positive(t, stats.TotalBytes)
	assert.True(t, stats.Enabled)

	n, err := c.Clear()
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.FileExists(t, filepath.Join(c.Dir(), "notes.txt"))

	stats, err = c.GetStats()
	require.NoError(t, err)
	assert.Zero(t, stats.Entries)
}

func TestCache_CorruptEntryMisses(t *testing.T) {
	c := newTestCache(t, 3600)
	key := Key("x")
	require.NoError(t, os.WriteFile(filepath.Join(c.Dir(), key+".json"), []byte("{not json"), 0o644))
	_, ok := c.Get(key)
	assert.False(t, ok)
}

func TestKey(t *testing.T) {
	assert.Equal(t, Key("a", "b"), Key("a", "b"))
	assert.NotEqual(t, Key("ab", "c"), Key("a", "bc"))
	assert.Len(t, Key("x"), 64)
}

func TestDefaultCacheDir_XDG(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "/tmp/xdg-cache")
	dir, err := defaultCacheDir()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/xdg-cache/forgereview", dir)
}
