package providers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"nltrack/internal/structures"
)

func cacheConfig(enabled bool, size int, ttl time.Duration) *structures.Config {
	return &structures.Config{
		Cache: structures.CacheConfig{
			Enabled: enabled,
			Size:    size,
			TTL:     ttl,
		},
	}
}

func TestCacheProvider_DisabledReturnsNoop(t *testing.T) {
	c := NewCacheProvider(cacheConfig(false, 10, time.Minute), &nopLogger{})
	_, ok := c.Get("any")
	assert.False(t, ok)
	assert.IsType(t, &noopCache{}, c)
}

func TestCacheProvider_ZeroSizeReturnsNoop(t *testing.T) {
	c := NewCacheProvider(cacheConfig(true, 0, time.Minute), &nopLogger{})
	assert.IsType(t, &noopCache{}, c)
}

func TestCacheProvider_DefaultTTL(t *testing.T) {
	c := NewCacheProvider(cacheConfig(true, 1, 0), &nopLogger{})
	assert.Equal(t, defaultCacheTTLSeconds, c.(*CacheProvider).ttl)
}

func TestCacheProvider_SubSecondTTLRoundsUp(t *testing.T) {
	c := NewCacheProvider(cacheConfig(true, 1, 200*time.Millisecond), &nopLogger{})
	assert.Equal(t, 1, c.(*CacheProvider).ttl)
}

func TestCacheProvider_SetGetOverwrite(t *testing.T) {
	c := NewCacheProvider(cacheConfig(true, 1, time.Minute), &nopLogger{})

	_, ok := c.Get("stats:nl-1")
	assert.False(t, ok)

	c.Set("stats:nl-1", []byte("v1"))
	c.Set("stats:nl-1", []byte("v2"))

	val, ok := c.Get("stats:nl-1")
	assert.True(t, ok)
	assert.Equal(t, []byte("v2"), val)
}

func TestNoopCache_AlwaysMiss(t *testing.T) {
	c := &noopCache{}
	c.Set("key1", []byte("value1"))

	val, ok := c.Get("key1")
	assert.False(t, ok)
	assert.Nil(t, val)
}

func TestCacheProvider_TTLExpiry(t *testing.T) {
	c := NewCacheProvider(cacheConfig(true, 1, time.Second), &nopLogger{})

	c.Set("stats:nl-1", []byte("value1"))
	_, ok := c.Get("stats:nl-1")
	assert.True(t, ok)

	time.Sleep(2100 * time.Millisecond)

	_, ok = c.Get("stats:nl-1")
	assert.False(t, ok)
}

func TestCacheProvider_ClearDropsAllEntries(t *testing.T) {
	c := NewCacheProvider(cacheConfig(true, 1, time.Minute), &nopLogger{})
	c.Set("stats:nl-1", []byte("a"))
	c.Set("stats:nl-2", []byte("b"))

	c.Clear()

	_, ok := c.Get("stats:nl-1")
	assert.False(t, ok)
	_, ok = c.Get("stats:nl-2")
	assert.False(t, ok)
}

func TestNewDisabledCacheProvider(t *testing.T) {
	c := NewDisabledCacheProvider()
	c.Set("stats:nl-1", []byte("a"))
	assert.NotPanics(t, c.Clear)
	_, ok := c.Get("stats:nl-1")
	assert.False(t, ok)
}
