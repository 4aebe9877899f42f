package cache

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}

func newTestCache(clock *fakeClock, maxItems int) *Cache {
	return New(Config{MaxItems: maxItems, Now: clock.Now})
}

func TestCache_SetGet(t *testing.T) {
	c := New(DefaultConfig())

	c.Set("key1", "value1", time.Minute)

	val, ok := c.Get("key1")
	require.True(t, ok)
	assert.Equal(t, "value1", val)
}

func TestCache_GetMissing(t *testing.T) {
	c := New(DefaultConfig())

	_, ok := c.Get("nonexistent")
	assert.False(t, ok)
}

func TestCache_Expiration(t *testing.T) {
	clock := newFakeClock()
	c := newTestCache(clock, 100)

	c.Set("key1", "value1", time.Minute)

	clock.Advance(59 * time.Second)
	_, ok := c.Get("key1")
	assert.True(t, ok, "expected key1 to exist before ttl")

	clock.Advance(time.Second)
	_, ok = c.Get("key1")
	assert.False(t, ok, "expected key1 to be expired at storedAt+ttl")
	assert.Equal(t, 0, c.Len(), "expired get must purge the entry")

	_, ok = c.Get("key1")
	assert.False(t, ok, "expired entry must not come back")
}

func TestCache_ExpirationRealClock(t *testing.T) {
	c := New(DefaultConfig())

	c.Set("key1", "value1", 50*time.Millisecond)
	_, ok := c.Get("key1")
	require.True(t, ok)

	time.Sleep(100 * time.Millisecond)

	_, ok = c.Get("key1")
	assert.False(t, ok)
}

func TestCache_NoExpiration(t *testing.T) {
	clock := newFakeClock()
	c := newTestCache(clock, 100)

	c.Set("forever", "value", NoExpiration)
	clock.Advance(10 * 365 * 24 * time.Hour)

	val, ok := c.Get("forever")
	require.True(t, ok)
	assert.Equal(t, "value", val)
	assert.Equal(t, 0, c.Prune())
}

func TestCache_OverwriteReplacesValueAndExpiry(t *testing.T) {
	clock := newFakeClock()
	c := newTestCache(clock, 100)

	c.Set("key", "old", time.Minute)
	clock.Advance(30 * time.Second)
	c.Set("key", "new", time.Hour)
	clock.Advance(45 * time.Second)

	val, ok := c.Get("key")
	require.True(t, ok, "overwrite must reset expiry")
	assert.Equal(t, "new", val)

	c.Set("key", "short", time.Second)
	clock.Advance(2 * time.Second)
	_, ok = c.Get("key")
	assert.False(t, ok, "overwrite must also shorten expiry")
}

func TestCache_NotFound(t *testing.T) {
	c := New(DefaultConfig())

	c.SetNotFound("neg", time.Minute)

	val, ok := c.Get("neg")
	require.True(t, ok)
	assert.True(t, IsNotFound(val))
	assert.False(t, IsNotFound("value"))
	assert.False(t, IsNotFound(nil))
}

func TestCache_Delete(t *testing.T) {
	c := New(DefaultConfig())

	c.Set("key1", "value1", time.Minute)
	c.Delete("key1")

	_, ok := c.Get("key1")
	assert.False(t, ok)
}

func TestCache_Clear(t *testing.T) {
	c := New(DefaultConfig())

	c.Set("key1", "value1", time.Minute)
	c.Set("key2", "value2", time.Minute)
	c.Clear()

	assert.Equal(t, 0, c.Len())
}

func TestCache_Prune(t *testing.T) {
	clock := newFakeClock()
	c := newTestCache(clock, 100)

	c.Set("short1", 1, time.Second)
	c.Set("short2", 2, time.Second)
	c.Set("long", 3, time.Hour)
	clock.Advance(time.Minute)

	assert.Equal(t, 2, c.Prune())
	assert.Equal(t, 1, c.Len())
}

func TestCache_Eviction(t *testing.T) {
	clock := newFakeClock()
	c := newTestCache(clock, 5)

	for i := 0; i < 10; i++ {
		c.Set(string(rune('a'+i)), i, time.Duration(i+1)*time.Minute)
	}

	assert.LessOrEqual(t, c.Len(), 5)
	// The most recently written, longest-lived entry survives.
	_, ok := c.Get("j")
	assert.True(t, ok)
}

func TestCache_EvictionPrefersExpiring(t *testing.T) {
	clock := newFakeClock()
	c := newTestCache(clock, 2)

	c.Set("forever", 1, NoExpiration)
	c.Set("soon", 2, time.Minute)
	c.Set("new", 3, time.Hour)

	_, ok := c.Get("forever")
	assert.True(t, ok)
	_, ok = c.Get("soon")
	assert.False(t, ok)
	_, ok = c.Get("new")
	assert.True(t, ok)
}

func TestCache_Concurrent(t *testing.T) {
	c := New(Config{MaxItems: 50})

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				key := fmt.Sprintf("k%d", i%20)
				c.Set(key, g, time.Millisecond*time.Duration(i%3))
				c.Get(key)
				if i%7 == 0 {
					c.Delete(key)
				}
			}
		}(g)
	}
	wg.Wait()

	assert.LessOrEqual(t, c.Len(), 50)
}
