package cache

import (
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSetThenGetRoundTrips(t *testing.T) {
	c := New[string, int](&Config{MaxEntries: 10, TTL: time.Hour})

	c.Set("key1", 100)
	c.Set("key2", 200)

	val, found := c.Get("key1")
	require.True(t, found)
	require.Equal(t, 100, val)

	val, found = c.Get("key2")
	require.True(t, found)
	require.Equal(t, 200, val)
}

func TestGetMissingKeyReturnsZeroValue(t *testing.T) {
	c := New[string, int](&Config{MaxEntries: 10, TTL: time.Hour})

	val, found := c.Get("nonexistent")
	require.False(t, found)
	require.Zero(t, val)
}

func TestSetOverwritesExistingKey(t *testing.T) {
	c := New[string, int](&Config{MaxEntries: 10, TTL: time.Hour})

	c.Set("key1", 100)
	c.Set("key1", 999)

	val, found := c.Get("key1")
	require.True(t, found)
	require.Equal(t, 999, val)
	require.Equal(t, 1, c.Size())
}

func TestDeleteRemovesKey(t *testing.T) {
	c := New[string, int](&Config{MaxEntries: 10, TTL: time.Hour})

	c.Set("key1", 100)
	c.Delete("key1")

	_, found := c.Get("key1")
	require.False(t, found)
	require.Equal(t, 0, c.Size())
}

func TestEvictsLeastRecentlyUsedAtCapacity(t *testing.T) {
	c := New[string, int](&Config{MaxEntries: 2, TTL: 0})

	c.Set("a", 1)
	c.Set("b", 2)
	// touch "a" so "b" becomes the least recently used entry
	_, _ = c.Get("a")
	c.Set("c", 3)

	_, found := c.Get("b")
	require.False(t, found, "b should have been evicted")

	_, found = c.Get("a")
	require.True(t, found)
	_, found = c.Get("c")
	require.True(t, found)
	require.Equal(t, 2, c.Size())
}

func TestEntryExpiresAfterTTL(t *testing.T) {
	c := New[string, int](&Config{MaxEntries: 10, TTL: 10 * time.Millisecond})

	c.Set("key1", 100)
	time.Sleep(20 * time.Millisecond)

	_, found := c.Get("key1")
	require.False(t, found)
}

func TestZeroTTLNeverExpires(t *testing.T) {
	c := New[string, int](&Config{MaxEntries: 10, TTL: 0})

	c.Set("key1", 100)
	time.Sleep(10 * time.Millisecond)

	val, found := c.Get("key1")
	require.True(t, found)
	require.Equal(t, 100, val)
}

func TestClearEmptiesCache(t *testing.T) {
	c := New[string, int](&Config{MaxEntries: 10, TTL: time.Hour})

	c.Set("a", 1)
	c.Set("b", 2)
	c.Clear()

	require.Equal(t, 0, c.Size())
	_, found := c.Get("a")
	require.False(t, found)
}

func TestUnlimitedEntriesNeverEvicts(t *testing.T) {
	c := New[string, int](&Config{MaxEntries: 0, TTL: 0})

	for i := 0; i < 500; i++ {
		c.Set("key"+strconv.Itoa(i), i)
	}
	require.Equal(t, 500, c.Size())
}

func TestNilConfigFallsBackToDefaults(t *testing.T) {
	c := New[string, int](nil)

	c.Set("key1", 1)
	val, found := c.Get("key1")
	require.True(t, found)
	require.Equal(t, 1, val)
}

func TestConcurrentAccessIsSafe(t *testing.T) {
	c := New[int, int](&Config{MaxEntries: 1000, TTL: 0})

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			c.Set(n, n*2)
			c.Get(n)
		}(i)
	}
	wg.Wait()

	require.LessOrEqual(t, c.Size(), 1000)
}
