package format

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCacheDisabled(t *testing.T) {
	t.Parallel()
	c := NewCache(0)
	c.Add("a", 1)
	_, ok := c.Get("a")
	assert.False(t, ok)
}

// TestCacheSingleSlot replaces its one entry on every miss.
func TestCacheSingleSlot(t *testing.T) {
	t.Parallel()
	c := NewCache(1)
	c.Add("a", 1)
	v, ok := c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 1, v)

	c.Add("b", 2)
	_, ok = c.Get("a")
	assert.False(t, ok)
	v, _ = c.Get("b")
	assert.Equal(t, 2, v)
}

// TestCacheTwoSlots keeps the current and the previous entry.
func TestCacheTwoSlots(t *testing.T) {
	t.Parallel()
	c := NewCache(2)
	c.Add("true", true)
	c.Add("false", false)
	v, ok := c.Get("true")
	assert.True(t, ok)
	assert.Equal(t, true, v)

	c.Add("maybe", nil)
	_, ok = c.Get("true")
	assert.False(t, ok, "oldest entry is dropped")
	_, ok = c.Get("false")
	assert.True(t, ok)
}

func TestCacheLRU(t *testing.T) {
	t.Parallel()
	c := NewCache(3)
	c.Add("a", 1)
	c.Add("b", 2)
	c.Add("c", 3)
	_, _ = c.Get("a")
	c.Add("d", 4)

	_, ok := c.Get("b")
	assert.False(t, ok, "least recently used entry is evicted")
	for _, k := range []string{"a", "c", "d"} {
		_, ok := c.Get(k)
		assert.True(t, ok, k)
	}
}
