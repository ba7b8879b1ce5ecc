package format

import (
	lru "github.com/hashicorp/golang-lru/v2"
)

// Cache remembers parsed values by their raw text. Size the cache after the
// expected cardinality of a column: a boolean column never needs more than 2
// slots, a free-text column is better off without one.
//
// Caches are not safe for concurrent use; a parse operation owns its caches.
type Cache interface {
	Get(text string) (any, bool)
	Add(text string, v any)
}

// NewCache returns a cache for size slots: 0 disables caching, 1 keeps only
// the latest value, 2 keeps the current and the previous value, larger sizes
// evict the least recently used entry.
func NewCache(size int) Cache {
	switch {
	case size <= 0:
		return noCache{}
	case size == 1:
		return &singleCache{}
	case size == 2:
		return &pairCache{}
	}
	c, err := lru.New[string, any](size)
	if err != nil {
		return noCache{}
	}
	return lruCache{c}
}

type noCache struct{}

func (noCache) Get(string) (any, bool) { return nil, false }
func (noCache) Add(string, any)        {}

type singleCache struct {
	text string
	v    any
	ok   bool
}

func (c *singleCache) Get(text string) (any, bool) {
	if c.ok && c.text == text {
		return c.v, true
	}
	return nil, false
}

func (c *singleCache) Add(text string, v any) { c.text, c.v, c.ok = text, v, true }

// pairCache holds the current entry in slot 0 and the previous in slot 1.
type pairCache struct {
	text [2]string
	v    [2]any
	n    int
}

func (c *pairCache) Get(text string) (any, bool) {
	for i := 0; i < c.n; i++ {
		if c.text[i] == text {
			return c.v[i], true
		}
	}
	return nil, false
}

func (c *pairCache) Add(text string, v any) {
	c.text[1], c.v[1] = c.text[0], c.v[0]
	c.text[0], c.v[0] = text, v
	if c.n < 2 {
		c.n++
	}
}

type lruCache struct{ c *lru.Cache[string, any] }

func (c lruCache) Get(text string) (any, bool) { return c.c.Get(text) }
func (c lruCache) Add(text string, v any)      { c.c.Add(text, v) }
