package lru

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCache_BasicGetPut(t *testing.T) {
	c := New[string, int](3)

	c.Put("a", 1)
	c.Put("b", 2)

	v, ok := c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 1, v)

	_, ok = c.Get("z")
	assert.False(t, ok)

	hits, misses := c.Stats()
	assert.Equal(t, uint64(1), hits)
	assert.Equal(t, uint64(1), misses)
}

func TestCache_EvictsLeastRecentlyUsed(t *testing.T) {
	c := New[string, int](2)

	c.Put("a", 1)
	c.Put("b", 2)
	c.Get("a") // a is now most recent
	c.Put("c", 3)

	_, ok := c.Get("b")
	assert.False(t, ok, "b should have been evicted")
	_, ok = c.Get("a")
	assert.True(t, ok)
	_, ok = c.Get("c")
	assert.True(t, ok)
	assert.Equal(t, 2, c.Len())
}

func TestCache_UpdateExisting(t *testing.T) {
	c := New[string, int](2)

	c.Put("a", 1)
	c.Put("a", 10)

	v, _ := c.Get("a")
	assert.Equal(t, 10, v)
	assert.Equal(t, 1, c.Len())
}

func TestCache_MinimumSize(t *testing.T) {
	c := New[int, int](0)
	c.Put(1, 1)
	c.Put(2, 2)

	assert.Equal(t, 1, c.Len())
	_, ok := c.Get(2)
	assert.True(t, ok)
}

func TestCache_GetOrCompute(t *testing.T) {
	c := New[string, int](4)
	calls := 0
	compute := func() int { calls++; return 42 }

	v, hit := c.GetOrCompute("k", compute)
	assert.False(t, hit)
	assert.Equal(t, 42, v)

	v, hit = c.GetOrCompute("k", compute)
	assert.True(t, hit)
	assert.Equal(t, 42, v)
	assert.Equal(t, 1, calls)
}

func TestCache_Purge(t *testing.T) {
	c := New[string, int](4)
	c.Put("a", 1)
	c.Purge()

	assert.Equal(t, 0, c.Len())
	c.Put("b", 2)
	assert.Equal(t, 1, c.Len())
}

func TestCache_Concurrent(t *testing.T) {
	c := New[string, int](64)
	var wg sync.WaitGroup

	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 500; i++ {
				key := fmt.Sprintf("%d-%d", g, i%100)
				c.Put(key, i)
				c.Get(key)
			}
		}(g)
	}
	wg.Wait()

	assert.LessOrEqual(t, c.Len(), 64)
}
