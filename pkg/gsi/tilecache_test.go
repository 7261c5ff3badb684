package gsi

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTileCache_GetPut(t *testing.T) {
	cache := NewTileCache(10, time.Hour)

	assert.Nil(t, cache.Get("natural", 14, 1, 2))

	cache.Put("natural", 14, 1, 2, []byte("tile"))
	assert.Equal(t, []byte("tile"), cache.Get("natural", 14, 1, 2))

	// Same coordinates on another layer are a different key.
	assert.Nil(t, cache.Get("artificial", 14, 1, 2))
}

func TestTileCache_TTL(t *testing.T) {
	cache := NewTileCache(10, 30*time.Millisecond)

	cache.Put("natural", 14, 0, 0, []byte("tile"))
	assert.NotNil(t, cache.Get("natural", 14, 0, 0))

	time.Sleep(40 * time.Millisecond)
	assert.Nil(t, cache.Get("natural", 14, 0, 0))

	entries, _, _ := cache.Stats()
	assert.Zero(t, entries)
}

func TestTileCache_LRUEviction(t *testing.T) {
	cache := NewTileCache(2, time.Hour)

	cache.Put("n", 14, 0, 0, []byte("a"))
	cache.Put("n", 14, 0, 1, []byte("b"))

	// Touch the first tile so the second becomes the eviction victim.
	cache.Get("n", 14, 0, 0)

	cache.Put("n", 14, 0, 2, []byte("c"))

	assert.NotNil(t, cache.Get("n", 14, 0, 0))
	assert.Nil(t, cache.Get("n", 14, 0, 1))
	assert.NotNil(t, cache.Get("n", 14, 0, 2))
}

func TestTileCache_UpdateInPlace(t *testing.T) {
	cache := NewTileCache(2, time.Hour)

	cache.Put("n", 14, 0, 0, []byte("v1"))
	cache.Put("n", 14, 0, 0, []byte("v2"))

	assert.Equal(t, []byte("v2"), cache.Get("n", 14, 0, 0))
	entries, _, _ := cache.Stats()
	assert.Equal(t, 1, entries)
}

func TestTileCache_Concurrent(t *testing.T) {
	cache := NewTileCache(100, time.Hour)

	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			cache.Put("n", 14, n, 0, []byte("tile"))
			cache.Get("n", 14, n, 0)
		}(i)
	}
	wg.Wait()

	entries, hits, _ := cache.Stats()
	assert.Equal(t, 50, entries)
	assert.Equal(t, int64(50), hits)
}
