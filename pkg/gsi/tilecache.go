package gsi

import (
	"fmt"
	"sync"
	"time"
)

// TileCache is a concurrent-safe LRU cache for fetched GeoJSON tiles with
// TTL expiration. Landform tiles change rarely, so a generous TTL keeps
// repeated resolutions off the network.
type TileCache struct {
	mu     sync.Mutex
	tiles  map[string]*cachedTile
	order  []string // front=oldest, back=newest
	cap    int
	ttl    time.Duration
	hits   int64
	misses int64
}

type cachedTile struct {
	body      []byte
	fetchedAt time.Time
}

// NewTileCache creates a TileCache holding at most cap tiles for ttl.
func NewTileCache(cap int, ttl time.Duration) *TileCache {
	return &TileCache{
		tiles: make(map[string]*cachedTile),
		cap:   cap,
		ttl:   ttl,
	}
}

func cacheKey(layer string, z, x, y int) string {
	return fmt.Sprintf("%s/%d/%d/%d", layer, z, x, y)
}

// Get returns the cached tile body, or nil on miss or expiry.
func (c *TileCache) Get(layer string, z, x, y int) []byte {
	key := cacheKey(layer, z, x, y)

	c.mu.Lock()
	defer c.mu.Unlock()

	tile, ok := c.tiles[key]
	if !ok {
		c.misses++
		return nil
	}
	if time.Since(tile.fetchedAt) > c.ttl {
		delete(c.tiles, key)
		c.drop(key)
		c.misses++
		return nil
	}

	c.drop(key)
	c.order = append(c.order, key)
	c.hits++
	return tile.body
}

// Put stores a tile body, evicting the least recently used tile at
// capacity.
func (c *TileCache) Put(layer string, z, x, y int, body []byte) {
	key := cacheKey(layer, z, x, y)

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.tiles[key]; ok {
		c.tiles[key] = &cachedTile{body: body, fetchedAt: time.Now()}
		c.drop(key)
		c.order = append(c.order, key)
		return
	}

	for len(c.tiles) >= c.cap && len(c.order) > 0 {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.tiles, oldest)
	}

	c.tiles[key] = &cachedTile{body: body, fetchedAt: time.Now()}
	c.order = append(c.order, key)
}

// Stats reports hit/miss counts and current occupancy.
func (c *TileCache) Stats() (entries int, hits, misses int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.tiles), c.hits, c.misses
}

// drop removes key from the LRU order slice.
func (c *TileCache) drop(key string) {
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			return
		}
	}
}
