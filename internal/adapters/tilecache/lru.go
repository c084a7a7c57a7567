// Package tilecache provides the in-process decode-once cache for raster
// elevation tiles.
package tilecache

import (
	"container/list"
	"sync"

	"github.com/kjayaram/gridpath/internal/core/domain"
	"github.com/kjayaram/gridpath/internal/pkg/metrics"
)

// DefaultCapacity bounds the cache at roughly 128 MiB of decoded pixels
// (256x256x4 bytes per tile).
const DefaultCapacity = 512

// LRU implements ports.TileStore as a bounded least-recently-used cache.
// Put is idempotent: concurrent decodes of the same key may both insert and
// the last write wins, which is safe because decoded tiles for a key are
// interchangeable.
type LRU struct {
	mu       sync.Mutex
	capacity int
	items    map[domain.TileKey]*list.Element
	order    *list.List // front = most recently used
}

type entry struct {
	key  domain.TileKey
	tile *domain.DecodedTile
}

// NewLRU creates a cache holding at most capacity decoded tiles.
func NewLRU(capacity int) *LRU {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &LRU{
		capacity: capacity,
		items:    make(map[domain.TileKey]*list.Element),
		order:    list.New(),
	}
}

// Get returns the decoded tile for key, promoting it to most recently used.
func (c *LRU) Get(key domain.TileKey) (*domain.DecodedTile, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.items[key]
	if !ok {
		metrics.TileCacheMisses.Inc()
		return nil, false
	}
	c.order.MoveToFront(el)
	metrics.TileCacheHits.Inc()
	return el.Value.(*entry).tile, true
}

// Put inserts or replaces a decoded tile, evicting the least recently used
// tile when over capacity.
func (c *LRU) Put(tile *domain.DecodedTile) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[tile.Key]; ok {
		el.Value.(*entry).tile = tile
		c.order.MoveToFront(el)
		return
	}

	c.items[tile.Key] = c.order.PushFront(&entry{key: tile.Key, tile: tile})

	for c.order.Len() > c.capacity {
		oldest := c.order.Back()
		c.order.Remove(oldest)
		delete(c.items, oldest.Value.(*entry).key)
		metrics.TileCacheEvictions.Inc()
	}
}

// Len returns the number of cached tiles.
func (c *LRU) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}
