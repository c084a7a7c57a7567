package tilecache

import (
	"testing"

	"github.com/kjayaram/gridpath/internal/core/domain"
)

func tile(x, y int) *domain.DecodedTile {
	return &domain.DecodedTile{Key: domain.TileKey{Zoom: 14, X: x, Y: y}}
}

func TestLRU_GetPut(t *testing.T) {
	c := NewLRU(4)

	if _, ok := c.Get(domain.TileKey{Zoom: 14, X: 1, Y: 1}); ok {
		t.Fatal("empty cache should miss")
	}

	c.Put(tile(1, 1))
	got, ok := c.Get(domain.TileKey{Zoom: 14, X: 1, Y: 1})
	if !ok || got.Key.X != 1 {
		t.Fatal("expected hit after put")
	}
}

func TestLRU_EvictsOldest(t *testing.T) {
	c := NewLRU(2)
	c.Put(tile(1, 0))
	c.Put(tile(2, 0))

	// Touch tile 1 so tile 2 becomes the eviction candidate.
	if _, ok := c.Get(domain.TileKey{Zoom: 14, X: 1, Y: 0}); !ok {
		t.Fatal("expected hit")
	}

	c.Put(tile(3, 0))
	if c.Len() != 2 {
		t.Fatalf("capacity exceeded: %d", c.Len())
	}
	if _, ok := c.Get(domain.TileKey{Zoom: 14, X: 2, Y: 0}); ok {
		t.Error("least recently used tile should have been evicted")
	}
	if _, ok := c.Get(domain.TileKey{Zoom: 14, X: 1, Y: 0}); !ok {
		t.Error("recently used tile should survive")
	}
}

func TestLRU_PutIsIdempotent(t *testing.T) {
	c := NewLRU(2)
	c.Put(tile(1, 1))
	c.Put(tile(1, 1))
	if c.Len() != 1 {
		t.Fatalf("duplicate put should not grow the cache, len=%d", c.Len())
	}
}

func TestLRU_DefaultCapacity(t *testing.T) {
	c := NewLRU(0)
	if c.capacity != DefaultCapacity {
		t.Errorf("capacity = %d, want %d", c.capacity, DefaultCapacity)
	}
}
