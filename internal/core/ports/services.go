package ports

import (
	"context"

	"github.com/kjayaram/gridpath/internal/core/domain"
)

// TileFetcher retrieves and decodes raster elevation tiles from the external
// tile service. Implementations own rate limiting and timeouts.
type TileFetcher interface {
	FetchTile(ctx context.Context, key domain.TileKey) (*domain.DecodedTile, error)
}

// TileStore memoizes decoded tiles so each tile is fetched and decoded at
// most once per process. Put must be idempotent: concurrent decodes of the
// same key may race and last write wins.
type TileStore interface {
	Get(key domain.TileKey) (*domain.DecodedTile, bool)
	Put(tile *domain.DecodedTile)
	Len() int
}

// CacheService provides byte-level caching with TTLs, backed by an external
// store shared between processes.
type CacheService interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttlSeconds int) error
	Delete(ctx context.Context, key string) error
}

// EventPublisher publishes sampling lifecycle events to a message broker.
type EventPublisher interface {
	PublishProgress(ctx context.Context, sessionID string, fraction float64) error
	PublishProfile(ctx context.Context, sessionID string, profile *domain.TerrainProfile) error
	PublishBroadcast(ctx context.Context, data []byte) error
}

// Geocoder resolves administrative context for a point via the external
// reverse-geocoding service.
type Geocoder interface {
	ReverseGeocode(ctx context.Context, p domain.GeoPoint) (*domain.GeoContext, error)
}
