package usecases

import (
	"context"
	"fmt"

	"github.com/kjayaram/gridpath/internal/core/domain"
	"github.com/kjayaram/gridpath/internal/core/ports"
)

// progressEvery is how many points are sampled between progress events.
const progressEvery = 8

// TerrainService orchestrates terrain profiling: route densification, tile
// resolution, fetch/decode via the tile store, and profile assembly.
type TerrainService struct {
	fetcher   ports.TileFetcher
	tiles     ports.TileStore
	events    ports.EventPublisher // optional
	zoom      int
	intervalM float64
}

// NewTerrainService creates a new TerrainService. events may be nil.
func NewTerrainService(fetcher ports.TileFetcher, tiles ports.TileStore, events ports.EventPublisher, zoom int, intervalM float64) *TerrainService {
	if zoom <= 0 {
		zoom = 14
	}
	if intervalM <= 0 {
		intervalM = 30
	}
	return &TerrainService{fetcher: fetcher, tiles: tiles, events: events, zoom: zoom, intervalM: intervalM}
}

// SampleRequest describes one terrain sampling operation.
type SampleRequest struct {
	Route     []domain.GeoPoint
	IntervalM float64 // 0 means the service default
	SessionID string  // optional; enables progress/profile event publishing
	// OnProgress, if set, receives the completed fraction after every point.
	// Calls are strictly monotonic.
	OnProgress func(fraction float64)
}

// Sample walks the densified route sequentially and assembles the elevation
// profile. A tile that cannot be fetched or decoded degrades the affected
// points to zero elevation; sampling never drops a point. Structural errors
// (fewer than two route points) fail before any tile is requested, and
// context cancellation stops the walk without returning a partial profile.
func (s *TerrainService) Sample(ctx context.Context, req SampleRequest) (*domain.TerrainProfile, error) {
	if len(req.Route) < 2 {
		return nil, domain.ErrInsufficientRoutePoints
	}

	interval := req.IntervalM
	if interval <= 0 {
		interval = s.intervalM
	}

	points := domain.Densify(req.Route, interval)
	profile := &domain.TerrainProfile{Points: make([]domain.TerrainPoint, 0, len(points))}

	// Tiles that already failed once in this walk are not refetched; their
	// points all take the zero-elevation fallback.
	failed := make(map[domain.TileKey]bool)

	var cumulative float64
	for i, p := range points {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		key, px, py := domain.LocateTile(p, s.zoom)

		tile, ok := s.tiles.Get(key)
		if !ok && !failed[key] {
			fetched, err := s.fetcher.FetchTile(ctx, key)
			if err != nil {
				if ctx.Err() != nil {
					return nil, ctx.Err()
				}
				failed[key] = true
			} else {
				s.tiles.Put(fetched)
				tile = fetched
			}
		}

		elevation := 0.0
		if tile != nil {
			elevation = tile.ElevationAt(px, py)
		} else {
			profile.FailedPoints++
		}

		if i > 0 {
			cumulative += points[i-1].DistanceTo(p)
		}
		profile.Points = append(profile.Points, domain.TerrainPoint{
			DistanceM:  cumulative,
			ElevationM: elevation,
		})

		fraction := float64(i+1) / float64(len(points))
		if req.OnProgress != nil {
			req.OnProgress(fraction)
		}
		if s.events != nil && req.SessionID != "" && (i%progressEvery == 0 || i == len(points)-1) {
			_ = s.events.PublishProgress(ctx, req.SessionID, fraction)
		}
	}

	profile.Finalize()

	if s.events != nil && req.SessionID != "" {
		_ = s.events.PublishProfile(ctx, req.SessionID, profile)
	}

	return profile, nil
}

// ElevationAt resolves the elevation of a single point. Unlike Sample there
// is no fallback: a tile failure is surfaced as an error.
func (s *TerrainService) ElevationAt(ctx context.Context, p domain.GeoPoint) (float64, error) {
	key, px, py := domain.LocateTile(p, s.zoom)

	tile, ok := s.tiles.Get(key)
	if !ok {
		fetched, err := s.fetcher.FetchTile(ctx, key)
		if err != nil {
			return 0, fmt.Errorf("fetch tile %s: %w", key, err)
		}
		s.tiles.Put(fetched)
		tile = fetched
	}
	return tile.ElevationAt(px, py), nil
}
