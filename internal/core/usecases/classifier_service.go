package usecases

import (
	"context"

	"github.com/kjayaram/gridpath/internal/core/domain"
	"github.com/kjayaram/gridpath/internal/core/ports"
)

// ClassifierService derives coarse terrain and wind categories for the
// surrounding design form. The wind-zone lookup is an acknowledged rough
// preview; the optimization backend computes the authoritative value.
type ClassifierService struct {
	geocoder ports.Geocoder // optional
}

// NewClassifierService creates a ClassifierService. geocoder may be nil.
func NewClassifierService(geocoder ports.Geocoder) *ClassifierService {
	return &ClassifierService{geocoder: geocoder}
}

// ClassifyTerrain buckets a profile by its elevation range: under 10 m is
// flat, under 50 m rolling, anything above mountainous.
func (s *ClassifierService) ClassifyTerrain(profile *domain.TerrainProfile) (domain.TerrainClass, error) {
	if len(profile.Points) == 0 {
		return "", domain.ErrEmptyProfile
	}

	switch r := profile.ElevationRange(); {
	case r < 10:
		return domain.TerrainFlat, nil
	case r < 50:
		return domain.TerrainRolling, nil
	default:
		return domain.TerrainMountainous, nil
	}
}

type windRegion struct {
	bounds domain.Bounds
	zone   domain.WindZone
}

// Bounding-box approximation of the IS 875 basic wind speed map. First match
// wins, so the more specific coastal and mountain belts come before the
// plains fallback.
var windRegions = []windRegion{
	{
		// Eastern coastal belt, cyclone prone
		bounds: domain.Bounds{MinLat: 8, MinLon: 79, MaxLat: 22, MaxLon: 93},
		zone:   domain.WindZone{Zone: 5, SpeedMS: 50, Description: "cyclonic coastal belt"},
	},
	{
		// Northeastern hill states
		bounds: domain.Bounds{MinLat: 22, MinLon: 89, MaxLat: 29, MaxLon: 97},
		zone:   domain.WindZone{Zone: 5, SpeedMS: 50, Description: "northeastern hills"},
	},
	{
		// Himalayan foothill belt
		bounds: domain.Bounds{MinLat: 28, MinLon: 72, MaxLat: 37, MaxLon: 97},
		zone:   domain.WindZone{Zone: 4, SpeedMS: 47, Description: "himalayan foothills"},
	},
	{
		// Northwestern arid belt
		bounds: domain.Bounds{MinLat: 20, MinLon: 68, MaxLat: 28, MaxLon: 76},
		zone:   domain.WindZone{Zone: 4, SpeedMS: 47, Description: "northwestern arid belt"},
	},
	{
		// Southern west coast
		bounds: domain.Bounds{MinLat: 8, MinLon: 74, MaxLat: 16, MaxLon: 77},
		zone:   domain.WindZone{Zone: 2, SpeedMS: 39, Description: "southern west coast"},
	},
}

// defaultWindZone covers locations no region box matches.
var defaultWindZone = domain.WindZone{Zone: 3, SpeedMS: 44, Description: "inland plains"}

// ClassifyWindZone returns the wind-zone preview for a location, typically
// the first point of a committed route.
func (s *ClassifierService) ClassifyWindZone(p domain.GeoPoint) domain.WindZone {
	for _, r := range windRegions {
		if r.bounds.Contains(p) {
			return r.zone
		}
	}
	return defaultWindZone
}

// Classification bundles the categorical hints derived from one profile.
type Classification struct {
	Terrain  domain.TerrainClass `json:"terrain"`
	WindZone domain.WindZone     `json:"wind_zone"`
	Context  *domain.GeoContext  `json:"context,omitempty"`
}

// Classify derives terrain and wind categories for a profile and its starting
// point, enriched with geocoding context when a geocoder is configured.
// Geocoding failure degrades to an unresolved context, never an error.
func (s *ClassifierService) Classify(ctx context.Context, profile *domain.TerrainProfile, start domain.GeoPoint) (*Classification, error) {
	terrain, err := s.ClassifyTerrain(profile)
	if err != nil {
		return nil, err
	}

	result := &Classification{
		Terrain:  terrain,
		WindZone: s.ClassifyWindZone(start),
	}

	if s.geocoder != nil {
		if gc, err := s.geocoder.ReverseGeocode(ctx, start); err == nil {
			result.Context = gc
		} else {
			result.Context = &domain.GeoContext{ResolutionMode: domain.ResolutionUnresolved}
		}
	}
	return result, nil
}
