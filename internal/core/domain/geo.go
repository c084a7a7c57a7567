package domain

import "github.com/kjayaram/gridpath/internal/pkg/geospatial"

// GeoPoint represents a geographic coordinate (WGS 84).
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// DistanceTo returns the great-circle distance to q in meters.
func (p GeoPoint) DistanceTo(q GeoPoint) float64 {
	return geospatial.Haversine(p.Lat, p.Lon, q.Lat, q.Lon)
}

// Interpolate returns the point at fraction t along the straight line from a
// to b in lat/lon space. This is deliberately not a geodesic slerp: at the
// sampling intervals used for terrain profiles (tens of meters) the error is
// negligible, and it matches the behavior the profile accuracy bounds were
// validated against.
func Interpolate(a, b GeoPoint, t float64) GeoPoint {
	return GeoPoint{
		Lat: geospatial.Lerp(a.Lat, b.Lat, t),
		Lon: geospatial.Lerp(a.Lon, b.Lon, t),
	}
}

// Bounds represents a geographic bounding box.
type Bounds struct {
	MinLat float64 `json:"min_lat"`
	MinLon float64 `json:"min_lon"`
	MaxLat float64 `json:"max_lat"`
	MaxLon float64 `json:"max_lon"`
}

// Contains reports whether p lies inside the box (edges inclusive).
func (b Bounds) Contains(p GeoPoint) bool {
	return p.Lat >= b.MinLat && p.Lat <= b.MaxLat &&
		p.Lon >= b.MinLon && p.Lon <= b.MaxLon
}
