package domain

import "math"

// PathLength returns the sum of consecutive great-circle distances over the
// route, in meters. A route with fewer than two points has length zero.
func PathLength(route []GeoPoint) float64 {
	var total float64
	for i := 1; i < len(route); i++ {
		total += route[i-1].DistanceTo(route[i])
	}
	return total
}

// Densify expands a sparse polyline into a point sequence sampled roughly
// every intervalM meters. For each segment, floor(dist/interval) evenly
// spaced interior points are inserted; the original vertices are always
// preserved, so the output starts and ends exactly on the input's first and
// last point. A route with fewer than two points is returned unchanged.
func Densify(route []GeoPoint, intervalM float64) []GeoPoint {
	if len(route) < 2 || intervalM <= 0 {
		return route
	}

	out := make([]GeoPoint, 0, len(route))
	for i := 0; i < len(route)-1; i++ {
		a, b := route[i], route[i+1]
		out = append(out, a)

		segment := a.DistanceTo(b)
		steps := int(math.Floor(segment / intervalM))
		for s := 1; s <= steps; s++ {
			t := float64(s) / float64(steps+1)
			out = append(out, Interpolate(a, b, t))
		}
	}
	return append(out, route[len(route)-1])
}

// CommittedRoute is the immutable result of committing a drawing session.
type CommittedRoute struct {
	Points   []GeoPoint `json:"points"`
	LengthKm float64    `json:"length_km"`
}
