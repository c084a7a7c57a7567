package domain

// TerrainPoint is one sample of a terrain profile: cumulative distance from
// the route start and elevation at that point.
type TerrainPoint struct {
	DistanceM  float64 `json:"distance_m"`
	ElevationM float64 `json:"elevation_m"`
}

// TerrainProfile is the elevation profile of a densified route. Profiles are
// immutable once produced; every densified route point maps to exactly one
// profile point, real or fallback.
type TerrainProfile struct {
	Points        []TerrainPoint `json:"points"`
	LengthM       float64        `json:"length_m"`
	MinElevationM float64        `json:"min_elevation_m"`
	MaxElevationM float64        `json:"max_elevation_m"`
	AvgElevationM float64        `json:"avg_elevation_m"`

	// FailedPoints counts samples that fell back to zero elevation because
	// their tile could not be fetched or decoded.
	FailedPoints int `json:"failed_points,omitempty"`

	// Degenerate flags a profile whose elevation range is implausibly near
	// zero. That almost always means sampling failed wholesale rather than
	// genuinely flat terrain, so callers should surface a warning instead of
	// trusting any classification derived from it.
	Degenerate bool `json:"degenerate"`
}

// degenerateRangeM is the elevation range below which a profile is flagged
// degenerate.
const degenerateRangeM = 0.1

// Finalize computes the summary statistics and the degeneracy flag. Called
// once by the sampler after the last point is appended.
func (p *TerrainProfile) Finalize() {
	if len(p.Points) == 0 {
		return
	}

	min := p.Points[0].ElevationM
	max := min
	var sum float64
	for _, tp := range p.Points {
		if tp.ElevationM < min {
			min = tp.ElevationM
		}
		if tp.ElevationM > max {
			max = tp.ElevationM
		}
		sum += tp.ElevationM
	}

	p.MinElevationM = min
	p.MaxElevationM = max
	p.AvgElevationM = sum / float64(len(p.Points))
	p.LengthM = p.Points[len(p.Points)-1].DistanceM
	p.Degenerate = max-min < degenerateRangeM
}

// ElevationRange returns the spread between the highest and lowest sample.
func (p *TerrainProfile) ElevationRange() float64 {
	return p.MaxElevationM - p.MinElevationM
}

// TerrainClass is a coarse terrain category derived from a profile.
type TerrainClass string

const (
	TerrainFlat        TerrainClass = "flat"
	TerrainRolling     TerrainClass = "rolling"
	TerrainMountainous TerrainClass = "mountainous"
)

// WindZone is a coarse basic-wind-speed category for a location. It is a
// best-effort client-side preview; the optimization backend computes the
// authoritative value.
type WindZone struct {
	Zone        int     `json:"zone"`
	SpeedMS     float64 `json:"basic_wind_speed_ms"`
	Description string  `json:"description"`
}
