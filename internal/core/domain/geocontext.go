package domain

// ResolutionMode describes how a GeoContext was obtained.
type ResolutionMode string

const (
	ResolutionMapDerived   ResolutionMode = "map-derived"
	ResolutionUserProvided ResolutionMode = "user-provided"
	ResolutionUnresolved   ResolutionMode = "unresolved"
)

// GeoContext is the administrative context of a point as reported by the
// external reverse-geocoding service. It is consumed opaquely: nothing in
// the sampling pipeline depends on its contents.
type GeoContext struct {
	CountryCode    string         `json:"country_code,omitempty"`
	CountryName    string         `json:"country_name,omitempty"`
	State          string         `json:"state,omitempty"`
	ResolutionMode ResolutionMode `json:"resolution_mode"`
}
