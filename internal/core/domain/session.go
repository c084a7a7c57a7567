package domain

// RouteSession is the state machine behind interactive route drawing. It is
// exclusively owned by one caller; any locking happens above this type.
//
// States: idle -> drawing (Start, which clears), drawing -> idle (Stop keeps
// the points, Clear discards them). Commit is valid in any state with at
// least two points and leaves the session untouched.
type RouteSession struct {
	points        []GeoPoint
	totalLengthKm float64
	drawing       bool
}

// NewRouteSession returns an idle session with no points.
func NewRouteSession() *RouteSession {
	return &RouteSession{}
}

// Start clears any existing route and enters drawing mode.
func (s *RouteSession) Start() {
	s.points = nil
	s.totalLengthKm = 0
	s.drawing = true
}

// AddPoint appends a point and recomputes the running length. Only valid
// while drawing.
func (s *RouteSession) AddPoint(p GeoPoint) error {
	if !s.drawing {
		return ErrNotDrawing
	}
	s.points = append(s.points, p)
	s.totalLengthKm = PathLength(s.points) / 1000
	return nil
}

// Stop pauses drawing without discarding the route.
func (s *RouteSession) Stop() {
	s.drawing = false
}

// Clear discards the route and returns to idle.
func (s *RouteSession) Clear() {
	s.points = nil
	s.totalLengthKm = 0
	s.drawing = false
}

// Commit returns the immutable route and exits drawing mode. With fewer than
// two points it fails with ErrRouteTooShort and the session state is
// unchanged.
func (s *RouteSession) Commit() (*CommittedRoute, error) {
	if len(s.points) < 2 {
		return nil, ErrRouteTooShort
	}
	route := &CommittedRoute{
		Points:   append([]GeoPoint(nil), s.points...),
		LengthKm: s.totalLengthKm,
	}
	s.drawing = false
	return route, nil
}

// Points returns a copy of the current route.
func (s *RouteSession) Points() []GeoPoint {
	return append([]GeoPoint(nil), s.points...)
}

// TotalLengthKm returns the running route length in kilometers.
func (s *RouteSession) TotalLengthKm() float64 {
	return s.totalLengthKm
}

// Drawing reports whether the session is in drawing mode.
func (s *RouteSession) Drawing() bool {
	return s.drawing
}
