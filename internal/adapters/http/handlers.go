package http

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/twpayne/go-polyline"

	"github.com/kjayaram/gridpath/internal/core/domain"
	"github.com/kjayaram/gridpath/internal/core/usecases"
	"github.com/kjayaram/gridpath/internal/pkg/metrics"
)

// maxRoutePoints caps the number of vertices accepted in one request.
const maxRoutePoints = 10000

// maxIntervalM bounds the sampling interval accepted from clients.
const maxIntervalM = 1000

type pointRequest struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

func (p pointRequest) validate() bool {
	return p.Lat >= -90 && p.Lat <= 90 && p.Lon >= -180 && p.Lon <= 180
}

func (p pointRequest) toDomain() domain.GeoPoint {
	return domain.GeoPoint{Lat: p.Lat, Lon: p.Lon}
}

// profileRequest describes a route to sample. The route comes either as an
// explicit point list or as an encoded polyline string.
type profileRequest struct {
	Points    []pointRequest `json:"points"`
	Polyline  string         `json:"polyline"`
	IntervalM float64        `json:"interval_m"`
	SessionID string         `json:"session_id"`
}

// routePoints resolves the request into a validated point slice.
func (r *profileRequest) routePoints() ([]domain.GeoPoint, string) {
	if r.Polyline != "" {
		coords, _, err := polyline.DecodeCoords([]byte(r.Polyline))
		if err != nil {
			return nil, "invalid polyline encoding"
		}
		pts := make([]domain.GeoPoint, 0, len(coords))
		for _, c := range coords {
			p := pointRequest{Lat: c[0], Lon: c[1]}
			if !p.validate() {
				return nil, "polyline contains out-of-range coordinates"
			}
			pts = append(pts, p.toDomain())
		}
		if len(pts) > maxRoutePoints {
			return nil, "too many route points"
		}
		return pts, ""
	}

	if len(r.Points) > maxRoutePoints {
		return nil, "too many route points"
	}
	pts := make([]domain.GeoPoint, 0, len(r.Points))
	for _, p := range r.Points {
		if !p.validate() {
			return nil, "coordinates out of range"
		}
		pts = append(pts, p.toDomain())
	}
	return pts, ""
}

// queryPoint parses required lat/lon query parameters.
func queryPoint(c *fiber.Ctx) (domain.GeoPoint, bool) {
	latRaw, lonRaw := c.Query("lat"), c.Query("lon")
	if latRaw == "" || lonRaw == "" {
		return domain.GeoPoint{}, false
	}
	lat, errLat := strconv.ParseFloat(latRaw, 64)
	lon, errLon := strconv.ParseFloat(lonRaw, 64)
	if errLat != nil || errLon != nil {
		return domain.GeoPoint{}, false
	}
	p := pointRequest{Lat: lat, Lon: lon}
	if !p.validate() {
		return domain.GeoPoint{}, false
	}
	return p.toDomain(), true
}

// ---- Session handlers ----

// CreateSessionHandler starts a new drawing session.
func CreateSessionHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		view := deps.Sessions.Create()
		return c.Status(201).JSON(view)
	}
}

// ListSessionsHandler lists drawing sessions, oldest first.
func ListSessionsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sessions := deps.Sessions.List()

		offset := c.QueryInt("offset", 0)
		limit := c.QueryInt("limit", 100)
		if offset < 0 {
			offset = 0
		}
		if limit <= 0 || limit > 200 {
			limit = 100
		}

		total := len(sessions)
		if offset >= total {
			sessions = nil
		} else {
			end := offset + limit
			if end > total {
				end = total
			}
			sessions = sessions[offset:end]
		}

		pg := Pagination{Offset: offset, Limit: limit, Total: total}
		SetLinkHeaders(c, pg)
		return c.JSON(PaginatedResponse{Data: sessions, Pagination: pg})
	}
}

// GetSessionHandler returns the current state of a session.
func GetSessionHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		view, err := deps.Sessions.Get(c.Params("id"))
		if err != nil {
			return domainError(c, err)
		}
		return c.JSON(view)
	}
}

// AddPointHandler appends a vertex to a drawing session.
func AddPointHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body pointRequest
		if err := c.BodyParser(&body); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		if !body.validate() {
			return errBadRequest(c, "lat must be -90..90 and lon -180..180")
		}

		view, err := deps.Sessions.AddPoint(c.Params("id"), body.toDomain())
		if err != nil {
			return domainError(c, err)
		}
		return c.JSON(view)
	}
}

// StopSessionHandler pauses drawing without discarding the route.
func StopSessionHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		view, err := deps.Sessions.Stop(c.Params("id"))
		if err != nil {
			return domainError(c, err)
		}
		return c.JSON(view)
	}
}

// ClearSessionHandler resets a session to an empty idle state.
func ClearSessionHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		view, err := deps.Sessions.Clear(c.Params("id"))
		if err != nil {
			return domainError(c, err)
		}
		return c.JSON(view)
	}
}

// CommitSessionHandler finalizes the drawn route. The response carries the
// route both as a point list and as an encoded polyline for compact transfer.
func CommitSessionHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		route, err := deps.Sessions.Commit(c.Params("id"))
		if err != nil {
			return domainError(c, err)
		}

		coords := make([][]float64, len(route.Points))
		for i, p := range route.Points {
			coords[i] = []float64{p.Lat, p.Lon}
		}

		return c.JSON(fiber.Map{
			"points":    route.Points,
			"length_km": route.LengthKm,
			"polyline":  string(polyline.EncodeCoords(coords)),
		})
	}
}

// DeleteSessionHandler discards a session.
func DeleteSessionHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := deps.Sessions.Delete(c.Params("id")); err != nil {
			return domainError(c, err)
		}
		return c.SendStatus(204)
	}
}

// ---- Terrain handlers ----

// ProfileHandler samples an elevation profile along a route.
func ProfileHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body profileRequest
		if err := c.BodyParser(&body); err != nil {
			return errBadRequest(c, "invalid request body")
		}

		route, msg := body.routePoints()
		if msg != "" {
			return errBadRequest(c, msg)
		}
		if len(route) < 2 {
			return errBadRequest(c, "route needs at least two points")
		}
		if body.IntervalM < 0 || body.IntervalM > maxIntervalM {
			return errBadRequest(c, "interval_m must be between 0 and 1000 meters")
		}

		start := time.Now()
		profile, err := deps.Terrain.Sample(c.UserContext(), usecases.SampleRequest{
			Route:     route,
			IntervalM: body.IntervalM,
			SessionID: body.SessionID,
		})
		if err != nil {
			return domainError(c, err)
		}

		metrics.SamplingDuration.Observe(time.Since(start).Seconds())
		metrics.SampledPoints.Observe(float64(len(profile.Points)))

		return c.JSON(profile)
	}
}

// ElevationHandler resolves the elevation of a single point.
func ElevationHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, ok := queryPoint(c)
		if !ok {
			return errBadRequest(c, "lat and lon query parameters are required")
		}

		elevation, err := deps.Terrain.ElevationAt(c.UserContext(), p)
		if err != nil {
			return errBadGateway(c, "tile service: "+err.Error())
		}

		return c.JSON(fiber.Map{
			"lat":         p.Lat,
			"lon":         p.Lon,
			"elevation_m": elevation,
		})
	}
}

// ClassifyHandler samples a route and derives terrain and wind categories.
func ClassifyHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body profileRequest
		if err := c.BodyParser(&body); err != nil {
			return errBadRequest(c, "invalid request body")
		}

		route, msg := body.routePoints()
		if msg != "" {
			return errBadRequest(c, msg)
		}
		if len(route) < 2 {
			return errBadRequest(c, "route needs at least two points")
		}
		if body.IntervalM < 0 || body.IntervalM > maxIntervalM {
			return errBadRequest(c, "interval_m must be between 0 and 1000 meters")
		}

		profile, err := deps.Terrain.Sample(c.UserContext(), usecases.SampleRequest{
			Route:     route,
			IntervalM: body.IntervalM,
			SessionID: body.SessionID,
		})
		if err != nil {
			return domainError(c, err)
		}

		cls, err := deps.Classifier.Classify(c.UserContext(), profile, route[0])
		if err != nil {
			return domainError(c, err)
		}

		return c.JSON(fiber.Map{
			"classification": cls,
			"profile":        profile,
		})
	}
}

// WindZoneHandler returns the wind-zone preview for a single location.
func WindZoneHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, ok := queryPoint(c)
		if !ok {
			return errBadRequest(c, "lat and lon query parameters are required")
		}
		return c.JSON(deps.Classifier.ClassifyWindZone(p))
	}
}

// ReverseGeocodeHandler resolves the administrative context of a point.
func ReverseGeocodeHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if deps.Geocoder == nil {
			return newError(c, 503, "unavailable", "geocoder not configured")
		}

		p, ok := queryPoint(c)
		if !ok {
			return errBadRequest(c, "lat and lon query parameters are required")
		}

		gc, err := deps.Geocoder.ReverseGeocode(c.UserContext(), p)
		if err != nil {
			return errBadGateway(c, "geocoder: "+err.Error())
		}
		return c.JSON(gc)
	}
}

// DistanceHandler computes the great-circle distance between two points.
func DistanceHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		parse := func(name string) (float64, bool) {
			raw := c.Query(name)
			if raw == "" {
				return 0, false
			}
			v, err := strconv.ParseFloat(raw, 64)
			return v, err == nil
		}

		fromLat, ok1 := parse("from_lat")
		fromLon, ok2 := parse("from_lon")
		toLat, ok3 := parse("to_lat")
		toLon, ok4 := parse("to_lon")
		if !ok1 || !ok2 || !ok3 || !ok4 {
			return errBadRequest(c, "from_lat, from_lon, to_lat, and to_lon are required")
		}

		from := pointRequest{Lat: fromLat, Lon: fromLon}
		to := pointRequest{Lat: toLat, Lon: toLon}
		if !from.validate() || !to.validate() {
			return errBadRequest(c, "coordinates out of range")
		}

		meters := from.toDomain().DistanceTo(to.toDomain())
		return c.JSON(fiber.Map{
			"distance_m":  meters,
			"distance_km": meters / 1000,
		})
	}
}
