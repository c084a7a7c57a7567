package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/twpayne/go-polyline"

	handler "github.com/kjayaram/gridpath/internal/adapters/http"
	"github.com/kjayaram/gridpath/internal/core/domain"
	"github.com/kjayaram/gridpath/internal/core/usecases"
	"github.com/kjayaram/gridpath/internal/pkg/tilemath"
)

// ---- Mocks ----

type mockFetcher struct {
	fetchFn func(ctx context.Context, key domain.TileKey) (*domain.DecodedTile, error)
}

func (m *mockFetcher) FetchTile(ctx context.Context, key domain.TileKey) (*domain.DecodedTile, error) {
	if m.fetchFn != nil {
		return m.fetchFn(ctx, key)
	}
	return nil, fmt.Errorf("no tile")
}

type mapStore struct {
	mu    sync.Mutex
	tiles map[domain.TileKey]*domain.DecodedTile
}

func newMapStore() *mapStore {
	return &mapStore{tiles: make(map[domain.TileKey]*domain.DecodedTile)}
}

func (m *mapStore) Get(key domain.TileKey) (*domain.DecodedTile, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tiles[key]
	return t, ok
}

func (m *mapStore) Put(tile *domain.DecodedTile) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tiles[tile.Key] = tile
}

func (m *mapStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.tiles)
}

type mockGeocoder struct {
	reverseFn func(ctx context.Context, p domain.GeoPoint) (*domain.GeoContext, error)
}

func (m *mockGeocoder) ReverseGeocode(ctx context.Context, p domain.GeoPoint) (*domain.GeoContext, error) {
	if m.reverseFn != nil {
		return m.reverseFn(ctx, p)
	}
	return nil, fmt.Errorf("no geocoder")
}

// uniformTile renders a decoded tile whose every pixel carries elevationM.
func uniformTile(key domain.TileKey, elevationM float64) *domain.DecodedTile {
	r, g, b := tilemath.EncodeElevation(elevationM)
	pix := make([]byte, tilemath.TileSize*tilemath.TileSize*4)
	for i := 0; i < len(pix); i += 4 {
		pix[i], pix[i+1], pix[i+2], pix[i+3] = r, g, b, 255
	}
	return &domain.DecodedTile{Key: key, Pix: pix}
}

// ---- Test helpers ----

func setupApp(deps *handler.Dependencies) *fiber.App {
	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	handler.SetupRoutes(app, deps)
	return app
}

func makeDeps(opts ...func(*handler.Dependencies)) *handler.Dependencies {
	fetcher := &mockFetcher{
		fetchFn: func(ctx context.Context, key domain.TileKey) (*domain.DecodedTile, error) {
			return uniformTile(key, 250), nil
		},
	}
	d := &handler.Dependencies{
		Sessions:   usecases.NewSessionService(),
		Terrain:    usecases.NewTerrainService(fetcher, newMapStore(), nil, 14, 30),
		Classifier: usecases.NewClassifierService(nil),
	}
	for _, o := range opts {
		o(d)
	}
	return d
}

func doJSON(t *testing.T, app *fiber.App, method, target string, body interface{}) (int, []byte) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, target, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	var out bytes.Buffer
	if _, err := out.ReadFrom(resp.Body); err != nil {
		t.Fatal(err)
	}
	return resp.StatusCode, out.Bytes()
}

// ---- Session handler tests ----

func TestSessionLifecycle(t *testing.T) {
	app := setupApp(makeDeps())

	status, body := doJSON(t, app, "POST", "/v1/sessions", nil)
	if status != 201 {
		t.Fatalf("create: expected 201, got %d", status)
	}

	var created usecases.SessionView
	if err := json.Unmarshal(body, &created); err != nil {
		t.Fatal(err)
	}
	if created.ID == "" || !created.Drawing {
		t.Fatalf("expected a fresh drawing session, got %+v", created)
	}

	base := "/v1/sessions/" + created.ID
	status, _ = doJSON(t, app, "POST", base+"/points", map[string]float64{"lat": 28.6000, "lon": 77.2000})
	if status != 200 {
		t.Fatalf("add point: expected 200, got %d", status)
	}
	status, body = doJSON(t, app, "POST", base+"/points", map[string]float64{"lat": 28.6100, "lon": 77.2100})
	if status != 200 {
		t.Fatalf("add point: expected 200, got %d", status)
	}

	var view usecases.SessionView
	json.Unmarshal(body, &view)
	if len(view.Points) != 2 || view.LengthKm <= 0 {
		t.Errorf("expected 2 points with positive length, got %+v", view)
	}

	status, body = doJSON(t, app, "POST", base+"/commit", nil)
	if status != 200 {
		t.Fatalf("commit: expected 200, got %d", status)
	}
	var committed struct {
		Points   []domain.GeoPoint `json:"points"`
		LengthKm float64           `json:"length_km"`
		Polyline string            `json:"polyline"`
	}
	json.Unmarshal(body, &committed)
	if len(committed.Points) != 2 || committed.LengthKm <= 0 {
		t.Errorf("unexpected committed route: %+v", committed)
	}
	decoded, _, err := polyline.DecodeCoords([]byte(committed.Polyline))
	if err != nil || len(decoded) != 2 {
		t.Errorf("commit should emit a decodable polyline, got %q (%v)", committed.Polyline, err)
	}

	// Commit exits drawing mode, so further points conflict.
	status, _ = doJSON(t, app, "POST", base+"/points", map[string]float64{"lat": 28.62, "lon": 77.22})
	if status != 409 {
		t.Errorf("add point after commit: expected 409, got %d", status)
	}

	status, _ = doJSON(t, app, "DELETE", base, nil)
	if status != 204 {
		t.Fatalf("delete: expected 204, got %d", status)
	}
	status, _ = doJSON(t, app, "GET", base, nil)
	if status != 404 {
		t.Errorf("get after delete: expected 404, got %d", status)
	}
}

func TestCommitSession_TooShort(t *testing.T) {
	app := setupApp(makeDeps())

	_, body := doJSON(t, app, "POST", "/v1/sessions", nil)
	var created usecases.SessionView
	json.Unmarshal(body, &created)

	doJSON(t, app, "POST", "/v1/sessions/"+created.ID+"/points", map[string]float64{"lat": 28.6, "lon": 77.2})

	status, body := doJSON(t, app, "POST", "/v1/sessions/"+created.ID+"/commit", nil)
	if status != 400 {
		t.Fatalf("expected 400, got %d", status)
	}
	var apiErr struct {
		Code string `json:"code"`
	}
	json.Unmarshal(body, &apiErr)
	if apiErr.Code != "bad_request" {
		t.Errorf("expected bad_request, got %s", apiErr.Code)
	}
}

func TestAddPoint_InvalidCoordinates(t *testing.T) {
	app := setupApp(makeDeps())

	_, body := doJSON(t, app, "POST", "/v1/sessions", nil)
	var created usecases.SessionView
	json.Unmarshal(body, &created)

	status, _ := doJSON(t, app, "POST", "/v1/sessions/"+created.ID+"/points", map[string]float64{"lat": 91, "lon": 0})
	if status != 400 {
		t.Fatalf("expected 400, got %d", status)
	}
}

func TestGetSession_NotFound(t *testing.T) {
	app := setupApp(makeDeps())

	status, _ := doJSON(t, app, "GET", "/v1/sessions/nonexistent-id", nil)
	if status != 404 {
		t.Fatalf("expected 404, got %d", status)
	}
}

func TestListSessions_Pagination(t *testing.T) {
	deps := makeDeps()
	for i := 0; i < 5; i++ {
		deps.Sessions.Create()
	}
	app := setupApp(deps)

	status, body := doJSON(t, app, "GET", "/v1/sessions?offset=2&limit=2", nil)
	if status != 200 {
		t.Fatalf("expected 200, got %d", status)
	}

	var result struct {
		Data       []usecases.SessionView `json:"data"`
		Pagination struct {
			Offset int `json:"offset"`
			Total  int `json:"total"`
		} `json:"pagination"`
	}
	json.Unmarshal(body, &result)
	if result.Pagination.Total != 5 {
		t.Errorf("expected total 5, got %d", result.Pagination.Total)
	}
	if len(result.Data) != 2 {
		t.Errorf("expected 2 sessions in page, got %d", len(result.Data))
	}
	if result.Pagination.Offset != 2 {
		t.Errorf("expected offset 2, got %d", result.Pagination.Offset)
	}
}

// ---- Profile handler tests ----

func TestProfile_Success(t *testing.T) {
	app := setupApp(makeDeps())

	status, body := doJSON(t, app, "POST", "/v1/profiles", map[string]interface{}{
		"points": []map[string]float64{
			{"lat": 28.6000, "lon": 77.2000},
			{"lat": 28.6050, "lon": 77.2050},
		},
	})
	if status != 200 {
		t.Fatalf("expected 200, got %d: %s", status, body)
	}

	var profile domain.TerrainProfile
	json.Unmarshal(body, &profile)
	if len(profile.Points) < 2 {
		t.Fatalf("expected at least 2 profile points, got %d", len(profile.Points))
	}
	if profile.MinElevationM != 250 || profile.MaxElevationM != 250 {
		t.Errorf("expected uniform 250m elevation, got min=%f max=%f", profile.MinElevationM, profile.MaxElevationM)
	}
	for i := 1; i < len(profile.Points); i++ {
		if profile.Points[i].DistanceM <= profile.Points[i-1].DistanceM {
			t.Fatalf("profile distances not strictly increasing at %d", i)
		}
	}
}

func TestProfile_PolylineInput(t *testing.T) {
	app := setupApp(makeDeps())

	encoded := polyline.EncodeCoords([][]float64{
		{28.6000, 77.2000},
		{28.6050, 77.2050},
	})

	status, body := doJSON(t, app, "POST", "/v1/profiles", map[string]interface{}{
		"polyline": string(encoded),
	})
	if status != 200 {
		t.Fatalf("expected 200, got %d: %s", status, body)
	}

	var profile domain.TerrainProfile
	json.Unmarshal(body, &profile)
	if len(profile.Points) < 2 {
		t.Errorf("expected at least 2 profile points, got %d", len(profile.Points))
	}
}

func TestProfile_SinglePoint(t *testing.T) {
	app := setupApp(makeDeps())

	status, _ := doJSON(t, app, "POST", "/v1/profiles", map[string]interface{}{
		"points": []map[string]float64{{"lat": 28.6, "lon": 77.2}},
	})
	if status != 400 {
		t.Fatalf("expected 400, got %d", status)
	}
}

func TestProfile_BadInterval(t *testing.T) {
	app := setupApp(makeDeps())

	status, _ := doJSON(t, app, "POST", "/v1/profiles", map[string]interface{}{
		"points": []map[string]float64{
			{"lat": 28.6000, "lon": 77.2000},
			{"lat": 28.6050, "lon": 77.2050},
		},
		"interval_m": 5000,
	})
	if status != 400 {
		t.Fatalf("expected 400, got %d", status)
	}
}

func TestProfile_BadPolyline(t *testing.T) {
	app := setupApp(makeDeps())

	status, _ := doJSON(t, app, "POST", "/v1/profiles", map[string]interface{}{
		"polyline": "not@valid@polyline\xff",
	})
	if status != 400 {
		t.Fatalf("expected 400, got %d", status)
	}
}

// ---- Elevation handler tests ----

func TestElevation_Success(t *testing.T) {
	app := setupApp(makeDeps())

	status, body := doJSON(t, app, "GET", "/v1/elevation?lat=28.6&lon=77.2", nil)
	if status != 200 {
		t.Fatalf("expected 200, got %d", status)
	}

	var result struct {
		ElevationM float64 `json:"elevation_m"`
	}
	json.Unmarshal(body, &result)
	if result.ElevationM != 250 {
		t.Errorf("expected 250m, got %f", result.ElevationM)
	}
}

func TestElevation_MissingParams(t *testing.T) {
	app := setupApp(makeDeps())

	status, _ := doJSON(t, app, "GET", "/v1/elevation?lat=28.6", nil)
	if status != 400 {
		t.Fatalf("expected 400, got %d", status)
	}
}

func TestElevation_TileFailure(t *testing.T) {
	deps := makeDeps(func(d *handler.Dependencies) {
		fetcher := &mockFetcher{
			fetchFn: func(ctx context.Context, key domain.TileKey) (*domain.DecodedTile, error) {
				return nil, fmt.Errorf("tile service down")
			},
		}
		d.Terrain = usecases.NewTerrainService(fetcher, newMapStore(), nil, 14, 30)
	})
	app := setupApp(deps)

	status, _ := doJSON(t, app, "GET", "/v1/elevation?lat=28.6&lon=77.2", nil)
	if status != 502 {
		t.Fatalf("expected 502, got %d", status)
	}
}

// ---- Classify handler tests ----

func TestClassify_FlatTerrain(t *testing.T) {
	app := setupApp(makeDeps())

	status, body := doJSON(t, app, "POST", "/v1/classify", map[string]interface{}{
		"points": []map[string]float64{
			{"lat": 28.6000, "lon": 77.2000},
			{"lat": 28.6050, "lon": 77.2050},
		},
	})
	if status != 200 {
		t.Fatalf("expected 200, got %d: %s", status, body)
	}

	var result struct {
		Classification struct {
			Terrain  string          `json:"terrain"`
			WindZone domain.WindZone `json:"wind_zone"`
		} `json:"classification"`
		Profile domain.TerrainProfile `json:"profile"`
	}
	json.Unmarshal(body, &result)
	if result.Classification.Terrain != "flat" {
		t.Errorf("uniform tile should classify flat, got %s", result.Classification.Terrain)
	}
	// Delhi sits in the Himalayan foothill belt
	if result.Classification.WindZone.SpeedMS != 47 {
		t.Errorf("expected 47 m/s wind speed for Delhi, got %f", result.Classification.WindZone.SpeedMS)
	}
	if len(result.Profile.Points) == 0 {
		t.Error("expected profile points alongside classification")
	}
}

// ---- Wind zone handler tests ----

func TestWindZone_Delhi(t *testing.T) {
	app := setupApp(makeDeps())

	req := httptest.NewRequest("GET", "/v1/windzone?lat=28.61&lon=77.20", nil)
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	if resp.Header.Get("Deprecation") != "true" {
		t.Error("expected Deprecation header on windzone preview")
	}
	if link := resp.Header.Get("Link"); !strings.Contains(link, "/v1/classify") {
		t.Errorf("expected successor link to /v1/classify, got %q", link)
	}

	var zone domain.WindZone
	json.NewDecoder(resp.Body).Decode(&zone)
	if zone.SpeedMS != 47 {
		t.Errorf("expected 47 m/s for Delhi, got %f", zone.SpeedMS)
	}
}

// ---- Distance handler tests ----

func TestDistance_DelhiAgra(t *testing.T) {
	app := setupApp(makeDeps())

	status, body := doJSON(t, app, "GET", "/v1/distance?from_lat=28.6139&from_lon=77.2090&to_lat=27.1767&to_lon=78.0081", nil)
	if status != 200 {
		t.Fatalf("expected 200, got %d", status)
	}

	var result struct {
		DistanceKm float64 `json:"distance_km"`
	}
	json.Unmarshal(body, &result)
	if result.DistanceKm < 170 || result.DistanceKm > 190 {
		t.Errorf("Delhi-Agra should be ~180km, got %f", result.DistanceKm)
	}
}

func TestDistance_MissingParams(t *testing.T) {
	app := setupApp(makeDeps())

	status, _ := doJSON(t, app, "GET", "/v1/distance?from_lat=28.6", nil)
	if status != 400 {
		t.Fatalf("expected 400, got %d", status)
	}
}

// ---- Geocode handler tests ----

func TestReverseGeocode_Success(t *testing.T) {
	deps := makeDeps(func(d *handler.Dependencies) {
		d.Geocoder = &mockGeocoder{
			reverseFn: func(ctx context.Context, p domain.GeoPoint) (*domain.GeoContext, error) {
				return &domain.GeoContext{
					CountryCode:    "in",
					State:          "Delhi",
					ResolutionMode: domain.ResolutionMapDerived,
				}, nil
			},
		}
	})
	app := setupApp(deps)

	status, body := doJSON(t, app, "GET", "/v1/geocode/reverse?lat=28.61&lon=77.20", nil)
	if status != 200 {
		t.Fatalf("expected 200, got %d", status)
	}

	var gc domain.GeoContext
	json.Unmarshal(body, &gc)
	if gc.State != "Delhi" || gc.ResolutionMode != domain.ResolutionMapDerived {
		t.Errorf("unexpected context: %+v", gc)
	}
}

func TestReverseGeocode_NotConfigured(t *testing.T) {
	app := setupApp(makeDeps())

	status, _ := doJSON(t, app, "GET", "/v1/geocode/reverse?lat=28.61&lon=77.20", nil)
	if status != 503 {
		t.Fatalf("expected 503, got %d", status)
	}
}

// ---- Health handler tests ----

func TestHealth_Returns200(t *testing.T) {
	app := setupApp(makeDeps())

	status, body := doJSON(t, app, "GET", "/v1/health", nil)
	if status != 200 {
		t.Fatalf("expected 200, got %d", status)
	}

	var result map[string]interface{}
	json.Unmarshal(body, &result)
	if result["status"] != "healthy" {
		t.Errorf("expected healthy status, got %v", result["status"])
	}
}

func TestReady_NoBackends(t *testing.T) {
	// NATS and Valkey are optional; absence must not fail readiness.
	app := setupApp(makeDeps())

	status, _ := doJSON(t, app, "GET", "/v1/ready", nil)
	if status != 200 {
		t.Fatalf("expected 200, got %d", status)
	}
}

// ---- Middleware tests ----

func TestAPIVersionHeader(t *testing.T) {
	app := setupApp(makeDeps())

	req := httptest.NewRequest("GET", "/v1/health", nil)
	resp, _ := app.Test(req, -1)
	if v := resp.Header.Get("X-API-Version"); v != "1.0.0" {
		t.Errorf("expected X-API-Version 1.0.0, got %q", v)
	}
}

func TestListSessions_LinkHeader(t *testing.T) {
	deps := makeDeps()
	for i := 0; i < 10; i++ {
		deps.Sessions.Create()
	}
	app := setupApp(deps)

	req := httptest.NewRequest("GET", "/v1/sessions?offset=0&limit=3", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	link := resp.Header.Get("Link")
	for _, rel := range []string{`rel="first"`, `rel="next"`, `rel="last"`} {
		if !strings.Contains(link, rel) {
			t.Errorf("expected %s in Link header, got %s", rel, link)
		}
	}
}

func TestSessions_NoStoreCacheControl(t *testing.T) {
	app := setupApp(makeDeps())

	req := httptest.NewRequest("GET", "/v1/sessions", nil)
	resp, _ := app.Test(req, -1)
	if cc := resp.Header.Get("Cache-Control"); cc != "no-store" {
		t.Errorf("expected no-store for sessions, got %q", cc)
	}
}
