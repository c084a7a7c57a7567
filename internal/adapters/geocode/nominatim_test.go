package geocode

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kjayaram/gridpath/internal/core/domain"
)

func TestReverseGeocode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/reverse", r.URL.Path)
		assert.Equal(t, "jsonv2", r.URL.Query().Get("format"))
		assert.NotEmpty(t, r.URL.Query().Get("lat"))
		assert.Equal(t, "gridpath-test", r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"address":{"country_code":"in","country":"India","state":"Delhi"}}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "gridpath-test", WithRateLimit(100))
	got, err := client.ReverseGeocode(context.Background(), domain.GeoPoint{Lat: 28.61, Lon: 77.20})
	require.NoError(t, err)
	assert.Equal(t, "in", got.CountryCode)
	assert.Equal(t, "India", got.CountryName)
	assert.Equal(t, "Delhi", got.State)
	assert.Equal(t, domain.ResolutionMapDerived, got.ResolutionMode)
}

func TestReverseGeocode_ServiceError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"error":"Unable to geocode"}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "gridpath-test", WithRateLimit(100))
	_, err := client.ReverseGeocode(context.Background(), domain.GeoPoint{Lat: 0, Lon: -160})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Unable to geocode")
}

func TestReverseGeocode_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "too many requests", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "gridpath-test", WithRateLimit(100))
	_, err := client.ReverseGeocode(context.Background(), domain.GeoPoint{Lat: 28.61, Lon: 77.20})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 429")
}
