// Command profile samples a terrain profile for a route given on the command
// line and prints it as JSON. Useful for smoke-testing a tile service without
// standing up the API.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/kjayaram/gridpath/internal/adapters/tilecache"
	"github.com/kjayaram/gridpath/internal/adapters/tiles"
	"github.com/kjayaram/gridpath/internal/core/domain"
	"github.com/kjayaram/gridpath/internal/core/usecases"
	"github.com/kjayaram/gridpath/internal/pkg/config"
	"github.com/kjayaram/gridpath/internal/pkg/logging"
)

func main() {
	route := flag.String("route", "", "semicolon-separated lat,lon pairs, e.g. \"28.61,77.20;28.65,77.25\"")
	interval := flag.Float64("interval", 0, "sampling interval in meters (0 = config default)")
	flag.Parse()

	logging.Setup("warn", "text")

	cfg, err := config.Load("gridpath-profile")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	points, err := parseRoute(*route)
	if err != nil {
		log.Fatalf("parse route: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	fetcher := tiles.NewClient(cfg.Tiles.URLTemplate, cfg.Tiles.RPS,
		tiles.WithTimeout(time.Duration(cfg.Tiles.TimeoutSeconds)*time.Second))
	store := tilecache.NewLRU(cfg.Tiles.CacheCapacity)
	terrain := usecases.NewTerrainService(fetcher, store, nil, cfg.Tiles.Zoom, cfg.Tiles.IntervalM)

	profile, err := terrain.Sample(ctx, usecases.SampleRequest{
		Route:     points,
		IntervalM: *interval,
		OnProgress: func(fraction float64) {
			fmt.Fprintf(os.Stderr, "\rsampling %3.0f%%", fraction*100)
		},
	})
	fmt.Fprintln(os.Stderr)
	if err != nil {
		log.Fatalf("sample: %v", err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(profile); err != nil {
		log.Fatalf("encode profile: %v", err)
	}
}

// parseRoute turns "lat,lon;lat,lon;..." into route points.
func parseRoute(raw string) ([]domain.GeoPoint, error) {
	if raw == "" {
		return nil, fmt.Errorf("route is required (try -route \"28.61,77.20;28.65,77.25\")")
	}

	var points []domain.GeoPoint
	for _, pair := range strings.Split(raw, ";") {
		parts := strings.SplitN(strings.TrimSpace(pair), ",", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("malformed point %q", pair)
		}
		lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
		if err != nil {
			return nil, fmt.Errorf("malformed latitude in %q", pair)
		}
		lon, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
		if err != nil {
			return nil, fmt.Errorf("malformed longitude in %q", pair)
		}
		if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
			return nil, fmt.Errorf("point %q out of range", pair)
		}
		points = append(points, domain.GeoPoint{Lat: lat, Lon: lon})
	}

	if len(points) < 2 {
		return nil, fmt.Errorf("need at least two points, got %d", len(points))
	}
	return points, nil
}
