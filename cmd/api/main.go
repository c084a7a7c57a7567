package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/kjayaram/gridpath/internal/adapters/geocode"
	"github.com/kjayaram/gridpath/internal/adapters/http"
	natsadapter "github.com/kjayaram/gridpath/internal/adapters/nats"
	"github.com/kjayaram/gridpath/internal/adapters/tilecache"
	"github.com/kjayaram/gridpath/internal/adapters/tiles"
	"github.com/kjayaram/gridpath/internal/adapters/valkey"
	"github.com/kjayaram/gridpath/internal/core/ports"
	"github.com/kjayaram/gridpath/internal/core/usecases"
	"github.com/kjayaram/gridpath/internal/pkg/config"
	"github.com/kjayaram/gridpath/internal/pkg/logging"
	"github.com/kjayaram/gridpath/internal/pkg/telemetry"
)

func main() {
	cfg, err := config.Load("gridpath-api")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// Structured logging
	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}
	logging.Setup(logLevel, "json")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Telemetry
	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.TempoAddr)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

	// Cache
	var cache *valkey.Cache
	if cfg.Valkey.Enabled {
		cache, err = valkey.New(cfg.Valkey.Addr)
		if err != nil {
			slog.Warn("valkey unavailable", "error", err)
			cache = nil
		} else {
			defer cache.Close()
		}
	}

	// NATS
	publisher, err := natsadapter.NewPublisher(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats unavailable", "error", err)
		publisher = nil
	} else {
		defer publisher.Close()
	}

	// Raw NATS connection for WebSocket relay
	natsConn, err := natsadapter.RawConn(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats ws conn unavailable", "error", err)
	}

	// Tile pipeline
	tileOpts := []tiles.Option{
		tiles.WithTimeout(time.Duration(cfg.Tiles.TimeoutSeconds) * time.Second),
	}
	if cache != nil {
		tileOpts = append(tileOpts, tiles.WithByteCache(cache, cfg.Tiles.ByteCacheTTL))
	}
	fetcher := tiles.NewClient(cfg.Tiles.URLTemplate, cfg.Tiles.RPS, tileOpts...)
	tileStore := tilecache.NewLRU(cfg.Tiles.CacheCapacity)

	// Geocoder
	var geocoder ports.Geocoder
	if cfg.Geocoder.Enabled {
		geocoder = geocode.NewClient(cfg.Geocoder.BaseURL, cfg.Geocoder.UserAgent)
	}

	// Use cases
	sessionSvc := usecases.NewSessionService()
	var events ports.EventPublisher
	if publisher != nil {
		events = publisher
	}
	terrainSvc := usecases.NewTerrainService(fetcher, tileStore, events, cfg.Tiles.Zoom, cfg.Tiles.IntervalM)
	classifierSvc := usecases.NewClassifierService(geocoder)

	deps := &http.Dependencies{
		Sessions:   sessionSvc,
		Terrain:    terrainSvc,
		Classifier: classifierSvc,
		Geocoder:   geocoder,
		Tiles:      tileStore,
		NATS:       natsConn,
		Cache:      cache,
	}

	// Fiber
	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    4 * 1024 * 1024, // large point lists for long routes
		AppName:      "GridPath API",
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     "http://localhost:3000, http://localhost:5173",
		AllowMethods:     "GET,POST,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: false,
		MaxAge:           3600,
	}))

	http.SetupRoutes(app, deps)

	// Graceful shutdown
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		slog.Info("API server starting", "addr", addr)
		if err := app.Listen(addr); err != nil {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutdown signal received, draining connections...", "signal", sig.String())

	// Give in-flight requests up to 10s to complete
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}

	slog.Info("server stopped")
}
