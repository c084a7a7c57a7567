package http

import (
	"github.com/nats-io/nats.go"

	"github.com/kjayaram/gridpath/internal/adapters/valkey"
	"github.com/kjayaram/gridpath/internal/core/ports"
	"github.com/kjayaram/gridpath/internal/core/usecases"
)

// Dependencies holds all services needed by HTTP handlers.
type Dependencies struct {
	Sessions   *usecases.SessionService
	Terrain    *usecases.TerrainService
	Classifier *usecases.ClassifierService
	Geocoder   ports.Geocoder
	Tiles      ports.TileStore
	NATS       *nats.Conn
	Cache      *valkey.Cache
}
