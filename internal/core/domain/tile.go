package domain

import (
	"fmt"

	"github.com/kjayaram/gridpath/internal/pkg/tilemath"
)

// TileKey identifies a raster elevation tile in the slippy-map grid.
type TileKey struct {
	Zoom int `json:"zoom"`
	X    int `json:"x"`
	Y    int `json:"y"`
}

// LocateTile maps a point to its tile key and the pixel offset inside the
// tile at the given zoom level.
func LocateTile(p GeoPoint, zoom int) (key TileKey, px, py uint8) {
	x, y, px, py := tilemath.Locate(p.Lat, p.Lon, zoom)
	return TileKey{Zoom: zoom, X: x, Y: y}, px, py
}

// String renders the key in z/x/y form, matching tile service URL paths.
func (k TileKey) String() string {
	return fmt.Sprintf("%d/%d/%d", k.Zoom, k.X, k.Y)
}

// DecodedTile is a 256x256 grid of terrain-RGB pixels, decoded once and then
// shared read-only between sampling operations.
type DecodedTile struct {
	Key TileKey
	// Pix holds RGBA pixel data in row-major order, 4 bytes per pixel.
	Pix []byte
}

// ElevationAt decodes the elevation in meters at the given pixel offset.
func (t *DecodedTile) ElevationAt(px, py uint8) float64 {
	i := (int(py)*tilemath.TileSize + int(px)) * 4
	return tilemath.DecodeElevation(t.Pix[i], t.Pix[i+1], t.Pix[i+2])
}
