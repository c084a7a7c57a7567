// Package tilemath implements slippy-map tile addressing (Web Mercator)
// and the terrain-RGB elevation encoding used by tiled elevation services.
package tilemath

import "math"

// TileSize is the width and height in pixels of a raster tile.
const TileSize = 256

// TileXY returns the slippy-map tile indices containing the given point.
// Indices are clamped to the valid range for the zoom level, which absorbs
// floating-point edge effects at the antimeridian and the mercator poles.
func TileXY(lat, lon float64, zoom int) (x, y int) {
	n := math.Exp2(float64(zoom))

	x = int(math.Floor((lon + 180.0) / 360.0 * n))

	latRad := lat * math.Pi / 180.0
	y = int(math.Floor((1.0 - math.Log(math.Tan(latRad)+1.0/math.Cos(latRad))/math.Pi) / 2.0 * n))

	maxTile := int(n) - 1
	if x < 0 {
		x = 0
	} else if x > maxTile {
		x = maxTile
	}
	if y < 0 {
		y = 0
	} else if y > maxTile {
		y = maxTile
	}
	return x, y
}

// Locate maps a point to its tile indices and the pixel offset within that
// tile. The offset is clamped to [0, TileSize-1] so that points sitting
// exactly on a tile boundary resolve to the edge pixel rather than spilling
// into a neighbouring tile.
func Locate(lat, lon float64, zoom int) (x, y int, px, py uint8) {
	n := math.Exp2(float64(zoom))

	fx := (lon + 180.0) / 360.0 * n
	latRad := lat * math.Pi / 180.0
	fy := (1.0 - math.Log(math.Tan(latRad)+1.0/math.Cos(latRad))/math.Pi) / 2.0 * n

	x, y = TileXY(lat, lon, zoom)

	px = clampPixel((fx - float64(x)) * TileSize)
	py = clampPixel((fy - float64(y)) * TileSize)
	return x, y, px, py
}

// DecodeElevation decodes a terrain-RGB pixel triplet into meters.
// The formula is a pinned contract with the tile service; changing it
// silently produces wrong elevations rather than failing.
func DecodeElevation(r, g, b uint8) float64 {
	return -10000 + float64(uint32(r)*65536+uint32(g)*256+uint32(b))*0.1
}

// EncodeElevation is the inverse of DecodeElevation, quantized to 0.1 m.
func EncodeElevation(elevationM float64) (r, g, b uint8) {
	v := uint32(math.Round((elevationM + 10000) / 0.1))
	return uint8(v >> 16), uint8(v >> 8), uint8(v)
}

func clampPixel(v float64) uint8 {
	p := math.Floor(v)
	if p < 0 {
		return 0
	}
	if p > TileSize-1 {
		return TileSize - 1
	}
	return uint8(p)
}
