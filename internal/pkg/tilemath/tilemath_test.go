package tilemath

import (
	"math"
	"testing"
)

func TestTileXY_Origin(t *testing.T) {
	// (0,0) sits at the center of the world, so at zoom 14 it falls in
	// tile (2^13, 2^13).
	x, y := TileXY(0, 0, 14)
	if x != 8192 || y != 8192 {
		t.Errorf("TileXY(0,0,14) = (%d,%d), want (8192,8192)", x, y)
	}
}

func TestTileXY_Clamped(t *testing.T) {
	x, y := TileXY(89.9, 180.0, 2)
	if x != 3 {
		t.Errorf("x should clamp to 3, got %d", x)
	}
	if y != 0 {
		t.Errorf("near-polar y should clamp to 0, got %d", y)
	}
}

func TestLocate_SameTileForNearbyPoints(t *testing.T) {
	// Two points a few meters apart must land in the same zoom-14 tile
	// (tile footprint is ~2.4 km at this latitude).
	x1, y1, _, _ := Locate(28.6000, 77.2000, 14)
	x2, y2, _, _ := Locate(28.6001, 77.2001, 14)
	if x1 != x2 || y1 != y2 {
		t.Errorf("nearby points resolved to different tiles: (%d,%d) vs (%d,%d)", x1, y1, x2, y2)
	}
}

func TestLocate_PixelWithinRange(t *testing.T) {
	for _, p := range [][2]float64{
		{28.60, 77.20},
		{-33.86, 151.21},
		{0, 0},
		{85.0, -179.99},
	} {
		_, _, px, py := Locate(p[0], p[1], 14)
		if px > 255 || py > 255 {
			t.Errorf("pixel offset out of range for %v: (%d,%d)", p, px, py)
		}
	}
}

func TestDecodeElevation_Known(t *testing.T) {
	if got := DecodeElevation(0, 0, 0); got != -10000 {
		t.Errorf("decode(0,0,0) = %f, want -10000", got)
	}
	// 1 raw unit = 0.1 m
	if got := DecodeElevation(0, 0, 1); math.Abs(got-(-9999.9)) > 1e-9 {
		t.Errorf("decode(0,0,1) = %f, want -9999.9", got)
	}
	// Sea level: raw value 100000 = 0x0186A0
	if got := DecodeElevation(0x01, 0x86, 0xA0); math.Abs(got) > 1e-9 {
		t.Errorf("decode sea level = %f, want 0", got)
	}
}

func TestDecodeElevation_Monotonic(t *testing.T) {
	prev := DecodeElevation(0, 0, 0)
	for _, raw := range []uint32{1, 255, 256, 65535, 65536, 100000, 1<<24 - 1} {
		e := DecodeElevation(uint8(raw>>16), uint8(raw>>8), uint8(raw))
		if e <= prev {
			t.Fatalf("decode not monotonic at raw=%d: %f <= %f", raw, e, prev)
		}
		prev = e
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	for _, elev := range []float64{-10000, -420.5, 0, 8.3, 216.7, 4478.1, 8848.9} {
		r, g, b := EncodeElevation(elev)
		got := DecodeElevation(r, g, b)
		if math.Abs(got-elev) > 0.1 {
			t.Errorf("round trip %f -> %f exceeds quantization step", elev, got)
		}
	}
}
