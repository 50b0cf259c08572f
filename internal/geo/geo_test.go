package geo

import (
	"math"
	"testing"
)

func TestLatLngToTileKnownPoints(t *testing.T) {
	tests := []struct {
		name     string
		lat, lng float64
		zoom     int
		want     TileCoordinate
	}{
		{"origin z0", 0, 0, 0, TileCoordinate{X: 0, Y: 0, Z: 0}},
		{"origin z1", 0, 0, 1, TileCoordinate{X: 1, Y: 1, Z: 1}},
		{"nw quadrant z1", 45, -90, 1, TileCoordinate{X: 0, Y: 0, Z: 1}},
		{"berlin z10", 52.52, 13.405, 10, TileCoordinate{X: 550, Y: 335, Z: 10}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := LatLngToTile(tt.lat, tt.lng, tt.zoom)
			if got != tt.want {
				t.Errorf("LatLngToTile(%f, %f, %d) = %v, want %v", tt.lat, tt.lng, tt.zoom, got, tt.want)
			}
		})
	}
}

func TestLatLngToTileRoundTrip(t *testing.T) {
	// Projecting a coordinate to a tile and the tile back to its NW corner
	// must stay within one tile width of the original point.
	points := []struct {
		lat, lng float64
	}{
		{52.52, 13.405},
		{-33.86, 151.21},
		{37.77, -122.42},
		{0.01, 0.01},
	}

	for _, p := range points {
		for zoom := 4; zoom <= 14; zoom += 5 {
			tile := LatLngToTile(p.lat, p.lng, zoom)
			if !tile.Valid() {
				t.Fatalf("LatLngToTile(%f, %f, %d) produced invalid tile %v", p.lat, p.lng, zoom, tile)
			}

			lat, lng := TileToLatLng(tile)
			lngWidth := 360.0 / math.Pow(2, float64(zoom))
			if math.Abs(lng-p.lng) > lngWidth {
				t.Errorf("zoom %d: lng %f drifted more than one tile from %f", zoom, lng, p.lng)
			}

			// Latitude tiles shrink towards the poles, one equatorial tile
			// height is a safe upper bound at these latitudes.
			latSouth, _ := TileToLatLng(TileCoordinate{X: tile.X, Y: tile.Y + 1, Z: tile.Z})
			if p.lat > lat || p.lat < latSouth {
				t.Errorf("zoom %d: lat %f outside tile span [%f, %f]", zoom, p.lat, latSouth, lat)
			}
		}
	}
}

func TestLatLngToTileClampsPoles(t *testing.T) {
	for _, lat := range []float64{90, 89.9, -90, -89.9} {
		for _, zoom := range []int{0, 5, 12} {
			tile := LatLngToTile(lat, 0, zoom)
			if !tile.Valid() {
				t.Errorf("pole latitude %f at zoom %d produced out-of-range tile %v", lat, zoom, tile)
			}
		}
	}
}

func TestClampLat(t *testing.T) {
	if got := ClampLat(90); got != MercatorLatLimit {
		t.Errorf("ClampLat(90) = %f, want %f", got, MercatorLatLimit)
	}
	if got := ClampLat(-90); got != -MercatorLatLimit {
		t.Errorf("ClampLat(-90) = %f, want %f", got, -MercatorLatLimit)
	}
	if got := ClampLat(42.5); got != 42.5 {
		t.Errorf("ClampLat(42.5) = %f, want unchanged", got)
	}
}

func TestTileCoordinateValid(t *testing.T) {
	valid := []TileCoordinate{
		{0, 0, 0},
		{1023, 1023, 10},
		{0, 0, 19},
	}
	for _, tc := range valid {
		if !tc.Valid() {
			t.Errorf("%v reported invalid", tc)
		}
	}

	invalid := []TileCoordinate{
		{1, 0, 0},
		{0, 1024, 10},
		{-1, 0, 5},
		{0, 0, -1},
	}
	for _, tc := range invalid {
		if tc.Valid() {
			t.Errorf("%v reported valid", tc)
		}
	}
}

func TestTileCoordinateString(t *testing.T) {
	got := TileCoordinate{X: 550, Y: 335, Z: 10}.String()
	if got != "10/550/335" {
		t.Errorf("String() = %q, want %q", got, "10/550/335")
	}
}

func TestBBoxValidate(t *testing.T) {
	good := BBox{North: 52.6, South: 52.4, East: 13.5, West: 13.3}
	if err := good.Validate(); err != nil {
		t.Fatalf("valid bbox rejected: %v", err)
	}

	bad := []BBox{
		{North: 52.4, South: 52.6, East: 13.5, West: 13.3},
		{North: 52.6, South: 52.4, East: 13.3, West: 13.5},
		{North: 91, South: 52.4, East: 13.5, West: 13.3},
		{North: 52.6, South: 52.4, East: 181, West: 13.3},
	}
	for i, b := range bad {
		if err := b.Validate(); err == nil {
			t.Errorf("case %d: invalid bbox %v accepted", i, b)
		}
	}
}

func TestTileCountSubTileBBox(t *testing.T) {
	// A bbox smaller than one tile still needs one tile. Offset from the
	// equator so the box does not straddle a tile boundary.
	tiny := BBox{North: 0.002, South: 0.001, East: 0.002, West: 0.001}
	if got := TileCount(tiny, 5); got != 1 {
		t.Errorf("TileCount(tiny, 5) = %d, want 1", got)
	}
}

func TestTileCountScalesWithZoom(t *testing.T) {
	// Each zoom level doubles both axes, so for a bbox spanning several tiles
	// the count grows roughly fourfold per level.
	bbox := BBox{North: 10, South: 0, East: 10, West: 0}
	for zoom := 8; zoom <= 11; zoom++ {
		count := TileCount(bbox, zoom)
		next := TileCount(bbox, zoom+1)
		if next < 2*count || next > 6*count {
			t.Errorf("TileCount went %d -> %d from zoom %d to %d, outside 2x..6x", count, next, zoom, zoom+1)
		}
	}
}

func TestTotalTilesExact(t *testing.T) {
	// Hand-computed from the Mercator tile formula for this bbox:
	// z10 is x 512..514, y 509..512 (3*4), z11 is x 1024..1029, y 1018..1024
	// (6*7), z12 is x 2048..2059, y 2036..2048 (12*13).
	bbox := BBox{North: 1, South: 0, East: 1, West: 0}

	perZoom := map[int]int{10: 12, 11: 42, 12: 156}
	for z, want := range perZoom {
		if got := TileCount(bbox, z); got != want {
			t.Errorf("TileCount(z%d) = %d, want %d", z, got, want)
		}
	}

	if got := TotalTiles(bbox, 10, 12); got != 210 {
		t.Errorf("TotalTiles = %d, want 210", got)
	}
}

func TestTileRangeForBBoxOrientation(t *testing.T) {
	bbox := BBox{North: 52.6, South: 52.4, East: 13.5, West: 13.3}
	minTile, maxTile := TileRangeForBBox(bbox, 12)

	if minTile.X > maxTile.X || minTile.Y > maxTile.Y {
		t.Errorf("range inverted: min=%v max=%v", minTile, maxTile)
	}
	if minTile.Z != 12 || maxTile.Z != 12 {
		t.Errorf("zoom not preserved: min=%v max=%v", minTile, maxTile)
	}
}
