package estimate

import (
	"math"
	"testing"

	"github.com/tilekeep/tilekeep/internal/geo"
)

func TestAvgTileSizeKB(t *testing.T) {
	tests := []struct {
		style string
		want  float64
	}{
		{"raster", RasterTileKB},
		{"vector", VectorTileKB},
		{"satellite", SatelliteTileKB},
		{"", RasterTileKB},
		{"watercolor", RasterTileKB},
	}

	for _, tt := range tests {
		if got := AvgTileSizeKB(tt.style); got != tt.want {
			t.Errorf("AvgTileSizeKB(%q) = %f, want %f", tt.style, got, tt.want)
		}
	}
}

func TestSizeKB(t *testing.T) {
	bbox := geo.BBox{North: 52.6, South: 52.4, East: 13.5, West: 13.3}
	tiles := geo.TotalTiles(bbox, 10, 12)

	got := SizeKB(bbox, 10, 12, RasterTileKB)
	want := float64(tiles) * RasterTileKB
	if got != want {
		t.Errorf("SizeKB = %f, want %f (%d tiles)", got, want, tiles)
	}
}

func TestDownloadTime(t *testing.T) {
	tests := []struct {
		name      string
		sizeKB    float64
		speedMbps float64
		want      string
	}{
		// 1250 KB = 10000 kilobits, 10 seconds at 1 Mbps.
		{"seconds", 1250, 1, "10s"},
		// 120 seconds at 1 Mbps.
		{"minutes", 15000, 1, "2m"},
		// 7200 seconds at 1 Mbps.
		{"hours", 900000, 1, "2h 0m"},
		{"hours with minutes", 937500, 1, "2h 5m"},
		// 59.5 seconds rounds up and carries into minutes.
		{"carry into minutes", 7437.5, 1, "1m"},
		// 7199 seconds is 120 ceiled minutes, carried into hours.
		{"carry into hours", 899875, 1, "2h 0m"},
		{"zero speed", 1000, 0, "unknown"},
		{"negative speed", 1000, -5, "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DownloadTime(tt.sizeKB, tt.speedMbps); got != tt.want {
				t.Errorf("DownloadTime(%f, %f) = %q, want %q", tt.sizeKB, tt.speedMbps, got, tt.want)
			}
		})
	}
}

func TestAreaKm2(t *testing.T) {
	// One degree square at the equator: roughly 111.19 km per side.
	equator := geo.BBox{North: 0.5, South: -0.5, East: 0.5, West: -0.5}
	got := AreaKm2(equator)
	side := earthRadiusKm * math.Pi / 180
	want := side * side
	if math.Abs(got-want) > 1 {
		t.Errorf("AreaKm2(equator degree square) = %f, want ~%f", got, want)
	}

	// The same box at 60 degrees north shrinks by cos(60) = 0.5.
	north := geo.BBox{North: 60.5, South: 59.5, East: 0.5, West: -0.5}
	gotNorth := AreaKm2(north)
	if math.Abs(gotNorth-want/2) > want*0.01 {
		t.Errorf("AreaKm2 at 60N = %f, want ~%f", gotNorth, want/2)
	}
}
