// Package estimate produces pre-download size, time and area figures for a
// prospective offline region. The numbers are UI-facing approximations, not
// geodesic truth.
package estimate

import (
	"fmt"
	"math"

	"github.com/tilekeep/tilekeep/internal/geo"
)

// Average tile payload per map style, in KB.
const (
	RasterTileKB    = 15.0
	VectorTileKB    = 8.0
	SatelliteTileKB = 40.0
)

const earthRadiusKm = 6371.0

// AvgTileSizeKB returns the style-dependent default tile payload. Unknown
// styles fall back to raster.
func AvgTileSizeKB(style string) float64 {
	switch style {
	case "vector":
		return VectorTileKB
	case "satellite":
		return SatelliteTileKB
	default:
		return RasterTileKB
	}
}

// SizeKB estimates the total download payload for a region.
func SizeKB(bbox geo.BBox, minZoom, maxZoom int, avgTileSizeKB float64) float64 {
	return float64(geo.TotalTiles(bbox, minZoom, maxZoom)) * avgTileSizeKB
}

// DownloadTime formats the expected download duration for a payload of sizeKB
// at the given link speed. The unit is chosen after rounding up, so boundary
// values carry into the larger unit (59.5s is "1m", not "60s").
func DownloadTime(sizeKB, speedMbps float64) string {
	if speedMbps <= 0 {
		return "unknown"
	}

	kilobits := sizeKB * 8
	secs := int(math.Ceil(kilobits / (speedMbps * 1000)))

	if secs < 60 {
		return fmt.Sprintf("%ds", secs)
	}

	minutes := (secs + 59) / 60
	if minutes < 60 {
		return fmt.Sprintf("%dm", minutes)
	}

	return fmt.Sprintf("%dh %dm", minutes/60, minutes%60)
}

// AreaKm2 approximates the bounding-box area with average-latitude cosine
// scaling of a spherical Earth.
func AreaKm2(bbox geo.BBox) float64 {
	latSpan := bbox.North - bbox.South
	lngSpan := bbox.East - bbox.West
	meanLat := (bbox.North + bbox.South) / 2 * math.Pi / 180

	kmPerDegLat := earthRadiusKm * math.Pi / 180
	kmPerDegLng := kmPerDegLat * math.Cos(meanLat)

	return latSpan * kmPerDegLat * lngSpan * kmPerDegLng
}
