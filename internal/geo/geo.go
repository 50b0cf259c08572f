// Package geo implements slippy-map tile arithmetic on the spherical
// Web-Mercator projection. All functions are pure.
package geo

import (
	"fmt"
	"math"
)

const (
	// MercatorLatLimit is the highest latitude representable in Web Mercator.
	// Latitudes are clamped to this range at every call site; the projection
	// diverges towards the poles otherwise.
	MercatorLatLimit = 85.05112878

	MinLon = -180.0
	MaxLon = 180.0
)

// TileCoordinate addresses a single tile in the XYZ scheme.
// Invariant: 0 <= X,Y < 2^Z.
type TileCoordinate struct {
	X int
	Y int
	Z int
}

func (t TileCoordinate) Valid() bool {
	if t.Z < 0 {
		return false
	}
	max := 1 << t.Z
	return t.X >= 0 && t.X < max && t.Y >= 0 && t.Y < max
}

func (t TileCoordinate) String() string {
	return fmt.Sprintf("%d/%d/%d", t.Z, t.X, t.Y)
}

// BBox is a geographic bounding box in degrees. East/west are treated as a
// simple rectangle; no antimeridian splitting.
type BBox struct {
	North float64 `json:"north"`
	South float64 `json:"south"`
	East  float64 `json:"east"`
	West  float64 `json:"west"`
}

func (b BBox) Validate() error {
	if b.South >= b.North {
		return fmt.Errorf("south (%f) must be less than north (%f)", b.South, b.North)
	}
	if b.West >= b.East {
		return fmt.Errorf("west (%f) must be less than east (%f)", b.West, b.East)
	}
	if b.South < -90 || b.North > 90 {
		return fmt.Errorf("latitude out of range [-90, 90]: south=%f, north=%f", b.South, b.North)
	}
	if b.West < MinLon || b.East > MaxLon {
		return fmt.Errorf("longitude out of range [-180, 180]: west=%f, east=%f", b.West, b.East)
	}
	return nil
}

// ClampLat restricts a latitude to the Mercator-valid range.
func ClampLat(lat float64) float64 {
	return math.Max(-MercatorLatLimit, math.Min(MercatorLatLimit, lat))
}

// LatLngToTile converts a WGS84 coordinate to the tile containing it.
func LatLngToTile(lat, lng float64, zoom int) TileCoordinate {
	lat = ClampLat(lat)
	n := math.Pow(2, float64(zoom))

	x := int(math.Floor((lng + 180.0) / 360.0 * n))

	latRad := lat * math.Pi / 180.0
	y := int(math.Floor((1.0 - math.Log(math.Tan(latRad)+1.0/math.Cos(latRad))/math.Pi) / 2.0 * n))

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

	return TileCoordinate{X: x, Y: y, Z: zoom}
}

// TileToLatLng returns the north-west corner of a tile.
func TileToLatLng(t TileCoordinate) (lat, lng float64) {
	n := math.Pow(2, float64(t.Z))
	lng = float64(t.X)/n*360.0 - 180.0

	latRad := math.Atan(math.Sinh(math.Pi * (1 - 2*float64(t.Y)/n)))
	lat = latRad * 180.0 / math.Pi

	return lat, lng
}

// TileCenter returns the approximate center of a tile.
func TileCenter(t TileCoordinate) (lat, lng float64) {
	n := math.Pow(2, float64(t.Z))
	lng = (float64(t.X)+0.5)/n*360.0 - 180.0

	latRad := math.Atan(math.Sinh(math.Pi * (1 - 2*(float64(t.Y)+0.5)/n)))
	lat = latRad * 180.0 / math.Pi

	return lat, lng
}

// TileRangeForBBox returns the inclusive tile range covering a bounding box at
// one zoom level. minTile is the north-west corner, maxTile the south-east:
// tile Y grows southward.
func TileRangeForBBox(bbox BBox, zoom int) (minTile, maxTile TileCoordinate) {
	nw := LatLngToTile(bbox.North, bbox.West, zoom)
	se := LatLngToTile(bbox.South, bbox.East, zoom)
	return nw, se
}

// TileCount returns the number of tiles covering a bounding box at one zoom.
func TileCount(bbox BBox, zoom int) int {
	minTile, maxTile := TileRangeForBBox(bbox, zoom)
	return (maxTile.X - minTile.X + 1) * (maxTile.Y - minTile.Y + 1)
}

// TotalTiles sums TileCount over an inclusive zoom range.
func TotalTiles(bbox BBox, minZoom, maxZoom int) int {
	total := 0
	for z := minZoom; z <= maxZoom; z++ {
		total += TileCount(bbox, z)
	}
	return total
}
