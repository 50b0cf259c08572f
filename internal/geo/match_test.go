package geo

import (
	"math"
	"testing"
)

func TestContainsTile(t *testing.T) {
	bbox := BBox{North: 52.6, South: 52.4, East: 13.5, West: 13.3}

	inside := LatLngToTile(52.5, 13.4, 12)
	if !ContainsTile(inside, bbox, 10, 14) {
		t.Errorf("tile %v centered inside bbox not matched", inside)
	}

	// Same position, zoom outside the region's range.
	if ContainsTile(inside, bbox, 13, 14) {
		t.Errorf("tile %v matched below minZoom", inside)
	}
	tooDeep := LatLngToTile(52.5, 13.4, 15)
	if ContainsTile(tooDeep, bbox, 10, 14) {
		t.Errorf("tile %v matched above maxZoom", tooDeep)
	}

	outside := LatLngToTile(48.85, 2.35, 12)
	if ContainsTile(outside, bbox, 10, 14) {
		t.Errorf("tile %v centered far outside bbox matched", outside)
	}
}

func TestOverlapRatio(t *testing.T) {
	query := BBox{North: 10, South: 0, East: 10, West: 0}

	tests := []struct {
		name  string
		other BBox
		want  float64
	}{
		{"disjoint", BBox{North: 30, South: 20, East: 30, West: 20}, 0},
		{"touching edge", BBox{North: 10, South: 0, East: 20, West: 10}, 0},
		{"query contained", BBox{North: 20, South: -10, East: 20, West: -10}, 1},
		{"identical", query, 1},
		{"half overlap", BBox{North: 10, South: 0, East: 5, West: -5}, 0.5},
		{"quarter overlap", BBox{North: 5, South: -5, East: 5, West: -5}, 0.25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := OverlapRatio(query, tt.other)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("OverlapRatio = %f, want %f", got, tt.want)
			}
		})
	}
}

func TestOverlapRatioDegenerateQuery(t *testing.T) {
	degenerate := BBox{North: 5, South: 5, East: 10, West: 0}
	if got := OverlapRatio(degenerate, BBox{North: 10, South: 0, East: 10, West: 0}); got != 0 {
		t.Errorf("zero-area query returned %f, want 0", got)
	}
}
