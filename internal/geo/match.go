package geo

// ContainsTile reports whether a tile belongs to a region download: the tile's
// zoom lies within [minZoom, maxZoom] and its center falls inside the bounding
// box.
func ContainsTile(t TileCoordinate, bbox BBox, minZoom, maxZoom int) bool {
	if t.Z < minZoom || t.Z > maxZoom {
		return false
	}

	lat, lng := TileCenter(t)
	return lat <= bbox.North && lat >= bbox.South && lng >= bbox.West && lng <= bbox.East
}

// OverlapRatio returns the fraction of the query box covered by the other box,
// in [0, 1]. Areas are computed in planar degree space, the same approximation
// the size estimator uses.
func OverlapRatio(query, other BBox) float64 {
	queryArea := (query.North - query.South) * (query.East - query.West)
	if queryArea <= 0 {
		return 0
	}

	north := min(query.North, other.North)
	south := max(query.South, other.South)
	east := min(query.East, other.East)
	west := max(query.West, other.West)

	if north <= south || east <= west {
		return 0
	}

	return (north - south) * (east - west) / queryArea
}
