package cache

// TileCacheValue is the raw tile payload.
type TileCacheValue []byte

// TileCache is a hot-tier byte cache keyed by the filesystem-safe key derived
// from a tile's source URL (see URLToKey). A miss is (nil, false, nil); an
// error return is treated as a miss by the lookup chain.
type TileCache interface {
	Get(key string) (TileCacheValue, bool, error)
	Set(key string, v TileCacheValue) error
}
