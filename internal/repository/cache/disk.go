package cache

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"
	"path/filepath"

	"github.com/tilekeep/tilekeep/pkg/logger"
)

const (
	looseDirName    = "tiles"
	regionsDirName  = "regions"
	fallbackName    = "fallback_tile.png"
	fallbackTilePx  = 256
	fallbackGridPx  = 32
)

// DiskCache is the persistent tile store. Two layouts share one key format:
//
//	<root>/tiles/<key>               loose tiles, kept indefinitely
//	<root>/regions/<regionID>/<key>  region-scoped tiles, removed with the region
//	<root>/fallback_tile.png         synthesized placeholder
type DiskCache struct {
	root   string
	logger logger.Logger
}

func NewDiskCache(root string, l logger.Logger) (*DiskCache, error) {
	for _, dir := range []string{root, filepath.Join(root, looseDirName), filepath.Join(root, regionsDirName)} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create cache directory %s: %w", dir, err)
		}
	}

	c := &DiskCache{root: root, logger: l}
	l.Info("disk cache initialized", "root", root)
	return c, nil
}

func (c *DiskCache) Root() string {
	return c.root
}

func (c *DiskCache) loosePath(key string) string {
	return filepath.Join(c.root, looseDirName, key)
}

// RegionDir returns the tile directory for a region.
func (c *DiskCache) RegionDir(regionID string) string {
	return filepath.Join(c.root, regionsDirName, regionID)
}

func (c *DiskCache) regionPath(regionID, key string) string {
	return filepath.Join(c.RegionDir(regionID), key)
}

// EnsureRegionDir creates the tile directory for a region if absent.
func (c *DiskCache) EnsureRegionDir(regionID string) error {
	return os.MkdirAll(c.RegionDir(regionID), 0755)
}

// ReadLoose reads a loose tile. A missing file is (nil, false, nil); any other
// read failure is reported so the caller can log it, but the lookup chain
// treats it as a miss either way.
func (c *DiskCache) ReadLoose(key string) (TileCacheValue, bool, error) {
	return readTile(c.loosePath(key))
}

func (c *DiskCache) WriteLoose(key string, v TileCacheValue) error {
	return writeTile(c.loosePath(key), v)
}

func (c *DiskCache) ReadRegion(regionID, key string) (TileCacheValue, bool, error) {
	return readTile(c.regionPath(regionID, key))
}

func (c *DiskCache) WriteRegion(regionID, key string, v TileCacheValue) error {
	return writeTile(c.regionPath(regionID, key), v)
}

// ExistsRegion reports whether a region already holds a tile on disk. Used to
// make region re-downloads resumable without network calls.
func (c *DiskCache) ExistsRegion(regionID, key string) bool {
	_, err := os.Stat(c.regionPath(regionID, key))
	return err == nil
}

// RemoveRegionDir recursively deletes a region's tile directory.
func (c *DiskCache) RemoveRegionDir(regionID string) error {
	return os.RemoveAll(c.RegionDir(regionID))
}

func readTile(path string) (TileCacheValue, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return data, true, nil
}

func writeTile(path string, v TileCacheValue) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create tile directory: %w", err)
	}
	if err := os.WriteFile(path, v, 0644); err != nil {
		return fmt.Errorf("failed to write tile file: %w", err)
	}
	return nil
}

// FallbackTile returns the cached placeholder image, synthesizing and
// persisting one on first use. Callers always get a renderable tile even with
// no connectivity and no matching cache.
func (c *DiskCache) FallbackTile() (TileCacheValue, error) {
	path := filepath.Join(c.root, fallbackName)

	data, exists, err := readTile(path)
	if err == nil && exists {
		return data, nil
	}

	data, err = synthesizeFallbackTile()
	if err != nil {
		return nil, fmt.Errorf("failed to synthesize fallback tile: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		// Still usable in memory even if the write failed.
		c.logger.Warn("failed to persist fallback tile", "path", path, "error", err)
	}

	return data, nil
}

// synthesizeFallbackTile draws a flat grey tile with a light grid pattern.
func synthesizeFallbackTile() ([]byte, error) {
	img := image.NewRGBA(image.Rect(0, 0, fallbackTilePx, fallbackTilePx))

	background := color.RGBA{R: 0xE0, G: 0xE0, B: 0xE0, A: 0xFF}
	grid := color.RGBA{R: 0xC0, G: 0xC0, B: 0xC0, A: 0xFF}

	draw.Draw(img, img.Bounds(), &image.Uniform{C: background}, image.Point{}, draw.Src)

	for i := 0; i < fallbackTilePx; i += fallbackGridPx {
		for j := 0; j < fallbackTilePx; j++ {
			img.Set(i, j, grid)
			img.Set(j, i, grid)
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
