package usecase

import (
	"context"
	"fmt"

	"github.com/tilekeep/tilekeep/internal/geo"
	"github.com/tilekeep/tilekeep/internal/repository/cache"
	"github.com/tilekeep/tilekeep/internal/repository/region"
	"github.com/tilekeep/tilekeep/pkg/logger"
	"github.com/tilekeep/tilekeep/pkg/metrics"
)

// TileUseCase serves tile reads through the cache tiers:
// memory -> optional shared (redis) -> loose disk -> downloaded regions ->
// network. Every hit below the memory tier is written back into memory; a
// network fetch is additionally written through to loose disk.
type TileUseCase struct {
	hot     cache.TileCache // in-process tier, always present
	shared  cache.TileCache // optional shared tier, may be nil
	disk    *cache.DiskCache
	regions region.Store
	fetcher TileFetcher
	tileURL string
	logger  logger.Logger
}

func NewTileUseCase(hot cache.TileCache, shared cache.TileCache, disk *cache.DiskCache,
	regions region.Store, fetcher TileFetcher, tileURL string, l logger.Logger) *TileUseCase {
	return &TileUseCase{
		hot:     hot,
		shared:  shared,
		disk:    disk,
		regions: regions,
		fetcher: fetcher,
		tileURL: tileURL,
		logger:  l,
	}
}

// GetTile resolves one tile through the lookup chain. Read failures at any
// tier degrade to a miss for that tier; only a failed network fetch at the end
// of the chain surfaces as an error.
func (uc *TileUseCase) GetTile(ctx context.Context, coord geo.TileCoordinate) ([]byte, error) {
	if !coord.Valid() {
		return nil, fmt.Errorf("invalid tile coordinate %s", coord)
	}

	url := TileURL(uc.tileURL, coord)
	key := cache.URLToKey(url)

	if data, ok, err := uc.hot.Get(key); err == nil && ok {
		metrics.CacheHits.WithLabelValues("memory").Inc()
		return data, nil
	}

	if uc.shared != nil {
		data, ok, err := uc.shared.Get(key)
		if err != nil {
			uc.logger.Debug("shared cache read failed", "key", key, "error", err)
		} else if ok {
			metrics.CacheHits.WithLabelValues("shared").Inc()
			uc.writeBack(key, data, false)
			return data, nil
		}
	}

	data, ok, err := uc.disk.ReadLoose(key)
	if err != nil {
		uc.logger.Debug("loose tile read failed", "key", key, "error", err)
	} else if ok {
		metrics.CacheHits.WithLabelValues("disk").Inc()
		uc.writeBack(key, data, false)
		return data, nil
	}

	if data, ok := uc.readFromRegions(coord, key); ok {
		metrics.CacheHits.WithLabelValues("region").Inc()
		uc.writeBack(key, data, false)
		return data, nil
	}

	metrics.CacheMisses.Inc()

	data, err = uc.fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}

	uc.logger.Debug("fetched tile from source", "tile", coord.String(), "size", len(data))

	if err := uc.disk.WriteLoose(key, data); err != nil {
		// The tile is still served; only persistence is degraded.
		uc.logger.Warn("failed to persist loose tile", "key", key, "error", err)
	}
	uc.writeBack(key, data, true)
	metrics.CacheStores.Inc()

	return data, nil
}

// readFromRegions scans stored regions in store-list order and reads the tile
// from the first region whose zoom range and bounding box contain the tile's
// center.
func (uc *TileUseCase) readFromRegions(coord geo.TileCoordinate, key string) ([]byte, bool) {
	regions, err := uc.regions.List()
	if err != nil {
		uc.logger.Warn("region list failed during tile lookup", "error", err)
		return nil, false
	}

	for _, r := range regions {
		if !geo.ContainsTile(coord, r.BBox(), r.MinZoom, r.MaxZoom) {
			continue
		}
		data, ok, err := uc.disk.ReadRegion(r.ID, key)
		if err != nil {
			uc.logger.Debug("region tile read failed", "region", r.ID, "key", key, "error", err)
			continue
		}
		if ok {
			return data, true
		}
	}

	return nil, false
}

func (uc *TileUseCase) writeBack(key string, data []byte, toShared bool) {
	if err := uc.hot.Set(key, data); err != nil {
		uc.logger.Debug("memory cache write failed", "key", key, "error", err)
	}
	if toShared && uc.shared != nil {
		if err := uc.shared.Set(key, data); err != nil {
			uc.logger.Debug("shared cache write failed", "key", key, "error", err)
		}
	}
}

// FallbackTile returns the placeholder tile; it never fails while the cache
// root is writable, and even then callers get the in-memory synthesis.
func (uc *TileUseCase) FallbackTile() ([]byte, error) {
	metrics.FallbackTilesServed.Inc()
	return uc.disk.FallbackTile()
}

// Coverage returns the stored region best overlapping the query box and the
// overlap ratio in [0, 1]. Callers can serve a covered request from the region
// while a fresh fetch proceeds in the background.
func (uc *TileUseCase) Coverage(query geo.BBox) (*region.OfflineRegion, float64, error) {
	regions, err := uc.regions.List()
	if err != nil {
		return nil, 0, err
	}

	var (
		best      *region.OfflineRegion
		bestRatio float64
	)
	for i := range regions {
		if regions[i].Status != region.StatusDownloaded {
			continue
		}
		ratio := geo.OverlapRatio(query, regions[i].BBox())
		if ratio > bestRatio {
			best = &regions[i]
			bestRatio = ratio
		}
	}

	return best, bestRatio, nil
}
