package usecase

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/tilekeep/tilekeep/internal/geo"
	"github.com/tilekeep/tilekeep/internal/repository/cache"
	"github.com/tilekeep/tilekeep/internal/repository/region"
	"github.com/tilekeep/tilekeep/pkg/logger"
)

// RegionUseCase manages the stored region list around the downloader: it
// creates pending regions, lists them, and removes them together with their
// tile directories.
type RegionUseCase struct {
	store      region.Store
	disk       *cache.DiskCache
	downloader *DownloadUseCase
	logger     logger.Logger
}

func NewRegionUseCase(store region.Store, disk *cache.DiskCache, downloader *DownloadUseCase, l logger.Logger) *RegionUseCase {
	return &RegionUseCase{
		store:      store,
		disk:       disk,
		downloader: downloader,
		logger:     l,
	}
}

func (uc *RegionUseCase) List() ([]region.OfflineRegion, error) {
	return uc.store.List()
}

func (uc *RegionUseCase) Get(id string) (*region.OfflineRegion, bool, error) {
	return uc.store.Get(id)
}

// Create persists a new pending region. The caller may supply an id; a UUID
// is assigned otherwise.
func (uc *RegionUseCase) Create(id, name string, bbox geo.BBox, minZoom, maxZoom int) (region.OfflineRegion, error) {
	if id == "" {
		id = uuid.NewString()
	}

	r := region.OfflineRegion{
		ID:        id,
		Name:      name,
		North:     bbox.North,
		South:     bbox.South,
		East:      bbox.East,
		West:      bbox.West,
		MinZoom:   minZoom,
		MaxZoom:   maxZoom,
		CreatedAt: time.Now().UTC(),
		Status:    region.StatusPending,
	}

	if err := r.Validate(); err != nil {
		return region.OfflineRegion{}, err
	}

	if err := uc.store.Upsert(r); err != nil {
		return region.OfflineRegion{}, err
	}

	uc.logger.Info("region created", "region", r.ID, "name", r.Name)

	return r, nil
}

// Remove deletes a region's metadata and its tile directory. Both effects
// must occur; when only the metadata could be deleted the error names the
// half-removed state so the caller can retry.
func (uc *RegionUseCase) Remove(id string) (bool, error) {
	// An active download for the region is cancelled first so late writes do
	// not resurrect the tile directory.
	uc.downloader.Cancel(id)

	removed, err := uc.store.Remove(id)
	if err != nil {
		return false, err
	}
	if !removed {
		return false, nil
	}

	if err := uc.disk.RemoveRegionDir(id); err != nil {
		return true, fmt.Errorf("region %s metadata removed but tile directory deletion failed: %w", id, err)
	}

	uc.logger.Info("region removed", "region", id)

	return true, nil
}
