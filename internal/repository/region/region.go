package region

import (
	"fmt"
	"time"

	"github.com/tilekeep/tilekeep/internal/geo"
)

// Status is the lifecycle state of an offline region. A region is created
// pending, moves to downloading when the downloader accepts it, and ends in
// one of the terminal states. Terminal states do not transition further except
// that a re-download re-enters downloading.
type Status string

const (
	StatusPending     Status = "pending"
	StatusDownloading Status = "downloading"
	StatusDownloaded  Status = "downloaded"
	StatusCancelled   Status = "cancelled"
	StatusError       Status = "error"
)

// OfflineRegion is the persisted metadata for a proactively downloaded map
// area. JSON tags match the wire shape served to clients.
type OfflineRegion struct {
	ID              string     `json:"id"`
	Name            string     `json:"name"`
	North           float64    `json:"north"`
	South           float64    `json:"south"`
	East            float64    `json:"east"`
	West            float64    `json:"west"`
	MinZoom         int        `json:"minZoom"`
	MaxZoom         int        `json:"maxZoom"`
	CreatedAt       time.Time  `json:"createdAt"`
	DownloadedAt    *time.Time `json:"downloadedAt,omitempty"`
	Status          Status     `json:"status"`
	TotalTiles      int        `json:"totalTiles,omitempty"`
	DownloadedTiles int        `json:"downloadedTiles,omitempty"`
	Error           string     `json:"error,omitempty"`
}

func (r OfflineRegion) BBox() geo.BBox {
	return geo.BBox{North: r.North, South: r.South, East: r.East, West: r.West}
}

func (r OfflineRegion) Validate() error {
	if err := r.BBox().Validate(); err != nil {
		return err
	}
	if r.MinZoom < 0 {
		return fmt.Errorf("minZoom %d must be non-negative", r.MinZoom)
	}
	if r.MinZoom > r.MaxZoom {
		return fmt.Errorf("minZoom %d must not exceed maxZoom %d", r.MinZoom, r.MaxZoom)
	}
	return nil
}

// Store is the authoritative owner of the region list. List order is stable
// (creation order) because the lookup chain scans regions in store-list order.
type Store interface {
	List() ([]OfflineRegion, error)
	Get(id string) (*OfflineRegion, bool, error)
	Upsert(r OfflineRegion) error
	Remove(id string) (bool, error)
}
