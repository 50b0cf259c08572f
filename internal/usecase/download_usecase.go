package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/tilekeep/tilekeep/internal/geo"
	"github.com/tilekeep/tilekeep/internal/repository/cache"
	"github.com/tilekeep/tilekeep/internal/repository/region"
	"github.com/tilekeep/tilekeep/pkg/logger"
	"github.com/tilekeep/tilekeep/pkg/metrics"
)

// ErrAlreadyDownloading is returned when a second download is started for a
// region that is still in flight. The second call is rejected, not queued.
var ErrAlreadyDownloading = errors.New("download already in progress for region")

// Progress is a transient, broadcast-only download event. It is not persisted;
// the equivalent state is reconstructable from the region's status and counts.
type Progress struct {
	RegionID    string  `json:"regionId"`
	Progress    float64 `json:"progress"`
	IsComplete  bool    `json:"isComplete"`
	IsCancelled bool    `json:"isCancelled"`
	Error       string  `json:"error,omitempty"`
}

// Callbacks receive the per-download lifecycle events. Any field may be nil.
type Callbacks struct {
	OnProgress func(Progress)
	OnComplete func(regionID string)
	OnError    func(regionID string, err error)
}

type activeDownload struct {
	cancel context.CancelFunc

	// emitMu serializes progress emission so observers see a monotonic
	// sequence. Callbacks run under emitMu but never under mu, so they may
	// call back into GetProgress or Cancel.
	emitMu sync.Mutex

	mu        sync.Mutex
	done      int
	progress  float64
	cancelled bool
}

func (ad *activeDownload) getProgress() float64 {
	ad.mu.Lock()
	defer ad.mu.Unlock()
	return ad.progress
}

func (ad *activeDownload) markCancelled() {
	ad.mu.Lock()
	ad.cancelled = true
	ad.mu.Unlock()
}

func (ad *activeDownload) isCancelled() bool {
	ad.mu.Lock()
	defer ad.mu.Unlock()
	return ad.cancelled
}

// DownloadUseCase orchestrates region downloads: bounded concurrency, a fixed
// inter-dispatch delay as a crude server-friendliness throttle, idempotent
// resumption of partially downloaded regions, and progress fan-out.
//
// Cancellation aborts in-flight requests through the region's context. It is
// still best-effort at the edges: a response that races the cancel is simply
// discarded because the region is no longer tracked as active.
type DownloadUseCase struct {
	store         region.Store
	disk          *cache.DiskCache
	fetcher       TileFetcher
	tileURL       string
	concurrency   int
	dispatchDelay time.Duration
	logger        logger.Logger

	mu     sync.RWMutex
	active map[string]*activeDownload

	// wg tracks the per-region run goroutines so Shutdown can drain them.
	wg sync.WaitGroup

	subMu       sync.Mutex
	subscribers []chan Progress
}

func NewDownloadUseCase(store region.Store, disk *cache.DiskCache, fetcher TileFetcher,
	tileURL string, concurrency int, dispatchDelay time.Duration, l logger.Logger) *DownloadUseCase {
	if concurrency < 1 {
		concurrency = 5
	}
	return &DownloadUseCase{
		store:         store,
		disk:          disk,
		fetcher:       fetcher,
		tileURL:       tileURL,
		concurrency:   concurrency,
		dispatchDelay: dispatchDelay,
		logger:        l,
		active:        make(map[string]*activeDownload),
	}
}

// Start accepts a region for download. It rejects a region that is already in
// flight, persists status=downloading, creates the region's tile directory and
// runs the download in the background. Regions in a terminal state re-enter
// downloading.
func (uc *DownloadUseCase) Start(r region.OfflineRegion, cb Callbacks) error {
	if err := r.Validate(); err != nil {
		return err
	}

	uc.mu.Lock()
	if _, busy := uc.active[r.ID]; busy {
		uc.mu.Unlock()
		return ErrAlreadyDownloading
	}
	ctx, cancel := context.WithCancel(context.Background())
	ad := &activeDownload{cancel: cancel}
	uc.active[r.ID] = ad
	uc.mu.Unlock()
	metrics.ActiveDownloads.Inc()

	jobs := enumerateTiles(r.BBox(), r.MinZoom, r.MaxZoom)

	r.Status = region.StatusDownloading
	r.TotalTiles = len(jobs)
	r.DownloadedTiles = 0
	r.Error = ""
	r.DownloadedAt = nil

	if err := uc.store.Upsert(r); err != nil {
		uc.clearActive(r.ID)
		cancel()
		return fmt.Errorf("failed to persist region: %w", err)
	}

	if err := uc.disk.EnsureRegionDir(r.ID); err != nil {
		uc.failRegion(r, ad, cb, fmt.Errorf("failed to create region directory: %w", err))
		cancel()
		return err
	}

	uc.logger.Info("region download started",
		"region", r.ID, "name", r.Name, "tiles", len(jobs),
		"min_zoom", r.MinZoom, "max_zoom", r.MaxZoom)

	uc.wg.Add(1)
	go uc.run(ctx, r, jobs, ad, cb)

	return nil
}

// Shutdown cancels every active download and waits for the worker goroutines
// to drain. Called on process shutdown.
func (uc *DownloadUseCase) Shutdown() {
	uc.mu.RLock()
	ids := make([]string, 0, len(uc.active))
	for id := range uc.active {
		ids = append(ids, id)
	}
	uc.mu.RUnlock()

	for _, id := range ids {
		uc.Cancel(id)
	}
	uc.wg.Wait()
}

// Cancel stops an active download. Returns false when the region is not
// active. The cancelled status is persisted and a cancelled event emitted;
// responses already in flight are discarded.
func (uc *DownloadUseCase) Cancel(regionID string) bool {
	uc.mu.Lock()
	ad, ok := uc.active[regionID]
	if !ok {
		uc.mu.Unlock()
		return false
	}
	ad.markCancelled()
	ad.cancel()
	delete(uc.active, regionID)
	uc.mu.Unlock()
	metrics.ActiveDownloads.Dec()

	if r, found, err := uc.store.Get(regionID); err == nil && found {
		r.Status = region.StatusCancelled
		if err := uc.store.Upsert(*r); err != nil {
			uc.logger.Error("failed to persist cancelled region", "region", regionID, "error", err)
		}
	}

	uc.logger.Info("region download cancelled", "region", regionID)
	uc.broadcast(Progress{RegionID: regionID, Progress: ad.getProgress(), IsCancelled: true})
	metrics.RegionDownloads.WithLabelValues("cancelled").Inc()

	return true
}

// GetProgress returns the in-flight progress for a region, or 0 when it is
// not active.
func (uc *DownloadUseCase) GetProgress(regionID string) float64 {
	uc.mu.RLock()
	ad, ok := uc.active[regionID]
	uc.mu.RUnlock()
	if !ok {
		return 0
	}
	return ad.getProgress()
}

// IsActive reports whether a region download is in flight.
func (uc *DownloadUseCase) IsActive(regionID string) bool {
	uc.mu.RLock()
	defer uc.mu.RUnlock()
	_, ok := uc.active[regionID]
	return ok
}

// Subscribe registers a progress observer. Events are dropped rather than
// blocking a slow subscriber.
func (uc *DownloadUseCase) Subscribe() <-chan Progress {
	ch := make(chan Progress, 16)
	uc.subMu.Lock()
	uc.subscribers = append(uc.subscribers, ch)
	uc.subMu.Unlock()
	return ch
}

func (uc *DownloadUseCase) Unsubscribe(ch <-chan Progress) {
	uc.subMu.Lock()
	defer uc.subMu.Unlock()
	for i, sub := range uc.subscribers {
		if sub == ch {
			uc.subscribers = append(uc.subscribers[:i], uc.subscribers[i+1:]...)
			close(sub)
			return
		}
	}
}

func (uc *DownloadUseCase) broadcast(p Progress) {
	uc.subMu.Lock()
	defer uc.subMu.Unlock()
	for _, sub := range uc.subscribers {
		select {
		case sub <- p:
		default:
		}
	}
}

func (uc *DownloadUseCase) run(ctx context.Context, r region.OfflineRegion,
	jobs []geo.TileCoordinate, ad *activeDownload, cb Callbacks) {
	defer uc.wg.Done()

	total := len(jobs)

	var (
		wg       sync.WaitGroup
		errOnce  sync.Once
		firstErr error
	)
	sem := make(chan struct{}, uc.concurrency)

dispatch:
	for i, job := range jobs {
		if i > 0 && uc.dispatchDelay > 0 {
			select {
			case <-time.After(uc.dispatchDelay):
			case <-ctx.Done():
				break dispatch
			}
		}

		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
			break dispatch
		}

		wg.Add(1)
		go func(t geo.TileCoordinate) {
			defer wg.Done()
			defer func() { <-sem }()

			if err := uc.downloadTile(ctx, r.ID, t); err != nil {
				errOnce.Do(func() {
					firstErr = err
					ad.cancel()
				})
				return
			}

			// Progress is computed under the state lock but emitted with it
			// released. Nothing is emitted once the region is cancelled:
			// late results are discarded, not reported.
			ad.emitMu.Lock()
			ad.mu.Lock()
			ad.done++
			ad.progress = float64(ad.done) / float64(total)
			ev := Progress{RegionID: r.ID, Progress: ad.progress}
			cancelled := ad.cancelled
			ad.mu.Unlock()
			if !cancelled {
				if cb.OnProgress != nil {
					cb.OnProgress(ev)
				}
				uc.broadcast(ev)
			}
			ad.emitMu.Unlock()
		}(job)
	}

	wg.Wait()

	if ad.isCancelled() {
		// Cancel already persisted the status, cleared the active entry and
		// emitted the cancelled event; late results are discarded here.
		uc.logger.Debug("download worker drained after cancel", "region", r.ID)
		return
	}

	if firstErr == nil && ctx.Err() != nil {
		firstErr = ctx.Err()
	}

	if firstErr != nil {
		uc.failRegion(r, ad, cb, firstErr)
		return
	}

	uc.clearActive(r.ID)

	now := time.Now().UTC()
	r.Status = region.StatusDownloaded
	r.DownloadedAt = &now
	r.TotalTiles = total
	r.DownloadedTiles = total
	if err := uc.store.Upsert(r); err != nil {
		uc.logger.Error("failed to persist downloaded region", "region", r.ID, "error", err)
	}

	uc.logger.Info("region download complete", "region", r.ID, "tiles", total)

	if cb.OnComplete != nil {
		cb.OnComplete(r.ID)
	}
	uc.broadcast(Progress{RegionID: r.ID, Progress: 1.0, IsComplete: true})
	metrics.RegionDownloads.WithLabelValues("downloaded").Inc()
}

// failRegion aborts a download as a whole: tiles already written stay on disk
// for a later resumable attempt, but the metadata records only the terminal
// failure.
func (uc *DownloadUseCase) failRegion(r region.OfflineRegion, ad *activeDownload, cb Callbacks, cause error) {
	uc.clearActive(r.ID)

	r.Status = region.StatusError
	r.Error = cause.Error()
	if err := uc.store.Upsert(r); err != nil {
		uc.logger.Error("failed to persist failed region", "region", r.ID, "error", err)
	}

	uc.logger.Error("region download failed", "region", r.ID, "error", cause)

	if cb.OnError != nil {
		cb.OnError(r.ID, cause)
	}
	uc.broadcast(Progress{RegionID: r.ID, Progress: ad.getProgress(), Error: cause.Error()})
	metrics.RegionDownloads.WithLabelValues("error").Inc()
}

// downloadTile fetches one tile into the region's directory. Tiles already on
// disk are skipped without a network call, which makes re-downloads of a
// partially fetched region idempotent.
func (uc *DownloadUseCase) downloadTile(ctx context.Context, regionID string, t geo.TileCoordinate) error {
	url := TileURL(uc.tileURL, t)
	key := cache.URLToKey(url)

	if uc.disk.ExistsRegion(regionID, key) {
		return nil
	}

	data, err := uc.fetcher.Fetch(ctx, url)
	if err != nil {
		return fmt.Errorf("tile %s: %w", t, err)
	}

	if err := uc.disk.WriteRegion(regionID, key, data); err != nil {
		return fmt.Errorf("tile %s: %w", t, err)
	}

	return nil
}

func (uc *DownloadUseCase) clearActive(regionID string) {
	uc.mu.Lock()
	_, ok := uc.active[regionID]
	delete(uc.active, regionID)
	uc.mu.Unlock()
	if ok {
		metrics.ActiveDownloads.Dec()
	}
}

func enumerateTiles(bbox geo.BBox, minZoom, maxZoom int) []geo.TileCoordinate {
	tiles := make([]geo.TileCoordinate, 0, geo.TotalTiles(bbox, minZoom, maxZoom))
	for z := minZoom; z <= maxZoom; z++ {
		minTile, maxTile := geo.TileRangeForBBox(bbox, z)
		for x := minTile.X; x <= maxTile.X; x++ {
			for y := minTile.Y; y <= maxTile.Y; y++ {
				tiles = append(tiles, geo.TileCoordinate{X: x, Y: y, Z: z})
			}
		}
	}
	return tiles
}
