package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	CacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tilekeep_cache_hits_total",
		Help: "Total number of tile cache hits by tier",
	}, []string{"tier"})

	CacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tilekeep_cache_misses_total",
		Help: "Total number of tile lookups that missed every cache tier",
	})

	CacheStores = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tilekeep_cache_stores_total",
		Help: "Total number of tile write-through operations",
	})

	FallbackTilesServed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tilekeep_fallback_tiles_served_total",
		Help: "Total number of placeholder tiles served",
	})

	TilesFetched = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tilekeep_tiles_fetched_total",
		Help: "Total number of tiles fetched from the upstream tile source",
	})

	TileFetchErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tilekeep_tile_fetch_errors_total",
		Help: "Total number of failed upstream tile fetches",
	})

	TileFetchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "tilekeep_tile_fetch_duration_seconds",
		Help:    "Duration of upstream tile fetches in seconds",
		Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
	})

	ActiveDownloads = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "tilekeep_active_region_downloads",
		Help: "Number of region downloads currently in flight",
	})

	RegionDownloads = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tilekeep_region_downloads_total",
		Help: "Total number of finished region downloads by outcome",
	}, []string{"outcome"})
)
