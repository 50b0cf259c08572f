package app

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	v1 "github.com/tilekeep/tilekeep/internal/infrastructure/http/v1"
	"github.com/tilekeep/tilekeep/internal/infrastructure/http/v1/handler"
	"github.com/tilekeep/tilekeep/internal/repository/cache"
	"github.com/tilekeep/tilekeep/internal/repository/region"
	"github.com/tilekeep/tilekeep/internal/usecase"
	"github.com/tilekeep/tilekeep/pkg/config"
	"github.com/tilekeep/tilekeep/pkg/http_server"
	"github.com/tilekeep/tilekeep/pkg/logger"
	"github.com/tilekeep/tilekeep/pkg/telemetry"
)

func Run(cfg *config.Config) {
	l := logger.NewZapLogger(cfg.Logger.Level)

	l.Info("app config", "cfg", cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Telemetry.Enabled {
		shutdownTelemetry, err := telemetry.InitTracer(telemetry.Config{
			ServiceName:    cfg.Telemetry.ServiceName,
			ServiceVersion: cfg.Telemetry.ServiceVersion,
			Environment:    cfg.Telemetry.Environment,
			OTLPEndpoint:   cfg.Telemetry.OTLPEndpoint,
		}, l)
		if err != nil {
			l.Fatal("failed to initialize telemetry", "error", err)
		}
		defer func() {
			if err := shutdownTelemetry(context.Background()); err != nil {
				l.Error("failed to shutdown telemetry", "error", err)
			}
		}()
	}

	disk, err := cache.NewDiskCache(cfg.Cache.Dir, l)
	if err != nil {
		l.Fatal("failed to initialize disk cache", "error", err)
	}

	memory := cache.NewMemoryCache(cfg.Cache.MemoryMaxTiles)

	var shared cache.TileCache
	if cfg.Redis.Enabled {
		redisCache, err := cache.NewRedisCache(cache.RedisConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			TTL:      cfg.Redis.TTL,
		})
		if err != nil {
			l.Fatal("failed to initialize redis cache", "error", err)
		}
		defer redisCache.Close()
		shared = redisCache
		l.Info("redis hot tier enabled", "addr", cfg.Redis.Addr)
	}

	store, err := region.NewSQLiteStore(cfg.Regions.DBPath, l)
	if err != nil {
		l.Fatal("failed to initialize region store", "error", err)
	}
	defer store.Close()

	fetcher := usecase.NewHTTPTileFetcher(cfg.Download.FetchTimeout)

	tileUseCase := usecase.NewTileUseCase(memory, shared, disk, store, fetcher, cfg.Upstream.TileURL, l)
	downloadUseCase := usecase.NewDownloadUseCase(store, disk, fetcher, cfg.Upstream.TileURL,
		cfg.Download.Concurrency, cfg.Download.DispatchDelay, l)
	regionUseCase := usecase.NewRegionUseCase(store, disk, downloadUseCase, l)

	// Mirror download progress into the log for operators.
	events := downloadUseCase.Subscribe()
	go func() {
		for ev := range events {
			switch {
			case ev.Error != "":
				l.Warn("download progress", "region", ev.RegionID, "error", ev.Error)
			case ev.IsCancelled:
				l.Info("download progress", "region", ev.RegionID, "cancelled", true)
			default:
				l.Debug("download progress", "region", ev.RegionID, "progress", ev.Progress, "complete", ev.IsComplete)
			}
		}
	}()
	defer downloadUseCase.Unsubscribe(events)

	validate := validator.New()
	h := handler.NewHandler(validate, tileUseCase, regionUseCase, downloadUseCase)
	router := v1.NewRouter(h, l, cfg.Telemetry.Enabled)

	httpServer := http_server.NewServer(cfg.HTTP.Server, router)

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- httpServer.ListenAndServe()
	}()

	l.Info("http server started", "address", httpServer.Addr)

	select {
	case err := <-serverErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			l.Fatal("http server failed", "error", err)
		}
	case <-ctx.Done():
		l.Info("received shutdown signal")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	l.Info("shutting down http server...", "address", httpServer.Addr)
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		l.Error("http server shutdown failed", "error", err)
	}

	l.Info("stopping active region downloads...")
	downloadUseCase.Shutdown()

	l.Info("application shutdown completed")
}
