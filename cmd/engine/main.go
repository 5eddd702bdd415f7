package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpadapter "github.com/couchcryptid/climate-risk-engine/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/climate-risk-engine/internal/adapter/kafka"
	"github.com/couchcryptid/climate-risk-engine/internal/adapter/mapbox"
	"github.com/couchcryptid/climate-risk-engine/internal/adapter/objectstore"
	"github.com/couchcryptid/climate-risk-engine/internal/assessment"
	"github.com/couchcryptid/climate-risk-engine/internal/config"
	"github.com/couchcryptid/climate-risk-engine/internal/domain"
	"github.com/couchcryptid/climate-risk-engine/internal/observability"
	"github.com/couchcryptid/climate-risk-engine/internal/pipeline"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize geocoder (feature-flagged via MAPBOX_ENABLED / MAPBOX_TOKEN).
	var geocoder domain.Geocoder
	if cfg.MapboxEnabled {
		client := mapbox.NewClient(cfg.MapboxToken, cfg.MapboxTimeout, metrics, logger)
		geocoder = mapbox.NewCachedGeocoder(client, cfg.MapboxCacheSize, metrics)
		metrics.GeocodeEnabled.Set(1)
		logger.Info("mapbox geocoding enabled", "cache_size", cfg.MapboxCacheSize, "timeout", cfg.MapboxTimeout)
	} else {
		logger.Info("mapbox geocoding disabled")
	}

	assessor, err := assessment.NewFromConfig(cfg, geocoder, logger, metrics)
	if err != nil {
		logger.Error("failed to build assessor", "error", err)
		os.Exit(1)
	}
	logger.Info("curve catalog loaded", "curves", len(assessor.Catalog().Curves()), "path", cfg.CurveCatalogPath)

	reader := kafkaadapter.NewReader(cfg, logger)
	writer := kafkaadapter.NewWriter(cfg, logger)
	transformer := pipeline.NewTransformer(assessor, logger)

	// Results go to the sink topic and, when configured, to object storage.
	var loader pipeline.BatchLoader = writer
	if cfg.ResultStoreEnabled {
		store, err := objectstore.NewResultStore(ctx, cfg, logger, metrics)
		if err != nil {
			logger.Error("failed to build result store", "error", err)
			os.Exit(1)
		}
		loader = pipeline.FanoutLoader{writer, store}
		logger.Info("result store enabled", "bucket", cfg.ResultBucket, "endpoint", cfg.ResultEndpoint)
	}

	p := pipeline.New(reader, transformer, loader, logger, metrics, cfg.BatchSize, cfg.BatchConcurrency)

	srv := httpadapter.NewServer(cfg.HTTPAddr, p, assessor, logger)

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Start assessment pipeline.
	go func() {
		if err := p.Run(ctx); err != nil {
			logger.Error("pipeline error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if err := reader.Close(); err != nil {
		logger.Error("kafka reader close error", "error", err)
	}
	if err := writer.Close(); err != nil {
		logger.Error("kafka writer close error", "error", err)
	}

	logger.Info("shutdown complete")
}
