// Command layermap serves the search-result layer map: result sets arrive
// over HTTP or, when KAFKA_ENABLED is set, from the source topic, and each
// render is exposed as GeoJSON plus layer controls.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/search-layer-map/internal/adapter/geojson"
	httpadapter "github.com/couchcryptid/search-layer-map/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/search-layer-map/internal/adapter/kafka"
	"github.com/couchcryptid/search-layer-map/internal/config"
	"github.com/couchcryptid/search-layer-map/internal/layerstate"
	"github.com/couchcryptid/search-layer-map/internal/observability"
	"github.com/couchcryptid/search-layer-map/internal/pipeline"
	"github.com/couchcryptid/search-layer-map/internal/viewer"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	catalog, err := config.LoadCatalog(cfg)
	if err != nil {
		logger.Error("failed to load layer catalog", "error", err)
		os.Exit(1)
	}
	logger.Info("layer catalog loaded", "layers", len(catalog.Layers()), "path", cfg.LayerCatalogPath)

	surfaceOpts := viewer.DefaultSurfaceOptions()
	surfaceOpts.TileURL = cfg.MapTileURL
	surfaceOpts.TileAttribution = cfg.MapTileAttribution

	surface := geojson.NewSurface(cfg.MapAnchor)
	ctrl := viewer.NewController(catalog, layerstate.New(catalog), surface, viewer.Options{
		Anchor:      cfg.MapAnchor,
		Surface:     surfaceOpts,
		ResizeDelay: cfg.ResizeDelay,
		RowCap:      cfg.RowCap,
	}, logger, metrics)
	defer ctrl.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := ctrl.Initialize(ctx); err != nil {
		logger.Error("failed to initialize view controller", "error", err)
		os.Exit(1)
	}

	api := httpadapter.NewAPI(ctrl, surface, catalog)
	srv := httpadapter.NewServer(cfg.HTTPAddr, api, ctrl, logger)

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	var (
		reader *kafkaadapter.Reader
		writer *kafkaadapter.Writer
		done   = make(chan struct{})
	)
	if cfg.KafkaEnabled {
		reader = kafkaadapter.NewReader(cfg, logger)
		writer = kafkaadapter.NewWriter(cfg, logger)
		p := pipeline.New(reader, pipeline.NewTransformer(ctrl, logger), writer, logger, metrics, cfg.BatchSize)

		go func() {
			defer close(done)
			if err := p.Run(ctx); err != nil {
				logger.Error("pipeline error", "error", err)
			}
		}()
		logger.Info("kafka pipeline enabled",
			"source_topic", cfg.KafkaSourceTopic,
			"sink_topic", cfg.KafkaSinkTopic,
			"group_id", cfg.KafkaGroupID,
		)
	} else {
		close(done)
		logger.Info("kafka pipeline disabled")
	}

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}

	select {
	case <-done:
	case <-shutdownCtx.Done():
		logger.Warn("pipeline did not stop before shutdown timeout")
	}
	if reader != nil {
		if err := reader.Close(); err != nil {
			logger.Error("kafka reader close error", "error", err)
		}
	}
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
