package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/saviobatista/telemetry-map/internal/config"
	"github.com/saviobatista/telemetry-map/internal/db"
	"github.com/saviobatista/telemetry-map/internal/geo"
	"github.com/saviobatista/telemetry-map/internal/logging"
	"github.com/saviobatista/telemetry-map/internal/nats"
	"github.com/saviobatista/telemetry-map/internal/redis"
	"github.com/saviobatista/telemetry-map/internal/tiles"
	"github.com/saviobatista/telemetry-map/internal/types"
)

type clients struct {
	nats  *nats.Client
	redis *redis.Client
	db    *db.Client
}

// createClients connects NATS, Redis and, when a connection string is set, Postgres
func createClients(cfg *config.Config, projection geo.Projection) (*clients, error) {
	natsClient, err := nats.New(cfg.NATSURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create NATS client: %w", err)
	}

	redisClient, err := redis.New(cfg.RedisAddr, projection)
	if err != nil {
		natsClient.Close()
		return nil, fmt.Errorf("failed to create Redis client: %w", err)
	}

	c := &clients{nats: natsClient, redis: redisClient}
	if cfg.DBConnStr == "" {
		return c, nil
	}

	dbClient, err := db.New(cfg.DBConnStr)
	if err != nil {
		c.close()
		return nil, fmt.Errorf("failed to create database client: %w", err)
	}
	c.db = dbClient
	return c, nil
}

func (c *clients) close() {
	if c.nats != nil {
		c.nats.Close()
	}
	if c.redis != nil {
		if err := c.redis.Close(); err != nil {
			slog.Warn("Error closing Redis client", "error", err)
		}
	}
	if c.db != nil {
		if err := c.db.Close(); err != nil {
			slog.Warn("Error closing database client", "error", err)
		}
	}
}

// markerStore returns the database as a MarkerStore, or nil without one
func (c *clients) markerStore() MarkerStore {
	if c.db == nil {
		return nil
	}
	return c.db
}

// newTileResolver resolves layers with a shared capabilities client and projection registry
func newTileResolver(client *tiles.Client) TileResolver {
	projections := tiles.NewProjections()
	return func(ctx context.Context, cfg types.TileLayerConfig) (tiles.Source, error) {
		ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()
		return tiles.Resolve(ctx, client, projections, cfg)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	loader := config.NewMapLoader(cfg.MapConfig)
	mapCfg, err := loader.Load()
	if err != nil {
		return err
	}

	projection, err := geo.ProjectionFor(mapCfg.Render.Projection)
	if err != nil {
		return err
	}

	c, err := createClients(cfg, projection)
	if err != nil {
		return err
	}
	defer c.close()

	tracker := NewMapTracker(mapCfg, c.redis, c.markerStore(), newTileResolver(tiles.NewClient(nil)), logger)
	if err := tracker.Start(ctx, mapCfg); err != nil {
		return fmt.Errorf("failed to start tracker: %w", err)
	}

	loader.Watch(func(next *config.MapConfig) {
		if err := tracker.Apply(ctx, next); err != nil {
			logger.Error("Failed to apply map config", "error", err)
			return
		}
		logger.Info("Map config reloaded", "tracks", len(next.Tracks), "markers", len(next.Markers), "layers", len(next.Layers))
	}, func(err error) {
		logger.Error("Ignoring invalid map config", "error", err)
	})

	// tracks added on reload are still delivered, the pairer drops what it does not use
	if err := c.nats.SubscribeTelemetry(nil, func(v *types.TelemetryValue) {
		tracker.HandleValue(ctx, v)
	}); err != nil {
		return fmt.Errorf("failed to subscribe to telemetry: %w", err)
	}

	mux := http.NewServeMux()
	tracker.registerRoutes(mux)
	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening", "addr", cfg.HTTPAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errc:
		return fmt.Errorf("HTTP server failed: %w", err)
	}

	logger.Info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn("HTTP shutdown", "error", err)
	}
	return nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger, logFile, err := logging.Setup("tracker", cfg.LogLevel, cfg.LogFile)
	if err != nil {
		slog.Error("Failed to set up logging", "error", err)
		os.Exit(1)
	}
	defer logFile.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("Tracker failed", "error", err)
		stop()
		logFile.Close()
		os.Exit(1)
	}
}
