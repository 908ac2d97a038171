package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/saviobatista/telemetry-map/internal/config"
	"github.com/saviobatista/telemetry-map/internal/geo"
	"github.com/saviobatista/telemetry-map/internal/marker"
	"github.com/saviobatista/telemetry-map/internal/stats"
	"github.com/saviobatista/telemetry-map/internal/telemetry"
	"github.com/saviobatista/telemetry-map/internal/tiles"
	"github.com/saviobatista/telemetry-map/internal/track"
	"github.com/saviobatista/telemetry-map/internal/types"
)

// MapRenderer publishes tracks and markers for map clients
type MapRenderer interface {
	track.Renderer
	PublishMarker(ctx context.Context, f geo.Feature) error
	DropMarker(ctx context.Context, name string) error
}

// MarkerStore persists markers across restarts
type MarkerStore interface {
	ListMarkers(ctx context.Context) ([]types.MarkerConfig, error)
	UpsertMarker(ctx context.Context, m types.MarkerConfig) error
	UpdateMarkerPosition(ctx context.Context, name string, lon, lat float64) error
	DeleteMarkers(ctx context.Context, names ...string) (int64, error)
}

// TileResolver builds tile sources from layer configuration
type TileResolver func(ctx context.Context, cfg types.TileLayerConfig) (tiles.Source, error)

// MapTracker feeds telemetry into the track registry and keeps markers and tile layers in
// line with the map configuration
type MapTracker struct {
	registry *track.Registry
	pairer   atomic.Pointer[telemetry.Pairer]
	markers  *marker.Set
	renderer MapRenderer
	store    MarkerStore
	tiles    *tiles.Handler
	resolve  TileResolver
	stats    *stats.Stats
	logger   *slog.Logger

	// guards config reloads and marker writes
	mu            sync.Mutex
	configMarkers map[string]bool
}

// NewMapTracker creates a tracker for cfg. store may be nil.
func NewMapTracker(cfg *config.MapConfig, renderer MapRenderer, store MarkerStore, resolve TileResolver, logger *slog.Logger) *MapTracker {
	if logger == nil {
		logger = slog.Default()
	}
	st := stats.New()
	t := &MapTracker{
		registry: track.NewRegistry(renderer,
			track.WithDefaults(cfg.Defaults.Color, time.Duration(cfg.Defaults.TrailTime)*time.Second),
			track.WithStats(st)),
		markers:       marker.NewSet(marker.DefaultCatalog()),
		renderer:      renderer,
		store:         store,
		tiles:         tiles.NewHandler(logger),
		resolve:       resolve,
		stats:         st,
		logger:        logger,
		configMarkers: make(map[string]bool),
	}
	t.pairer.Store(telemetry.NewPairer(nil))
	if store != nil {
		if s, ok := store.(stats.Store); ok {
			st.SetStore(s)
		}
	}
	return t
}

// Start applies the map configuration and starts the statistics loops
func (t *MapTracker) Start(ctx context.Context, cfg *config.MapConfig) error {
	if err := t.Apply(ctx, cfg); err != nil {
		return err
	}

	go t.logStats(ctx)
	if t.store != nil {
		go t.stats.StartPersistence(ctx, 5*time.Minute)
	}
	return nil
}

// Apply brings tracks, markers and tile layers in line with cfg. Tile layers that fail to
// resolve are logged and skipped.
func (t *MapTracker) Apply(ctx context.Context, cfg *config.MapConfig) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.applyTracks(ctx, cfg.Tracks)

	if err := t.applyMarkers(ctx, cfg.Markers); err != nil {
		return fmt.Errorf("failed to apply markers: %w", err)
	}
	t.applyLayers(ctx, cfg.Layers)
	return nil
}

// applyTracks swaps the pairer first so dropped tracks stop receiving samples, then
// removes them from the registry and the map
func (t *MapTracker) applyTracks(ctx context.Context, cfgs []types.TrackConfig) {
	next := make(map[string]bool, len(cfgs))
	for _, tc := range cfgs {
		t.registry.Configure(tc)
		next[tc.Name] = true
	}
	t.pairer.Store(telemetry.NewPairer(cfgs))

	for _, id := range t.registry.IDs() {
		if next[id] {
			continue
		}
		if err := t.registry.Remove(ctx, id); err != nil && !errors.Is(err, track.ErrUnknownTrack) {
			t.logger.Warn("Failed to remove track", "track", id, "error", err)
			continue
		}
		t.logger.Info("Track removed", "track", id)
	}
}

func (t *MapTracker) applyMarkers(ctx context.Context, cfgs []types.MarkerConfig) error {
	next := make(map[string]bool, len(cfgs))
	for _, m := range cfgs {
		next[m.Name] = true
	}

	placed := cfgs
	if t.store != nil {
		var stale []string
		for name := range t.configMarkers {
			if !next[name] {
				stale = append(stale, name)
			}
		}
		if len(stale) > 0 {
			if _, err := t.store.DeleteMarkers(ctx, stale...); err != nil {
				return err
			}
		}
		for _, m := range cfgs {
			if err := t.store.UpsertMarker(ctx, m); err != nil {
				return err
			}
		}
		stored, err := t.store.ListMarkers(ctx)
		if err != nil {
			return err
		}
		placed = stored
	}
	t.configMarkers = next

	for _, name := range t.markers.Reset(placed) {
		if err := t.renderer.DropMarker(ctx, name); err != nil {
			t.logger.Warn("Failed to drop marker", "marker", name, "error", err)
		}
	}
	for _, m := range placed {
		t.warnMissingIcon(m.Name)
		t.publishMarker(ctx, m.Name)
	}
	return nil
}

func (t *MapTracker) applyLayers(ctx context.Context, layers []types.TileLayerConfig) {
	keep := make(map[string]bool, len(layers))
	for _, l := range layers {
		src, err := t.resolve(ctx, l)
		if err != nil {
			t.logger.Warn("Tile layer unavailable", "layer", l.Name, "error", err)
			continue
		}
		t.tiles.Install(l.Name, l.Kind, src)
		keep[l.Name] = true
	}
	for _, l := range t.tiles.Layers() {
		if !keep[l.Name] {
			t.tiles.Uninstall(l.Name)
		}
	}
}

func (t *MapTracker) warnMissingIcon(name string) {
	if m, ok := t.markers.Get(name); ok && !m.HasIcon() {
		t.logger.Warn("Unknown marker icon, drawing without one", "marker", name, "icon", m.Config().Icon)
	}
}

func (t *MapTracker) publishMarker(ctx context.Context, name string) {
	m, ok := t.markers.Get(name)
	if !ok {
		return
	}
	if err := t.renderer.PublishMarker(ctx, m.Feature()); err != nil {
		t.logger.Warn("Failed to publish marker", "marker", name, "error", err)
	}
}

// HandleValue feeds one telemetry value through the pairer into the registry
func (t *MapTracker) HandleValue(ctx context.Context, v *types.TelemetryValue) {
	for _, s := range t.pairer.Load().Offer(*v) {
		err := t.registry.UpdateSample(ctx, s)
		switch {
		case err == nil:
		case errors.Is(err, track.ErrOutOfOrder), errors.Is(err, track.ErrInvalidSample):
			t.logger.Debug("Sample rejected", "track", s.TrackID, "error", err)
		default:
			t.logger.Warn("Failed to update track", "track", s.TrackID, "error", err)
		}
	}
}

// Keys returns the telemetry keys the configured tracks consume
func (t *MapTracker) Keys() []string {
	return t.pairer.Load().Keys()
}

// PlaceMarker adds or replaces a marker and persists it
func (t *MapTracker) PlaceMarker(ctx context.Context, cfg types.MarkerConfig) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.store != nil {
		if err := t.store.UpsertMarker(ctx, cfg); err != nil {
			return err
		}
	}
	t.markers.Place(cfg)
	t.warnMissingIcon(cfg.Name)
	t.publishMarker(ctx, cfg.Name)
	return nil
}

// MoveMarker updates the position of a placed marker
func (t *MapTracker) MoveMarker(ctx context.Context, name string, lon, lat float64) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.markers.Get(name); !ok {
		return fmt.Errorf("%w: %s", marker.ErrUnknownMarker, name)
	}
	if t.store != nil {
		if err := t.store.UpdateMarkerPosition(ctx, name, lon, lat); err != nil {
			return err
		}
	}
	if _, err := t.markers.Move(name, lon, lat); err != nil {
		return err
	}
	t.publishMarker(ctx, name)
	return nil
}

// DeleteMarker removes a marker from the map and the store
func (t *MapTracker) DeleteMarker(ctx context.Context, name string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.markers.Delete(name) {
		return fmt.Errorf("%w: %s", marker.ErrUnknownMarker, name)
	}
	if t.store != nil {
		if _, err := t.store.DeleteMarkers(ctx, name); err != nil {
			return err
		}
	}
	return t.renderer.DropMarker(ctx, name)
}

// logStats periodically logs statistics
func (t *MapTracker) logStats(ctx context.Context) {
	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			t.logger.Info("Statistics", "summary", t.stats.String())
		}
	}
}
