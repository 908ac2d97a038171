// Package track maintains the live tracks drawn on the map: one time-windowed trail per
// tracked object, rebuilt into antimeridian-safe geometry on every update.
package track

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/saviobatista/telemetry-map/internal/stats"
	"github.com/saviobatista/telemetry-map/internal/trail"
	"github.com/saviobatista/telemetry-map/internal/types"
)

// DefaultColor is used for tracks without a configured color
const DefaultColor = "#ffff00"

var (
	// ErrUnknownTrack is returned when clearing or removing an id that is not tracked
	ErrUnknownTrack = errors.New("unknown track")
	// ErrOutOfOrder is returned for a sample older than the track's current position
	ErrOutOfOrder = errors.New("sample is older than current position")
	// ErrInvalidSample is returned for non-finite or out-of-range coordinates
	ErrInvalidSample = errors.New("invalid sample")
)

// Renderer consumes track geometry. Every publish replaces whatever was drawn for the id.
type Renderer interface {
	PublishTrack(ctx context.Context, id string, g Geometries) error
	DropTrack(ctx context.Context, id string) error
}

// Registry owns every tracked object. Updates to one id are serialized; different ids proceed
// independently.
type Registry struct {
	mu       sync.RWMutex
	tracks   map[string]*State
	configs  map[string]types.TrackConfig
	renderer Renderer
	stats    *stats.Stats

	defaultColor     string
	defaultTrailTime time.Duration
}

// Option configures a Registry
type Option func(*Registry)

// WithDefaults sets the color and trail time of tracks without their own configuration
func WithDefaults(color string, trailTime time.Duration) Option {
	return func(r *Registry) {
		if color != "" {
			r.defaultColor = color
		}
		if trailTime > 0 {
			r.defaultTrailTime = trailTime
		}
	}
}

// WithStats records registry activity in s
func WithStats(s *stats.Stats) Option {
	return func(r *Registry) {
		r.stats = s
	}
}

// NewRegistry creates an empty registry publishing to renderer
func NewRegistry(renderer Renderer, opts ...Option) *Registry {
	r := &Registry{
		tracks:           make(map[string]*State),
		configs:          make(map[string]types.TrackConfig),
		renderer:         renderer,
		defaultColor:     DefaultColor,
		defaultTrailTime: trail.DefaultDuration,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.stats == nil {
		r.stats = stats.New()
	}
	return r
}

// Configure records the color and trail time used when cfg.Name is first tracked. The trail
// duration of an existing track does not change; remove the track to apply a new one.
func (r *Registry) Configure(cfg types.TrackConfig) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.configs[cfg.Name] = cfg
}

// Update records a new position for id, creating the track on first sight, and publishes the
// rebuilt geometry. timestampNanos is converted to milliseconds before any window arithmetic.
func (r *Registry) Update(ctx context.Context, id string, lon, lat float64, timestampNanos int64) error {
	start := time.Now()
	r.stats.IncrementReceivedSamples()

	if err := validate(lon, lat); err != nil {
		r.stats.IncrementRejectedSamples()
		return err
	}

	p := types.Position{Lon: lon, Lat: lat, TimeMillis: timestampNanos / int64(time.Millisecond)}

	for {
		st := r.getOrCreate(id)
		st.mu.Lock()
		if st.removed {
			// lost a race with Remove; start over with a fresh track
			st.mu.Unlock()
			continue
		}

		if st.current != nil && p.TimeMillis < st.current.TimeMillis {
			st.mu.Unlock()
			r.stats.IncrementRejectedSamples()
			return fmt.Errorf("%w: track %s at %d, sample at %d", ErrOutOfOrder, id, st.current.TimeMillis, p.TimeMillis)
		}

		evicted := st.window.AppendAndEvict(p)
		cur := p
		st.current = &cur
		st.rebuild()
		g := st.geometries
		err := r.renderer.PublishTrack(ctx, id, g)
		st.mu.Unlock()

		r.stats.IncrementAcceptedSamples()
		r.stats.AddEvictedSamples(uint64(evicted))
		r.stats.AddProcessingTime(time.Since(start))
		if err != nil {
			return fmt.Errorf("failed to publish track %s: %w", id, err)
		}
		return nil
	}
}

// UpdateSample is Update for a paired telemetry sample
func (r *Registry) UpdateSample(ctx context.Context, s types.Sample) error {
	return r.Update(ctx, s.TrackID, s.Lon, s.Lat, s.TimeNanos)
}

// Clear wipes the trail of id while keeping its current position visible
func (r *Registry) Clear(ctx context.Context, id string) error {
	st, ok := r.lookup(id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownTrack, id)
	}

	st.mu.Lock()
	defer st.mu.Unlock()
	if st.removed {
		return fmt.Errorf("%w: %s", ErrUnknownTrack, id)
	}

	st.window.Clear()
	st.rebuild()
	r.stats.IncrementClearedTrails()

	if err := r.renderer.PublishTrack(ctx, id, st.geometries); err != nil {
		return fmt.Errorf("failed to publish cleared track %s: %w", id, err)
	}
	return nil
}

// Remove stops tracking id and drops all of its geometry
func (r *Registry) Remove(ctx context.Context, id string) error {
	r.mu.Lock()
	st, ok := r.tracks[id]
	if ok {
		delete(r.tracks, id)
	}
	active := len(r.tracks)
	r.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownTrack, id)
	}

	st.mu.Lock()
	defer st.mu.Unlock()
	st.removed = true

	r.stats.IncrementRemovedTracks()
	r.stats.SetActiveTracks(uint64(active))

	if err := r.renderer.DropTrack(ctx, id); err != nil {
		return fmt.Errorf("failed to drop track %s: %w", id, err)
	}
	return nil
}

// Get returns a snapshot of id
func (r *Registry) Get(id string) (Snapshot, bool) {
	st, ok := r.lookup(id)
	if !ok {
		return Snapshot{}, false
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.snapshot(), true
}

// IDs returns the tracked ids in sorted order
func (r *Registry) IDs() []string {
	r.mu.RLock()
	ids := make([]string, 0, len(r.tracks))
	for id := range r.tracks {
		ids = append(ids, id)
	}
	r.mu.RUnlock()

	sort.Strings(ids)
	return ids
}

// Len returns the number of tracked objects
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tracks)
}

func (r *Registry) lookup(id string) (*State, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	st, ok := r.tracks[id]
	return st, ok
}

func (r *Registry) getOrCreate(id string) *State {
	if st, ok := r.lookup(id); ok {
		return st
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if st, ok := r.tracks[id]; ok {
		return st
	}

	color, trailTime := r.defaultColor, r.defaultTrailTime
	if cfg, ok := r.configs[id]; ok {
		if cfg.Color != "" {
			color = cfg.Color
		}
		if cfg.TrailTime > 0 {
			trailTime = time.Duration(cfg.TrailTime) * time.Second
		}
	}

	st := newState(id, uuid.New().String(), color, trailTime)
	r.tracks[id] = st
	r.stats.IncrementCreatedTracks()
	r.stats.SetActiveTracks(uint64(len(r.tracks)))
	return st
}

func validate(lon, lat float64) error {
	if math.IsNaN(lon) || math.IsNaN(lat) || math.IsInf(lon, 0) || math.IsInf(lat, 0) {
		return fmt.Errorf("%w: non-finite coordinate (%v, %v)", ErrInvalidSample, lon, lat)
	}
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return fmt.Errorf("%w: coordinate out of range (%v, %v)", ErrInvalidSample, lon, lat)
	}
	return nil
}
