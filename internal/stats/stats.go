package stats

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/saviobatista/telemetry-map/internal/stats"

// Store persists statistics snapshots
type Store interface {
	StoreTrackerStats(ctx context.Context, stats map[string]interface{}) error
}

// Stats tracks sample processing statistics
type Stats struct {
	// Sample counts
	ReceivedSamples uint64
	AcceptedSamples uint64
	RejectedSamples uint64
	EvictedSamples  uint64

	// Track lifecycle
	CreatedTracks uint64
	RemovedTracks uint64
	ClearedTrails uint64

	// Timing
	StartTime      time.Time
	LastSampleTime time.Time
	ProcessingTime time.Duration

	// Active tracking
	ActiveTracks uint64

	store Store
	inst  *instruments

	mu sync.RWMutex
}

type instruments struct {
	samples   metric.Int64Counter
	evicted   metric.Int64Counter
	lifecycle metric.Int64Counter
	active    metric.Int64ObservableGauge
}

// New creates a new Stats instance. Counters are mirrored to the global OpenTelemetry meter,
// which is a no-op unless a provider is installed.
func New() *Stats {
	now := time.Now()
	s := &Stats{
		StartTime:      now,
		LastSampleTime: now,
	}
	inst, err := newInstruments(s)
	if err != nil {
		slog.Warn("metrics disabled", "error", err)
	} else {
		s.inst = inst
	}
	return s
}

func newInstruments(s *Stats) (*instruments, error) {
	m := otel.Meter(instrumentationName)
	inst := &instruments{}

	var err error
	inst.samples, err = m.Int64Counter(
		"tracker.samples",
		metric.WithDescription("Telemetry samples by outcome"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating samples counter: %w", err)
	}

	inst.evicted, err = m.Int64Counter(
		"tracker.samples.evicted",
		metric.WithDescription("Samples evicted from trail windows"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating evicted counter: %w", err)
	}

	inst.lifecycle, err = m.Int64Counter(
		"tracker.tracks.events",
		metric.WithDescription("Track lifecycle events"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating lifecycle counter: %w", err)
	}

	inst.active, err = m.Int64ObservableGauge(
		"tracker.tracks.active",
		metric.WithDescription("Current number of tracked objects"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating active gauge: %w", err)
	}

	_, err = m.RegisterCallback(
		func(ctx context.Context, o metric.Observer) error {
			o.ObserveInt64(inst.active, int64(atomic.LoadUint64(&s.ActiveTracks)))
			return nil
		},
		inst.active,
	)
	if err != nil {
		return nil, fmt.Errorf("registering active callback: %w", err)
	}

	return inst, nil
}

func kind(k string) metric.AddOption {
	return metric.WithAttributes(attribute.String("kind", k))
}

// SetStore sets the backend used by Persist
func (s *Stats) SetStore(store Store) {
	s.mu.Lock()
	s.store = store
	s.mu.Unlock()
}

// Persist stores the current statistics
func (s *Stats) Persist(ctx context.Context) error {
	s.mu.RLock()
	store := s.store
	s.mu.RUnlock()
	if store == nil {
		return fmt.Errorf("stats store not set")
	}

	return store.StoreTrackerStats(ctx, s.GetStats())
}

// IncrementReceivedSamples increments the received samples counter
func (s *Stats) IncrementReceivedSamples() {
	atomic.AddUint64(&s.ReceivedSamples, 1)
	s.mu.Lock()
	s.LastSampleTime = time.Now()
	s.mu.Unlock()
	if s.inst != nil {
		s.inst.samples.Add(context.Background(), 1, kind("received"))
	}
}

// IncrementAcceptedSamples increments the accepted samples counter
func (s *Stats) IncrementAcceptedSamples() {
	atomic.AddUint64(&s.AcceptedSamples, 1)
	if s.inst != nil {
		s.inst.samples.Add(context.Background(), 1, kind("accepted"))
	}
}

// IncrementRejectedSamples increments the rejected samples counter
func (s *Stats) IncrementRejectedSamples() {
	atomic.AddUint64(&s.RejectedSamples, 1)
	if s.inst != nil {
		s.inst.samples.Add(context.Background(), 1, kind("rejected"))
	}
}

// AddEvictedSamples adds n to the evicted samples counter
func (s *Stats) AddEvictedSamples(n uint64) {
	if n == 0 {
		return
	}
	atomic.AddUint64(&s.EvictedSamples, n)
	if s.inst != nil {
		s.inst.evicted.Add(context.Background(), int64(n), kind("evicted"))
	}
}

// IncrementCreatedTracks increments the created tracks counter
func (s *Stats) IncrementCreatedTracks() {
	atomic.AddUint64(&s.CreatedTracks, 1)
	if s.inst != nil {
		s.inst.lifecycle.Add(context.Background(), 1, kind("created"))
	}
}

// IncrementRemovedTracks increments the removed tracks counter
func (s *Stats) IncrementRemovedTracks() {
	atomic.AddUint64(&s.RemovedTracks, 1)
	if s.inst != nil {
		s.inst.lifecycle.Add(context.Background(), 1, kind("removed"))
	}
}

// IncrementClearedTrails increments the cleared trails counter
func (s *Stats) IncrementClearedTrails() {
	atomic.AddUint64(&s.ClearedTrails, 1)
	if s.inst != nil {
		s.inst.lifecycle.Add(context.Background(), 1, kind("cleared"))
	}
}

// SetActiveTracks sets the number of active tracks
func (s *Stats) SetActiveTracks(count uint64) {
	atomic.StoreUint64(&s.ActiveTracks, count)
}

// AddProcessingTime adds to the total processing time
func (s *Stats) AddProcessingTime(duration time.Duration) {
	s.mu.Lock()
	s.ProcessingTime += duration
	s.mu.Unlock()
}

// GetStats returns a copy of the current statistics
func (s *Stats) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return map[string]interface{}{
		"received_samples": atomic.LoadUint64(&s.ReceivedSamples),
		"accepted_samples": atomic.LoadUint64(&s.AcceptedSamples),
		"rejected_samples": atomic.LoadUint64(&s.RejectedSamples),
		"evicted_samples":  atomic.LoadUint64(&s.EvictedSamples),
		"created_tracks":   atomic.LoadUint64(&s.CreatedTracks),
		"removed_tracks":   atomic.LoadUint64(&s.RemovedTracks),
		"cleared_trails":   atomic.LoadUint64(&s.ClearedTrails),
		"active_tracks":    atomic.LoadUint64(&s.ActiveTracks),
		"last_sample_time": s.LastSampleTime,
		"processing_time":  s.ProcessingTime,
		"uptime":           time.Since(s.StartTime),
	}
}

// String returns a string representation of the statistics
func (s *Stats) String() string {
	stats := s.GetStats()
	return fmt.Sprintf(
		"Received Samples: %d\n"+
			"Accepted Samples: %d\n"+
			"Rejected Samples: %d\n"+
			"Evicted Samples: %d\n"+
			"Created Tracks: %d\n"+
			"Removed Tracks: %d\n"+
			"Cleared Trails: %d\n"+
			"Active Tracks: %d\n"+
			"Last Sample Time: %s\n"+
			"Processing Time: %s\n"+
			"Uptime: %s",
		stats["received_samples"],
		stats["accepted_samples"],
		stats["rejected_samples"],
		stats["evicted_samples"],
		stats["created_tracks"],
		stats["removed_tracks"],
		stats["cleared_trails"],
		stats["active_tracks"],
		stats["last_sample_time"],
		stats["processing_time"],
		stats["uptime"],
	)
}

// StartPersistence persists statistics every interval until ctx is done
func (s *Stats) StartPersistence(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			// final snapshot; ctx is already cancelled
			if err := s.Persist(context.Background()); err != nil {
				slog.Error("Failed to persist final statistics", "error", err)
			}
			return
		case <-ticker.C:
			if err := s.Persist(ctx); err != nil {
				slog.Error("Failed to persist statistics", "error", err)
			}
		}
	}
}
