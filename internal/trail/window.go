// Package trail keeps the time-bounded position history of a single tracked object.
package trail

import (
	"time"

	"github.com/saviobatista/telemetry-map/internal/geo"
	"github.com/saviobatista/telemetry-map/internal/types"
)

// DefaultDuration is how much history a trail keeps when none is configured
const DefaultDuration = 900 * time.Second

// Window is an ordered buffer of positions. Samples are appended at the tail and evicted
// from the head only. Window is not safe for concurrent use; its owner serializes access.
type Window struct {
	duration  time.Duration
	positions []types.Position
}

// New creates a window retaining duration of history. Non-positive durations use DefaultDuration.
func New(duration time.Duration) *Window {
	if duration <= 0 {
		duration = DefaultDuration
	}
	return &Window{duration: duration}
}

// Duration returns the retention period
func (w *Window) Duration() time.Duration {
	return w.duration
}

// Append adds p to the tail. Ordering is the caller's responsibility.
func (w *Window) Append(p types.Position) {
	w.positions = append(w.positions, p)
}

// EvictBefore drops head samples older than cutoffMillis and returns how many were dropped.
// A sample exactly at the cutoff is kept.
func (w *Window) EvictBefore(cutoffMillis int64) int {
	n := 0
	for n < len(w.positions) && w.positions[n].TimeMillis < cutoffMillis {
		n++
	}
	if n == 0 {
		return 0
	}
	// copy down so the backing array does not grow without bound
	w.positions = append(w.positions[:0], w.positions[n:]...)
	return n
}

// AppendAndEvict appends p and evicts everything older than p minus the window duration
func (w *Window) AppendAndEvict(p types.Position) int {
	w.Append(p)
	return w.EvictBefore(p.TimeMillis - w.duration.Milliseconds())
}

// Clear removes every sample
func (w *Window) Clear() {
	w.positions = w.positions[:0]
}

// Len returns the number of retained samples
func (w *Window) Len() int {
	return len(w.positions)
}

// Latest returns the newest retained sample
func (w *Window) Latest() (types.Position, bool) {
	if len(w.positions) == 0 {
		return types.Position{}, false
	}
	return w.positions[len(w.positions)-1], true
}

// Samples returns a copy of the retained samples, oldest first
func (w *Window) Samples() []types.Position {
	out := make([]types.Position, len(w.positions))
	copy(out, w.positions)
	return out
}

// Coordinates returns the retained samples as lon/lat pairs, oldest first
func (w *Window) Coordinates() []geo.Coord {
	out := make([]geo.Coord, len(w.positions))
	for i, p := range w.positions {
		out[i] = geo.Coord{Lon: p.Lon, Lat: p.Lat}
	}
	return out
}
