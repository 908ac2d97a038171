package track

import (
	"sync"
	"time"

	"github.com/saviobatista/telemetry-map/internal/geo"
	"github.com/saviobatista/telemetry-map/internal/trail"
	"github.com/saviobatista/telemetry-map/internal/types"
)

// Geometries is the renderable snapshot of one track. It is rebuilt from the trail window on
// every change and handed to the renderer as a whole.
type Geometries struct {
	Position  geo.Feature
	Trail     geo.Feature
	Waypoints geo.Feature
}

// State is one tracked object. All fields are guarded by mu.
type State struct {
	mu         sync.Mutex
	id         string
	sessionID  string
	color      string
	window     *trail.Window
	current    *types.Position
	geometries Geometries
	removed    bool
}

// Snapshot is a read-only copy of a track's state
type Snapshot struct {
	ID         string
	SessionID  string
	Color      string
	TrailTime  time.Duration
	Current    *types.Position
	Samples    []types.Position
	Geometries Geometries
}

func newState(id, sessionID, color string, trailTime time.Duration) *State {
	s := &State{
		id:        id,
		sessionID: sessionID,
		color:     color,
		window:    trail.New(trailTime),
	}
	s.rebuild()
	return s
}

// rebuild recomputes the derived geometry from the window and current position
func (s *State) rebuild() {
	coords := s.window.Coordinates()

	var current *geo.Coord
	position := geo.NewPositionFeature(s.id, nil, s.color)
	if s.current != nil {
		current = &geo.Coord{Lon: s.current.Lon, Lat: s.current.Lat}
		position = geo.NewPositionFeature(s.id, current, s.color)
		position.Properties = map[string]interface{}{
			"lon":     s.current.Lon,
			"lat":     s.current.Lat,
			"time":    s.current.TimeMillis,
			"session": s.sessionID,
		}
	}

	times := make([]int64, 0, s.window.Len())
	for _, p := range s.window.Samples() {
		times = append(times, p.TimeMillis)
	}
	waypoints := geo.NewWaypointsFeature(s.id, coords, s.color)
	waypoints.Properties = map[string]interface{}{"times": times}

	s.geometries = Geometries{
		Position:  position,
		Trail:     geo.NewTrailFeature(s.id, geo.Segment(coords), s.color),
		Waypoints: waypoints,
	}
}

func (s *State) snapshot() Snapshot {
	snap := Snapshot{
		ID:         s.id,
		SessionID:  s.sessionID,
		Color:      s.color,
		TrailTime:  s.window.Duration(),
		Samples:    s.window.Samples(),
		Geometries: s.geometries,
	}
	if s.current != nil {
		cur := *s.current
		snap.Current = &cur
	}
	return snap
}
